package brackets

import "github.com/Dosada05/tournament-engine/models"

const (
	ratingScaleFactor = 1000
	ratingKFactor     = 32
)

// CalculateRatingChanges returns the rating delta per user id. Each player is
// scored on placement against the share of the field's total initial rating
// they brought in. Integer division truncates toward zero. A participant with
// no rank is treated as last.
func CalculateRatingChanges(participants []*models.Participant, standings map[int64]int) map[int64]int {
	totalPlayers := int64(len(participants))
	var ratingSum int64
	for _, p := range participants {
		ratingSum += int64(p.InitialRating)
	}

	changes := make(map[int64]int, len(participants))
	for _, p := range participants {
		rank, ok := standings[p.UserID]
		if !ok || rank < 1 {
			rank = int(totalPlayers)
		}

		actualScore := (totalPlayers - int64(rank) + 1) * ratingScaleFactor
		var expectedScore int64
		if ratingSum != 0 {
			expectedScore = int64(p.InitialRating) * ratingScaleFactor / ratingSum
		}
		changes[p.UserID] = int(ratingKFactor * (actualScore - expectedScore) / ratingScaleFactor)
	}
	return changes
}

// ApplyRatingDelta adds delta to rating without going below zero.
func ApplyRatingDelta(rating, delta int) int {
	if next := rating + delta; next > 0 {
		return next
	}
	return 0
}
