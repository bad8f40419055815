package brackets

import (
	"sort"

	"github.com/Dosada05/tournament-engine/models"
)

// TournamentResults holds the final placement of a tournament. Standings maps
// user id to rank, 1 being the champion.
type TournamentResults struct {
	WinnerID   *int64        `json:"winner_id,omitempty"`
	RunnerUpID *int64        `json:"runner_up_id,omitempty"`
	Standings  map[int64]int `json:"standings"`
}

// DetermineResults ranks participants from the tournament's matches. A nil
// WinnerID means no winner can be decided yet.
func DetermineResults(format models.TournamentFormat, matches []*models.Match, participants []*models.Participant) (*TournamentResults, error) {
	switch format {
	case models.FormatSingleElimination:
		return eliminationResults(matches, participants), nil
	case models.FormatRoundRobin, models.FormatSwissStage:
		return tableResults(matches, participants), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

func eliminationResults(matches []*models.Match, participants []*models.Participant) *TournamentResults {
	results := &TournamentResults{Standings: make(map[int64]int)}

	var final *models.Match
	for _, m := range matches {
		if final == nil || m.Round > final.Round || (m.Round == final.Round && m.OrderInRound < final.OrderInRound) {
			final = m
		}
	}
	if final == nil || !final.IsCompleted() || final.WinnerID == nil {
		return results
	}

	winner := *final.WinnerID
	results.WinnerID = &winner
	results.Standings[winner] = 1
	if loser := final.LoserID(); loser != nil && *loser != ByePlayerID {
		runnerUp := *loser
		results.RunnerUpID = &runnerUp
		results.Standings[runnerUp] = 2
	}

	// The round a player lost in; players who never lost rank by the last
	// round they appeared in.
	reached := make(map[int64]int, len(participants))
	for _, m := range matches {
		for _, slot := range []*int64{m.User1ID, m.User2ID} {
			if slot != nil && *slot != ByePlayerID && m.Round > reached[*slot] {
				reached[*slot] = m.Round
			}
		}
	}

	rest := make([]int64, 0, len(participants))
	for _, p := range participants {
		if _, ranked := results.Standings[p.UserID]; !ranked {
			rest = append(rest, p.UserID)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		if reached[rest[i]] != reached[rest[j]] {
			return reached[rest[i]] > reached[rest[j]]
		}
		return rest[i] < rest[j]
	})

	rank := len(results.Standings) + 1
	for _, id := range rest {
		results.Standings[id] = rank
		rank++
	}
	return results
}

func tableResults(matches []*models.Match, participants []*models.Participant) *TournamentResults {
	results := &TournamentResults{Standings: make(map[int64]int)}

	completed := 0
	for _, m := range matches {
		if m.IsCompleted() {
			completed++
		}
	}
	if completed == 0 || len(participants) == 0 {
		return results
	}

	ratings := make(map[int64]int, len(participants))
	playerIDs := make([]int64, 0, len(participants))
	for _, p := range participants {
		ratings[p.UserID] = p.InitialRating
		playerIDs = append(playerIDs, p.UserID)
	}

	standings := BuildStandings(playerIDs, matches)
	filtered := standings[:0]
	for _, s := range standings {
		if _, ok := ratings[s.UserID]; ok {
			s.InitialRating = ratings[s.UserID]
			filtered = append(filtered, s)
		}
	}
	standings = filtered
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		if a.InitialRating != b.InitialRating {
			return a.InitialRating > b.InitialRating
		}
		return a.UserID < b.UserID
	})

	for i, s := range standings {
		results.Standings[s.UserID] = i + 1
	}
	winner := standings[0].UserID
	results.WinnerID = &winner
	if len(standings) > 1 {
		runnerUp := standings[1].UserID
		results.RunnerUpID = &runnerUp
	}
	return results
}
