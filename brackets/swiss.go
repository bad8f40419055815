package brackets

import (
	"github.com/Dosada05/tournament-engine/models"
)

type SwissGenerator struct{}

func NewSwissGenerator() BracketGenerator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) GetName() string {
	return "SwissStage"
}

// GenerateBracket produces the first Swiss round only: random pairs, and for
// an odd field one explicit completed bye match placed last in the round.
// Later rounds come from PairNextRound.
func (g *SwissGenerator) GenerateBracket(params GenerateBracketParams) ([]*models.Match, error) {
	if len(params.PlayerIDs) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	pool := make([]int64, len(params.PlayerIDs), len(params.PlayerIDs)+1)
	copy(pool, params.PlayerIDs)
	if len(pool)%2 != 0 {
		pool = append(pool, ByePlayerID)
	}
	players := shuffledPlayers(pool, params.Rand)

	matches := make([]*models.Match, 0, len(players)/2)
	byePlayer := ByePlayerID
	order := 0
	for i := 0; i+1 < len(players); i += 2 {
		p1, p2 := players[i], players[i+1]
		switch {
		case p1 == ByePlayerID:
			byePlayer = p2
		case p2 == ByePlayerID:
			byePlayer = p1
		default:
			order++
			matches = append(matches, newScheduledMatch(params.TournamentID, 1, order, &p1, &p2))
		}
	}
	if byePlayer != ByePlayerID {
		matches = append(matches, newByeMatch(params.TournamentID, 1, order+1, byePlayer))
	}

	return matches, nil
}

// PairNextRound pairs the field for round. standings must already be sorted.
// With an odd field the last-ranked player takes the bye. Everyone else is
// paired top-down with the highest-ranked unpaired opponent they have not
// met yet; when none is left, the first unpaired opponent is used even if
// that is a rematch.
func PairNextRound(tournamentID int64, standings []Standing, previous PairingSet, round int) []*models.Match {
	pool := make([]int64, 0, len(standings))
	for _, s := range standings {
		if s.UserID != ByePlayerID {
			pool = append(pool, s.UserID)
		}
	}

	var byeMatch *models.Match
	if len(pool)%2 != 0 {
		byePlayer := pool[len(pool)-1]
		pool = pool[:len(pool)-1]
		byeMatch = newByeMatch(tournamentID, round, len(pool)/2+1, byePlayer)
	}

	paired := make(map[int64]bool, len(pool))
	matches := make([]*models.Match, 0, len(pool)/2+1)
	order := 0
	for i, player := range pool {
		if paired[player] {
			continue
		}

		opponent := -1
		for j := i + 1; j < len(pool); j++ {
			if !paired[pool[j]] && !previous.Has(player, pool[j]) {
				opponent = j
				break
			}
		}
		if opponent < 0 {
			for j := i + 1; j < len(pool); j++ {
				if !paired[pool[j]] {
					opponent = j
					break
				}
			}
		}
		if opponent < 0 {
			continue
		}

		p1, p2 := player, pool[opponent]
		paired[p1], paired[p2] = true, true
		order++
		matches = append(matches, newScheduledMatch(tournamentID, round, order, &p1, &p2))
	}

	if byeMatch != nil {
		matches = append(matches, byeMatch)
	}
	return matches
}
