package brackets

import (
	"github.com/Dosada05/tournament-engine/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket schedules every pair exactly once using the circle method:
// after a shuffle, player 0 stays fixed and the rest rotate one seat per round. An odd field
// gets a ByePlayerID seat; pairings against it are not emitted.
func (g *RoundRobinGenerator) GenerateBracket(params GenerateBracketParams) ([]*models.Match, error) {
	if len(params.PlayerIDs) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	players := shuffledPlayers(params.PlayerIDs, params.Rand)
	if len(players)%2 != 0 {
		players = append(players, ByePlayerID)
	}

	n := len(players)
	half := n / 2
	matches := make([]*models.Match, 0, n*(n-1)/2)

	for round := 1; round <= n-1; round++ {
		order := 0
		for i := 0; i < half; i++ {
			p1, p2 := players[i], players[n-1-i]
			if p1 == ByePlayerID || p2 == ByePlayerID {
				continue
			}
			order++
			matches = append(matches, newScheduledMatch(params.TournamentID, round, order, &p1, &p2))
		}

		rotated := make([]int64, 0, n)
		rotated = append(rotated, players[0], players[n-1])
		rotated = append(rotated, players[1:n-1]...)
		players = rotated
	}

	return matches, nil
}
