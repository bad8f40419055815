package brackets

import (
	"errors"
	"math"
	"sort"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrMatchesNotPersisted = errors.New("bracket linking requires persisted matches")
	ErrInvalidBracketShape = errors.New("bracket rounds do not halve from one round to the next")
)

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds the full tree: 2^R-1 matches for R = ceil(log2(N)).
// Only round 1 gets players. Byes are spread so that every round-1 match has
// at least one player: the first half of the shuffled list takes slot 1 of
// each match, the rest fill slot 2 from the top. Players are not placed
// pairwise, which would leave trailing round-1 matches with nobody in them.
func (g *SingleEliminationGenerator) GenerateBracket(params GenerateBracketParams) ([]*models.Match, error) {
	n := len(params.PlayerIDs)
	if n < 2 {
		return nil, ErrNotEnoughPlayers
	}

	players := shuffledPlayers(params.PlayerIDs, params.Rand)

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	sizeOfFullBracket := 1 << uint(numRounds)
	firstRoundMatches := sizeOfFullBracket / 2

	matches := make([]*models.Match, 0, sizeOfFullBracket-1)
	for r := 1; r <= numRounds; r++ {
		matchesInRound := 1 << uint(numRounds-r)
		for i := 0; i < matchesInRound; i++ {
			m := newScheduledMatch(params.TournamentID, r, i+1, nil, nil)
			if r == 1 {
				p1 := players[i]
				m.User1ID = &p1
				if j := firstRoundMatches + i; j < n {
					p2 := players[j]
					m.User2ID = &p2
				}
			}
			matches = append(matches, m)
		}
	}

	return matches, nil
}

// LinkBracket points match j of each round at match j/2 of the next round.
// Final-round matches keep a nil NextMatchID. Matches must already carry
// their database ids.
func LinkBracket(matches []*models.Match) error {
	rounds := make(map[int][]*models.Match)
	for _, m := range matches {
		if m.ID == 0 {
			return ErrMatchesNotPersisted
		}
		rounds[m.Round] = append(rounds[m.Round], m)
	}

	roundNums := make([]int, 0, len(rounds))
	for r := range rounds {
		roundNums = append(roundNums, r)
	}
	sort.Ints(roundNums)
	for _, r := range roundNums {
		roundMatches := rounds[r]
		sort.Slice(roundMatches, func(i, j int) bool {
			return roundMatches[i].OrderInRound < roundMatches[j].OrderInRound
		})
	}

	for k, r := range roundNums {
		current := rounds[r]
		if k == len(roundNums)-1 {
			for _, m := range current {
				m.NextMatchID = nil
			}
			break
		}
		next := rounds[roundNums[k+1]]
		if (len(current)+1)/2 != len(next) {
			return ErrInvalidBracketShape
		}
		for j, m := range current {
			nextID := next[j/2].ID
			m.NextMatchID = &nextID
		}
	}
	return nil
}
