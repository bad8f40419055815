package brackets

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/Dosada05/tournament-engine/models"
)

// ByePlayerID fills the empty side of a pairing when the player count is odd.
const ByePlayerID int64 = -1

var (
	ErrNotEnoughPlayers  = errors.New("not enough players to generate a bracket (minimum 2 required)")
	ErrUnsupportedFormat = errors.New("unsupported tournament format")
)

// Shuffler is the randomness a generator needs. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type GenerateBracketParams struct {
	TournamentID int64
	PlayerIDs    []int64
	Rand         Shuffler
}

type BracketGenerator interface {
	GenerateBracket(params GenerateBracketParams) ([]*models.Match, error)

	GetName() string
}

// NewGenerator picks the generator for a tournament format.
func NewGenerator(format models.TournamentFormat) (BracketGenerator, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	case models.FormatSwissStage:
		return NewSwissGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, format)
	}
}

// LockedRand is a Shuffler that is safe to share between requests.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewLockedRand(seed uint64) *LockedRand {
	return &LockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *LockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

func shuffledPlayers(playerIDs []int64, rnd Shuffler) []int64 {
	players := make([]int64, len(playerIDs))
	copy(players, playerIDs)
	if rnd != nil {
		rnd.Shuffle(len(players), func(i, j int) {
			players[i], players[j] = players[j], players[i]
		})
	}
	return players
}

func newScheduledMatch(tournamentID int64, round, order int, p1, p2 *int64) *models.Match {
	return &models.Match{
		TournamentID: tournamentID,
		Round:        round,
		OrderInRound: order,
		User1ID:      p1,
		User2ID:      p2,
		Status:       models.MatchStatusScheduled,
	}
}

// newByeMatch records an automatic win for playerID. It is created completed.
func newByeMatch(tournamentID int64, round, order int, playerID int64) *models.Match {
	p1, bye, winner := playerID, ByePlayerID, playerID
	return &models.Match{
		TournamentID: tournamentID,
		Round:        round,
		OrderInRound: order,
		User1ID:      &p1,
		User2ID:      &bye,
		Status:       models.MatchStatusCompleted,
		WinnerID:     &winner,
	}
}
