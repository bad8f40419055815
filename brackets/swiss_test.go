package brackets

import (
	"testing"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completed(round int, p1, p2, winner int64) *models.Match {
	return &models.Match{
		Round:    round,
		User1ID:  &p1,
		User2ID:  &p2,
		Status:   models.MatchStatusCompleted,
		WinnerID: &winner,
	}
}

func TestSwissFirstRound(t *testing.T) {
	gen := NewSwissGenerator()

	matches, err := gen.GenerateBracket(GenerateBracketParams{TournamentID: 3, PlayerIDs: playerIDs(4), Rand: seededRand()})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.Equal(t, 1, m.Round)
		assert.Equal(t, int64(3), m.TournamentID)
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
	}
}

func TestSwissFirstRoundOddFieldEmitsBye(t *testing.T) {
	matches, err := NewSwissGenerator().GenerateBracket(GenerateBracketParams{TournamentID: 3, PlayerIDs: playerIDs(5), Rand: seededRand()})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	bye := matches[len(matches)-1]
	assert.Equal(t, ByePlayerID, *bye.User2ID)
	assert.Equal(t, models.MatchStatusCompleted, bye.Status)
	assert.Equal(t, *bye.User1ID, *bye.WinnerID)
	assert.Equal(t, 3, bye.OrderInRound)

	seen := make(map[int64]int)
	for _, m := range matches {
		seen[*m.User1ID]++
		if *m.User2ID != ByePlayerID {
			seen[*m.User2ID]++
		}
	}
	assert.Len(t, seen, 5)
	for id, count := range seen {
		assert.Equal(t, 1, count, "player %d", id)
	}
}

func TestBuildStandings(t *testing.T) {
	matches := []*models.Match{
		completed(1, 1, 2, 1),
		completed(1, 3, 4, 4),
		completed(1, 5, ByePlayerID, 5),
		completed(2, 1, 4, 1),
		{Round: 2, User1ID: ptr(5), User2ID: ptr(2), Status: models.MatchStatusScheduled},
	}

	standings := BuildStandings(playerIDs(5), matches)
	require.Len(t, standings, 5)

	ids := make([]int64, len(standings))
	for i, s := range standings {
		ids[i] = s.UserID
	}
	assert.Equal(t, []int64{1, 5, 4, 2, 3}, ids)
	assert.Equal(t, Standing{UserID: 1, Wins: 2}, standings[0])
	assert.Equal(t, Standing{UserID: 5, Wins: 1}, standings[1])
	assert.Equal(t, Standing{UserID: 4, Wins: 1, Losses: 1}, standings[2])
}

func TestPairingSetIsUnordered(t *testing.T) {
	set := make(PairingSet)
	set.Add(9, 2)
	assert.True(t, set.Has(2, 9))
	assert.True(t, set.Has(9, 2))
	assert.False(t, set.Has(2, 3))
	assert.Equal(t, NewPairing(2, 9), NewPairing(9, 2))
}

func TestPreviousPairingsSkipsByesAndOpenMatches(t *testing.T) {
	matches := []*models.Match{
		completed(1, 1, 2, 1),
		completed(1, 3, ByePlayerID, 3),
		{Round: 2, User1ID: ptr(1), User2ID: ptr(3), Status: models.MatchStatusScheduled},
	}
	set := PreviousPairings(matches)
	assert.Len(t, set, 1)
	assert.True(t, set.Has(1, 2))
}

func TestPairNextRoundAvoidsRematches(t *testing.T) {
	matches := []*models.Match{
		completed(1, 1, 2, 1),
		completed(1, 3, 4, 3),
	}
	standings := BuildStandings(playerIDs(4), matches)

	next := PairNextRound(8, standings, PreviousPairings(matches), 2)
	require.Len(t, next, 2)

	assert.Equal(t, []int64{1, 3}, []int64{*next[0].User1ID, *next[0].User2ID})
	assert.Equal(t, []int64{2, 4}, []int64{*next[1].User1ID, *next[1].User2ID})
	for i, m := range next {
		assert.Equal(t, 2, m.Round)
		assert.Equal(t, i+1, m.OrderInRound)
		assert.Equal(t, int64(8), m.TournamentID)
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
	}
}

func TestPairNextRoundFallsBackToRematch(t *testing.T) {
	previous := make(PairingSet)
	previous.Add(1, 2)
	standings := []Standing{{UserID: 1, Wins: 1}, {UserID: 2, Losses: 1}}

	next := PairNextRound(1, standings, previous, 2)
	require.Len(t, next, 1)
	assert.True(t, next[0].HasPlayer(1))
	assert.True(t, next[0].HasPlayer(2))
}

func TestPairNextRoundOddFieldByeGoesToLast(t *testing.T) {
	standings := []Standing{
		{UserID: 4, Wins: 1},
		{UserID: 1, Wins: 1},
		{UserID: ByePlayerID},
		{UserID: 2, Losses: 1},
		{UserID: 5, Losses: 1},
		{UserID: 3, Losses: 2},
	}

	next := PairNextRound(1, standings, make(PairingSet), 2)
	require.Len(t, next, 3)

	bye := next[2]
	assert.Equal(t, int64(3), *bye.User1ID)
	assert.Equal(t, ByePlayerID, *bye.User2ID)
	assert.Equal(t, int64(3), *bye.WinnerID)
	assert.Equal(t, models.MatchStatusCompleted, bye.Status)
	assert.Equal(t, 3, bye.OrderInRound)

	for _, m := range next[:2] {
		assert.False(t, m.HasPlayer(3))
		assert.False(t, m.HasPlayer(ByePlayerID))
	}
}

func ptr(v int64) *int64 {
	return &v
}
