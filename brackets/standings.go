package brackets

import (
	"sort"

	"github.com/Dosada05/tournament-engine/models"
)

type Standing struct {
	UserID        int64 `json:"user_id"`
	Wins          int   `json:"wins"`
	Losses        int   `json:"losses"`
	InitialRating int   `json:"initial_rating"`
}

// BuildStandings credits wins and losses from completed matches. Every id in
// playerIDs appears even without a result; byes count as a win for the
// player and nothing for the sentinel. The result is sorted by wins desc,
// losses asc, then user id.
func BuildStandings(playerIDs []int64, matches []*models.Match) []Standing {
	records := make(map[int64]*Standing, len(playerIDs))
	get := func(id int64) *Standing {
		s, ok := records[id]
		if !ok {
			s = &Standing{UserID: id}
			records[id] = s
		}
		return s
	}
	for _, id := range playerIDs {
		if id != ByePlayerID {
			get(id)
		}
	}

	for _, m := range matches {
		if !m.IsCompleted() || m.WinnerID == nil || *m.WinnerID == ByePlayerID {
			continue
		}
		get(*m.WinnerID).Wins++
		if loser := m.LoserID(); loser != nil && *loser != ByePlayerID {
			get(*loser).Losses++
		}
	}

	standings := make([]Standing, 0, len(records))
	for _, s := range records {
		standings = append(standings, *s)
	}
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		return a.UserID < b.UserID
	})
	return standings
}

// Pairing is an unordered pair of players.
type Pairing struct {
	low, high int64
}

func NewPairing(a, b int64) Pairing {
	if a > b {
		a, b = b, a
	}
	return Pairing{low: a, high: b}
}

type PairingSet map[Pairing]struct{}

// PreviousPairings collects every completed head-to-head in matches. Byes
// are not pairings.
func PreviousPairings(matches []*models.Match) PairingSet {
	set := make(PairingSet)
	for _, m := range matches {
		if !m.IsCompleted() || m.User1ID == nil || m.User2ID == nil {
			continue
		}
		if *m.User1ID == ByePlayerID || *m.User2ID == ByePlayerID {
			continue
		}
		set.Add(*m.User1ID, *m.User2ID)
	}
	return set
}

func (s PairingSet) Add(a, b int64) {
	s[NewPairing(a, b)] = struct{}{}
}

func (s PairingSet) Has(a, b int64) bool {
	_, ok := s[NewPairing(a, b)]
	return ok
}
