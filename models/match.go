package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

// Match is a single pairing. User slots hold user ids; nil means the slot is
// still waiting for a winner from an earlier match, -1 marks a bye.
type Match struct {
	ID           int64       `json:"id" db:"id"`
	TournamentID int64       `json:"tournament_id" db:"tournament_id"`
	Round        int         `json:"round" db:"round"`
	OrderInRound int         `json:"order_in_round" db:"order_in_round"`
	User1ID      *int64      `json:"user1_id,omitempty" db:"user1_id"`
	User2ID      *int64      `json:"user2_id,omitempty" db:"user2_id"`
	Status       MatchStatus `json:"status" db:"status"`
	WinnerID     *int64      `json:"winner_id,omitempty" db:"winner_id"`
	NextMatchID  *int64      `json:"next_match_id,omitempty" db:"next_match_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

// HasPlayer reports whether userID sits in either slot.
func (m *Match) HasPlayer(userID int64) bool {
	return (m.User1ID != nil && *m.User1ID == userID) || (m.User2ID != nil && *m.User2ID == userID)
}

// LoserID returns the slot value that is not the winner, if both are known.
func (m *Match) LoserID() *int64 {
	if m.WinnerID == nil || m.User1ID == nil || m.User2ID == nil {
		return nil
	}
	if *m.User1ID == *m.WinnerID {
		return m.User2ID
	}
	return m.User1ID
}
