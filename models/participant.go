package models

import "time"

// Participant joins a user to a tournament. InitialRating is the user's
// rating at join time and is what rating deltas are computed from.
type Participant struct {
	ID            int64     `json:"id" db:"id"`
	TournamentID  int64     `json:"tournament_id" db:"tournament_id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	DeckID        *int64    `json:"deck_id,omitempty" db:"deck_id"`
	InitialRating int       `json:"initial_rating" db:"initial_rating"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
