package models

import "time"

// TournamentStatus mirrors the tournament_status column.
type TournamentStatus string

const (
	StatusNotStarted TournamentStatus = "not_started"
	StatusInProgress TournamentStatus = "in_progress"
	StatusCompleted  TournamentStatus = "completed"
)

// TournamentFormat selects the bracket generator.
type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "SingleElimination"
	FormatRoundRobin        TournamentFormat = "RoundRobin"
	FormatSwissStage        TournamentFormat = "SwissStage"
)

func (f TournamentFormat) IsValid() bool {
	switch f {
	case FormatSingleElimination, FormatRoundRobin, FormatSwissStage:
		return true
	}
	return false
}

type Tournament struct {
	ID         int64            `json:"id" db:"id"`
	Name       string           `json:"name" db:"name"`
	Format     TournamentFormat `json:"format" db:"format"`
	Status     TournamentStatus `json:"status" db:"status"`
	OwnerID    int64            `json:"owner_id" db:"owner_id"`
	RoundCount *int             `json:"round_count,omitempty" db:"round_count"` // Swiss only
	WinnerID   *int64           `json:"winner_id,omitempty" db:"winner_id"`
	StartDate  *time.Time       `json:"start_date,omitempty" db:"start_date"`
	Location   *string          `json:"location,omitempty" db:"location"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

// CanTransitionTo reports whether the status may move to next. Statuses only move forward.
func (s TournamentStatus) CanTransitionTo(next TournamentStatus) bool {
	switch s {
	case StatusNotStarted:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted
	}
	return false
}
