package services

import (
	"errors"

	"github.com/Dosada05/tournament-engine/brackets"
)

// Error kinds. Every error a service returns on purpose wraps exactly one of
// these, so callers can branch with errors.Is on the kind or on the specific
// error. Anything else is an infrastructure failure.
var (
	ErrNotFound             = errors.New("requested resource not found")
	ErrInvalidState         = errors.New("operation not allowed in the current state")
	ErrInvariantViolation   = errors.New("bracket invariant violated")
	ErrUnsupportedFormat    = brackets.ErrUnsupportedFormat
	ErrValidationFailed     = errors.New("validation failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
	ErrRegistrationConflict = errors.New("conflict with existing registration")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

type serviceError struct {
	kind error
	msg  string
}

func (e *serviceError) Error() string { return e.msg }

func (e *serviceError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &serviceError{kind: kind, msg: msg}
}

var (
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrTournamentNotFound = newError(ErrNotFound, "tournament not found")
	ErrMatchNotFound      = newError(ErrNotFound, "match not found")

	ErrTournamentNotOpen          = newError(ErrInvalidState, "tournament is no longer accepting participants")
	ErrTournamentAlreadyStarted   = newError(ErrInvalidState, "tournament has already started")
	ErrTournamentNotInProgress    = newError(ErrInvalidState, "tournament is not in progress")
	ErrTournamentAlreadyCompleted = newError(ErrInvalidState, "tournament is already completed")
	ErrNotEnoughParticipants      = newError(ErrInvalidState, "at least two participants are required")
	ErrNoWinnerDetermined         = newError(ErrInvalidState, "tournament winner cannot be determined yet")
	ErrNotSwiss                   = newError(ErrInvalidState, "operation is only available for Swiss tournaments")
	ErrMatchesNotGenerated        = newError(ErrInvalidState, "no matches have been generated yet")
	ErrRoundIncomplete            = newError(ErrInvalidState, "current round still has unfinished matches")
	ErrAllRoundsGenerated         = newError(ErrInvalidState, "all configured rounds have already been generated")
	ErrMatchAlreadyCompleted      = newError(ErrInvalidState, "match is already completed")
	ErrFeederMatchPending         = newError(ErrInvalidState, "match is still waiting for an earlier match to finish")

	ErrWinnerNotInMatch   = newError(ErrInvariantViolation, "winner not a participant")
	ErrNextMatchFull      = newError(ErrInvariantViolation, "next match already has two players")
	ErrNextMatchCompleted = newError(ErrInvariantViolation, "next match is already completed")

	ErrTournamentNameRequired = newError(ErrValidationFailed, "tournament name is required")
	ErrRoundCountRequired     = newError(ErrValidationFailed, "Swiss tournaments need a round count of at least 1")
	ErrPasswordTooShort       = newError(ErrValidationFailed, "password is too short")
	ErrCredentialsRequired    = newError(ErrValidationFailed, "email and password are required")
	ErrNicknameRequired       = newError(ErrValidationFailed, "nickname is required")

	ErrNotTournamentOwner = newError(ErrForbiddenOperation, "only the tournament owner can perform this action")

	ErrAlreadyJoined        = newError(ErrRegistrationConflict, "user is already registered for this tournament")
	ErrUserEmailConflict    = newError(ErrRegistrationConflict, "email address is already in use")
	ErrUserNicknameConflict = newError(ErrRegistrationConflict, "nickname is already in use")

	ErrInvalidCredentials = newError(ErrAuthenticationFailed, "invalid email or password")
)
