package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

// AssignWinnerResult echoes the tournament format so callers can tell whether
// the winner moved on through the bracket.
type AssignWinnerResult struct {
	Match     *models.Match           `json:"match"`
	Format    models.TournamentFormat `json:"format"`
	NextMatch *models.Match           `json:"next_match,omitempty"`
}

type MatchService interface {
	ListMatches(ctx context.Context, tournamentID int64) ([]*models.Match, error)
	AssignWinner(ctx context.Context, actorID, matchID, winnerID int64) (*AssignWinnerResult, error)
}

type matchService struct {
	tx             Transactor
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	logger         *slog.Logger
}

func NewMatchService(
	tx Transactor,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		logger:         logger,
	}
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID int64) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) AssignWinner(ctx context.Context, actorID, matchID, winnerID int64) (*AssignWinnerResult, error) {
	var result *AssignWinnerResult
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.getMatch(ctx, exec, matchID, false)
		if err != nil {
			return err
		}
		t, err := lockTournament(ctx, exec, s.tournamentRepo, match.TournamentID)
		if err != nil {
			return err
		}
		if err := requireOwner(t, actorID); err != nil {
			return err
		}
		if t.Status != models.StatusInProgress {
			return ErrTournamentNotInProgress
		}

		// Re-read under the tournament lock.
		match, err = s.getMatch(ctx, exec, matchID, true)
		if err != nil {
			return err
		}
		if match.IsCompleted() {
			return ErrMatchAlreadyCompleted
		}
		if isWalkover(match) {
			if err := s.requireFeedersDecided(ctx, exec, match); err != nil {
				return err
			}
		}

		resolved, err := resolveWinner(match, winnerID)
		if err != nil {
			return err
		}

		if err := s.matchRepo.UpdateResult(ctx, exec, match.ID, models.MatchStatusCompleted, &resolved); err != nil {
			return fmt.Errorf("failed to record winner for match %d: %w", match.ID, err)
		}
		match.Status = models.MatchStatusCompleted
		match.WinnerID = &resolved

		result = &AssignWinnerResult{Match: match, Format: t.Format}
		if t.Format == models.FormatSingleElimination {
			next, err := advanceWinner(ctx, exec, s.matchRepo, match, resolved)
			if err != nil {
				return err
			}
			result.NextMatch = next
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "match winner assigned",
		slog.Int64("match_id", matchID),
		slog.Int64("tournament_id", result.Match.TournamentID),
		slog.Int64("winner_id", *result.Match.WinnerID),
	)
	return result, nil
}

func (s *matchService) getMatch(ctx context.Context, exec repositories.SQLExecutor, id int64, lock bool) (*models.Match, error) {
	var (
		match *models.Match
		err   error
	)
	if lock {
		match, err = s.matchRepo.GetByIDForUpdate(ctx, exec, id)
	} else {
		match, err = s.matchRepo.GetByID(ctx, exec, id)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", id, err)
	}
	return match, nil
}

// requireFeedersDecided fails while any match that feeds m is unfinished.
// An empty slot only means a walkover once nothing can still fill it.
func (s *matchService) requireFeedersDecided(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	matches, err := s.matchRepo.ListByTournament(ctx, exec, m.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to load matches for tournament %d: %w", m.TournamentID, err)
	}
	for _, feeder := range matches {
		if feeder.NextMatchID != nil && *feeder.NextMatchID == m.ID && !feeder.IsCompleted() {
			return ErrFeederMatchPending
		}
	}
	return nil
}

func isWalkover(m *models.Match) bool {
	return (m.User1ID == nil) != (m.User2ID == nil)
}

// resolveWinner checks winnerID against the match slots. A match with exactly
// one occupied slot is a walkover and that player wins whatever was asked.
func resolveWinner(m *models.Match, winnerID int64) (int64, error) {
	switch {
	case m.User1ID != nil && m.User2ID == nil:
		return *m.User1ID, nil
	case m.User1ID == nil && m.User2ID != nil:
		return *m.User2ID, nil
	}

	if winnerID == brackets.ByePlayerID || !m.HasPlayer(winnerID) {
		return 0, ErrWinnerNotInMatch
	}
	return winnerID, nil
}
