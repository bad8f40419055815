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

// GenerationResult reports the matches written by one generation call.
type GenerationResult struct {
	TournamentID int64           `json:"tournament_id"`
	Round        int             `json:"round,omitempty"`
	Count        int             `json:"count"`
	Matches      []*models.Match `json:"matches"`
}

type BracketService interface {
	// GenerateMatches replaces the tournament's matches with a freshly
	// generated schedule. The tournament must be in progress.
	GenerateMatches(ctx context.Context, actorID, tournamentID int64) (*GenerationResult, error)
	// GenerateNextRound pairs the next Swiss round from current standings.
	GenerateNextRound(ctx context.Context, actorID, tournamentID int64) (*GenerationResult, error)
}

type bracketService struct {
	tx             Transactor
	tournamentRepo repositories.TournamentRepository
	builder        *bracketBuilder
	logger         *slog.Logger
}

func NewBracketService(
	tx Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	rnd brackets.Shuffler,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		builder:        newBracketBuilder(participantRepo, matchRepo, rnd, logger),
		logger:         logger,
	}
}

func (s *bracketService) GenerateMatches(ctx context.Context, actorID, tournamentID int64) (*GenerationResult, error) {
	var result *GenerationResult
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := lockTournament(ctx, exec, s.tournamentRepo, tournamentID)
		if err != nil {
			return err
		}
		if err := requireOwner(t, actorID); err != nil {
			return err
		}
		if t.Status != models.StatusInProgress {
			return ErrTournamentNotInProgress
		}

		matches, err := s.builder.build(ctx, exec, t)
		if err != nil {
			return err
		}
		result = &GenerationResult{TournamentID: t.ID, Count: len(matches), Matches: matches}
		if t.Format == models.FormatSwissStage {
			result.Round = 1
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "matches generated",
		slog.Int64("tournament_id", tournamentID),
		slog.Int("count", result.Count),
	)
	return result, nil
}

func (s *bracketService) GenerateNextRound(ctx context.Context, actorID, tournamentID int64) (*GenerationResult, error) {
	var result *GenerationResult
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := lockTournament(ctx, exec, s.tournamentRepo, tournamentID)
		if err != nil {
			return err
		}
		if err := requireOwner(t, actorID); err != nil {
			return err
		}
		if t.Format != models.FormatSwissStage {
			return ErrNotSwiss
		}
		if t.Status != models.StatusInProgress {
			return ErrTournamentNotInProgress
		}

		matches, err := s.builder.matchRepo.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return fmt.Errorf("failed to load matches for tournament %d: %w", t.ID, err)
		}
		if len(matches) == 0 {
			return ErrMatchesNotGenerated
		}

		currentRound := 0
		for _, m := range matches {
			if m.Round > currentRound {
				currentRound = m.Round
			}
		}
		for _, m := range matches {
			if m.Round == currentRound && !m.IsCompleted() {
				return ErrRoundIncomplete
			}
		}
		if t.RoundCount != nil && currentRound >= *t.RoundCount {
			return ErrAllRoundsGenerated
		}

		participants, err := s.builder.participantRepo.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return fmt.Errorf("failed to load participants for tournament %d: %w", t.ID, err)
		}

		standings := brackets.BuildStandings(playerIDsOf(participants), matches)
		next := brackets.PairNextRound(t.ID, standings, brackets.PreviousPairings(matches), currentRound+1)
		for _, m := range next {
			if err := s.builder.matchRepo.Create(ctx, exec, m); err != nil {
				return fmt.Errorf("failed to save round %d match: %w", m.Round, err)
			}
		}

		result = &GenerationResult{TournamentID: t.ID, Round: currentRound + 1, Count: len(next), Matches: next}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "swiss round generated",
		slog.Int64("tournament_id", tournamentID),
		slog.Int("round", result.Round),
		slog.Int("count", result.Count),
	)
	return result, nil
}

// bracketBuilder writes a tournament's opening schedule. It runs inside a
// caller-owned transaction and is shared by tournament start and explicit
// regeneration.
type bracketBuilder struct {
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	rnd             brackets.Shuffler
	logger          *slog.Logger
}

func newBracketBuilder(
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	rnd brackets.Shuffler,
	logger *slog.Logger,
) *bracketBuilder {
	return &bracketBuilder{participantRepo: participantRepo, matchRepo: matchRepo, rnd: rnd, logger: logger}
}

func (b *bracketBuilder) build(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) ([]*models.Match, error) {
	generator, err := brackets.NewGenerator(t.Format)
	if err != nil {
		return nil, err
	}

	participants, err := b.participantRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", t.ID, err)
	}
	if len(participants) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	deleted, err := b.matchRepo.DeleteByTournament(ctx, exec, t.ID)
	if err != nil {
		return nil, err
	}
	if deleted > 0 {
		b.logger.InfoContext(ctx, "existing matches removed before regeneration",
			slog.Int64("tournament_id", t.ID),
			slog.Int64("deleted", deleted),
		)
	}

	matches, err := generator.GenerateBracket(brackets.GenerateBracketParams{
		TournamentID: t.ID,
		PlayerIDs:    playerIDsOf(participants),
		Rand:         b.rnd,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughPlayers) {
			return nil, ErrNotEnoughParticipants
		}
		return nil, fmt.Errorf("failed to generate %s bracket for tournament %d: %w", generator.GetName(), t.ID, err)
	}

	for _, m := range matches {
		if err := b.matchRepo.Create(ctx, exec, m); err != nil {
			return nil, fmt.Errorf("failed to save match (round %d, #%d): %w", m.Round, m.OrderInRound, err)
		}
	}

	if t.Format != models.FormatSingleElimination {
		return matches, nil
	}

	if err := brackets.LinkBracket(matches); err != nil {
		return nil, fmt.Errorf("failed to link bracket for tournament %d: %w", t.ID, err)
	}
	for _, m := range matches {
		if m.NextMatchID == nil {
			continue
		}
		if err := b.matchRepo.UpdateNextMatch(ctx, exec, m.ID, m.NextMatchID); err != nil {
			return nil, fmt.Errorf("failed to link match %d: %w", m.ID, err)
		}
	}

	if err := b.resolveOpeningByes(ctx, exec, matches); err != nil {
		return nil, err
	}
	return b.matchRepo.ListByTournament(ctx, exec, t.ID)
}

// resolveOpeningByes completes every round-1 match that has only one player
// and moves that player on.
func (b *bracketBuilder) resolveOpeningByes(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	for _, m := range matches {
		if m.Round != 1 || m.User1ID == nil || m.User2ID != nil {
			continue
		}
		winner := *m.User1ID
		if err := b.matchRepo.UpdateResult(ctx, exec, m.ID, models.MatchStatusCompleted, &winner); err != nil {
			return fmt.Errorf("failed to complete bye match %d: %w", m.ID, err)
		}
		m.Status, m.WinnerID = models.MatchStatusCompleted, &winner
		if _, err := advanceWinner(ctx, exec, b.matchRepo, m, winner); err != nil {
			return err
		}
	}
	return nil
}

// advanceWinner places winnerID into the first open slot of the match that m
// feeds. It returns the updated next match, or nil when m has none.
func advanceWinner(ctx context.Context, exec repositories.SQLExecutor, repo repositories.MatchRepository, m *models.Match, winnerID int64) (*models.Match, error) {
	if m.NextMatchID == nil {
		return nil, nil
	}

	next, err := repo.GetByIDForUpdate(ctx, exec, *m.NextMatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load next match %d: %w", *m.NextMatchID, err)
	}

	if next.IsCompleted() {
		return nil, ErrNextMatchCompleted
	}

	switch {
	case next.User1ID == nil:
		next.User1ID = int64Ptr(winnerID)
	case next.User2ID == nil:
		next.User2ID = int64Ptr(winnerID)
	default:
		return nil, ErrNextMatchFull
	}

	if err := repo.UpdateSlots(ctx, exec, next.ID, next.User1ID, next.User2ID); err != nil {
		return nil, fmt.Errorf("failed to update next match %d: %w", next.ID, err)
	}
	return next, nil
}
