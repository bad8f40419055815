package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/storage"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name       string                  `json:"name"`
	Format     models.TournamentFormat `json:"format"`
	RoundCount *int                    `json:"round_count,omitempty"`
	StartDate  *time.Time              `json:"start_date,omitempty"`
	Location   *string                 `json:"location,omitempty"`
}

// TournamentDetails is a tournament with everything hanging off it.
type TournamentDetails struct {
	Tournament   *models.Tournament    `json:"tournament"`
	Participants []*models.Participant `json:"participants"`
	Matches      []*models.Match       `json:"matches"`
}

type StartResult struct {
	Tournament *models.Tournament `json:"tournament"`
	Matches    []*models.Match    `json:"matches"`
}

// CompletionResult is what CompleteTournament decided and wrote. It is also
// the document archived to object storage.
type CompletionResult struct {
	TournamentID  int64         `json:"tournament_id"`
	WinnerID      int64         `json:"winner_id"`
	RunnerUpID    *int64        `json:"runner_up_id,omitempty"`
	Standings     map[int64]int `json:"standings"`
	RatingChanges map[int64]int `json:"rating_changes"`
	NewRatings    map[int64]int `json:"new_ratings"`
	CompletedAt   time.Time     `json:"completed_at"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, ownerID int64, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int64) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)
	GetFullTournamentData(ctx context.Context, id int64) (*TournamentDetails, error)
	StartTournament(ctx context.Context, actorID, id int64) (*StartResult, error)
	CompleteTournament(ctx context.Context, actorID, id int64) (*CompletionResult, error)
}

type tournamentService struct {
	tx              Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	userRepo        repositories.UserRepository
	builder         *bracketBuilder
	uploader        storage.FileUploader
	logger          *slog.Logger
	now             func() time.Time
}

// NewTournamentService wires the tournament lifecycle. uploader may be nil,
// in which case results are not archived.
func NewTournamentService(
	tx Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	rnd brackets.Shuffler,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		userRepo:        userRepo,
		builder:         newBracketBuilder(participantRepo, matchRepo, rnd, logger),
		uploader:        uploader,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, ownerID int64, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !input.Format.IsValid() {
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, input.Format)
	}

	roundCount := input.RoundCount
	if input.Format == models.FormatSwissStage {
		if roundCount == nil || *roundCount < 1 {
			return nil, ErrRoundCountRequired
		}
	} else {
		roundCount = nil
	}

	t := &models.Tournament{
		Name:       name,
		Format:     input.Format,
		Status:     models.StatusNotStarted,
		OwnerID:    ownerID,
		RoundCount: roundCount,
		StartDate:  input.StartDate,
		Location:   input.Location,
	}
	if err := s.tournamentRepo.Create(ctx, nil, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentInvalidOwner) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.Int64("tournament_id", t.ID),
		slog.String("format", string(t.Format)),
		slog.Int64("owner_id", ownerID),
	)
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int64) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	if filter.Status != nil {
		switch *filter.Status {
		case models.StatusNotStarted, models.StatusInProgress, models.StatusCompleted:
		default:
			return nil, newError(ErrValidationFailed, fmt.Sprintf("unknown status filter '%s'", *filter.Status))
		}
	}
	if filter.Format != nil && !filter.Format.IsValid() {
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, *filter.Format)
	}
	return s.tournamentRepo.List(ctx, filter)
}

func (s *tournamentService) GetFullTournamentData(ctx context.Context, id int64) (*TournamentDetails, error) {
	details := &TournamentDetails{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, nil, id)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to fetch tournament %d: %w", id, err)
		}
		details.Tournament = t
		return nil
	})

	g.Go(func() error {
		participants, err := s.participantRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to fetch participants for tournament %d: %w", id, err)
		}
		details.Participants = participants
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to fetch matches for tournament %d: %w", id, err)
		}
		details.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

func (s *tournamentService) StartTournament(ctx context.Context, actorID, id int64) (*StartResult, error) {
	var result *StartResult
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := lockTournament(ctx, exec, s.tournamentRepo, id)
		if err != nil {
			return err
		}
		if err := requireOwner(t, actorID); err != nil {
			return err
		}
		if !t.Status.CanTransitionTo(models.StatusInProgress) {
			return ErrTournamentAlreadyStarted
		}

		if err := s.tournamentRepo.UpdateStatus(ctx, exec, t.ID, models.StatusInProgress); err != nil {
			return fmt.Errorf("failed to start tournament %d: %w", t.ID, err)
		}
		t.Status = models.StatusInProgress

		matches, err := s.builder.build(ctx, exec, t)
		if err != nil {
			return err
		}
		result = &StartResult{Tournament: t, Matches: matches}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament started",
		slog.Int64("tournament_id", id),
		slog.Int("matches", len(result.Matches)),
	)
	return result, nil
}

func (s *tournamentService) CompleteTournament(ctx context.Context, actorID, id int64) (*CompletionResult, error) {
	var result *CompletionResult
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := lockTournament(ctx, exec, s.tournamentRepo, id)
		if err != nil {
			return err
		}
		if err := requireOwner(t, actorID); err != nil {
			return err
		}
		switch t.Status {
		case models.StatusCompleted:
			return ErrTournamentAlreadyCompleted
		case models.StatusInProgress:
		default:
			return ErrTournamentNotInProgress
		}

		participants, err := s.participantRepo.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return fmt.Errorf("failed to load participants for tournament %d: %w", t.ID, err)
		}
		matches, err := s.matchRepo.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return fmt.Errorf("failed to load matches for tournament %d: %w", t.ID, err)
		}

		results, err := brackets.DetermineResults(t.Format, matches, participants)
		if err != nil {
			return err
		}
		if results.WinnerID == nil {
			return ErrNoWinnerDetermined
		}
		winnerID := *results.WinnerID

		changes := brackets.CalculateRatingChanges(participants, results.Standings)
		newRatings := make(map[int64]int, len(participants))

		// Lock users in id order so concurrent completions of tournaments
		// sharing players cannot deadlock.
		userIDs := playerIDsOf(participants)
		sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })
		for _, userID := range userIDs {
			user, err := s.userRepo.GetByIDForUpdate(ctx, exec, userID)
			if err != nil {
				if errors.Is(err, repositories.ErrUserNotFound) {
					return ErrUserNotFound
				}
				return fmt.Errorf("failed to lock user %d: %w", userID, err)
			}

			user.Rating = brackets.ApplyRatingDelta(user.Rating, changes[userID])
			user.TournamentsPlayed++
			if userID == winnerID {
				user.TournamentsWon++
			}
			if err := s.userRepo.UpdateStats(ctx, exec, user); err != nil {
				return err
			}
			newRatings[userID] = user.Rating
		}

		if err := s.tournamentRepo.Complete(ctx, exec, t.ID, winnerID); err != nil {
			return fmt.Errorf("failed to complete tournament %d: %w", t.ID, err)
		}

		result = &CompletionResult{
			TournamentID:  t.ID,
			WinnerID:      winnerID,
			RunnerUpID:    results.RunnerUpID,
			Standings:     results.Standings,
			RatingChanges: changes,
			NewRatings:    newRatings,
			CompletedAt:   s.now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament completed",
		slog.Int64("tournament_id", id),
		slog.Int64("winner_id", result.WinnerID),
		slog.Int("participants", len(result.Standings)),
	)
	s.archiveResults(ctx, result)
	return result, nil
}

// archiveResults stores the completion document. The tournament is already
// committed, so failures are only logged.
func (s *tournamentService) archiveResults(ctx context.Context, result *CompletionResult) {
	if s.uploader == nil {
		return
	}
	key := storage.TournamentResultsKey(result.TournamentID)
	uploaded, err := storage.UploadJSON(ctx, s.uploader, key, result)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to archive tournament results",
			slog.Int64("tournament_id", result.TournamentID),
			slog.String("key", key),
			slog.Any("error", err),
		)
		return
	}
	s.logger.InfoContext(ctx, "tournament results archived",
		slog.Int64("tournament_id", result.TournamentID),
		slog.String("key", uploaded.Key),
		slog.String("location", uploaded.Location),
	)
}
