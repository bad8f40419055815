package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type ParticipantService interface {
	// JoinTournament registers userID and snapshots the user's current rating.
	JoinTournament(ctx context.Context, tournamentID, userID int64, deckID *int64) (*models.Participant, error)
	ListParticipants(ctx context.Context, tournamentID int64) ([]*models.Participant, error)
}

type participantService struct {
	tx              Transactor
	participantRepo repositories.ParticipantRepository
	userRepo        repositories.UserRepository
	tournamentRepo  repositories.TournamentRepository
	logger          *slog.Logger
}

func NewParticipantService(
	tx Transactor,
	participantRepo repositories.ParticipantRepository,
	userRepo repositories.UserRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
) ParticipantService {
	return &participantService{
		tx:              tx,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		tournamentRepo:  tournamentRepo,
		logger:          logger,
	}
}

func (s *participantService) JoinTournament(ctx context.Context, tournamentID, userID int64, deckID *int64) (*models.Participant, error) {
	var participant *models.Participant
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := lockTournament(ctx, exec, s.tournamentRepo, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != models.StatusNotStarted {
			return ErrTournamentNotOpen
		}

		user, err := s.userRepo.GetByID(ctx, exec, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load user %d: %w", userID, err)
		}

		existing, err := s.participantRepo.FindByUserAndTournament(ctx, exec, user.ID, t.ID)
		switch {
		case err == nil && existing != nil:
			return ErrAlreadyJoined
		case err != nil && !errors.Is(err, repositories.ErrParticipantNotFound):
			return fmt.Errorf("failed to check registration of user %d: %w", user.ID, err)
		}

		p := &models.Participant{
			TournamentID:  t.ID,
			UserID:        user.ID,
			DeckID:        deckID,
			InitialRating: user.Rating,
		}
		if err := s.participantRepo.Create(ctx, exec, p); err != nil {
			switch {
			case errors.Is(err, repositories.ErrParticipantConflict):
				return ErrAlreadyJoined
			case errors.Is(err, repositories.ErrParticipantUserInvalid):
				return ErrUserNotFound
			case errors.Is(err, repositories.ErrParticipantTournamentInvalid):
				return ErrTournamentNotFound
			}
			return err
		}
		participant = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "participant joined",
		slog.Int64("tournament_id", tournamentID),
		slog.Int64("user_id", userID),
		slog.Int("initial_rating", participant.InitialRating),
	)
	return participant, nil
}

func (s *participantService) ListParticipants(ctx context.Context, tournamentID int64) ([]*models.Participant, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.participantRepo.ListByTournament(ctx, nil, tournamentID)
}
