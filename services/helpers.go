package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

// lockTournament loads the tournament with a row lock. Every mutating
// operation starts here so operations on one tournament run one at a time.
func lockTournament(ctx context.Context, exec repositories.SQLExecutor, repo repositories.TournamentRepository, id int64) (*models.Tournament, error) {
	t, err := repo.GetByIDForUpdate(ctx, exec, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to lock tournament %d: %w", id, err)
	}
	return t, nil
}

func requireOwner(t *models.Tournament, actorID int64) error {
	if t.OwnerID != actorID {
		return ErrNotTournamentOwner
	}
	return nil
}

func playerIDsOf(participants []*models.Participant) []int64 {
	ids := make([]int64, len(participants))
	for i, p := range participants {
		ids[i] = p.UserID
	}
	return ids
}

func int64Ptr(v int64) *int64 {
	return &v
}
