package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchNextInvalid       = errors.New("next match reference invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.Match, error)
	// GetByIDForUpdate locks the match row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int64) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int64) ([]*models.Match, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int64) (int64, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int64, status models.MatchStatus, winnerID *int64) error
	UpdateSlots(ctx context.Context, exec SQLExecutor, id int64, user1ID, user2ID *int64) error
	UpdateNextMatch(ctx context.Context, exec SQLExecutor, id int64, nextMatchID *int64) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, round, order_in_round, user1_id, user2_id, status, winner_id, next_match_id, created_at`

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	return executorOrDB(exec, r.db)
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, round, order_in_round, user1_id, user2_id, status, winner_id, next_match_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		match.TournamentID,
		match.Round,
		match.OrderInRound,
		match.User1ID,
		match.User2ID,
		match.Status,
		match.WinnerID,
		match.NextMatchID,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.findOne(ctx, r.getExecutor(exec), query, id)
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int64) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, r.getExecutor(exec), query, id)
}

func (r *postgresMatchRepository) findOne(ctx context.Context, exec SQLExecutor, query string, id int64) (*models.Match, error) {
	match := &models.Match{}
	if err := scanMatch(exec.QueryRowContext(ctx, query, id), match); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int64) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round ASC, order_in_round ASC, id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match := &models.Match{}
		if scanErr := scanMatch(rows, match); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int64) (int64, error) {
	query := `DELETE FROM matches WHERE tournament_id = $1`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches for tournament %d: %w", tournamentID, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return deleted, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int64, status models.MatchStatus, winnerID *int64) error {
	query := `UPDATE matches SET status = $1, winner_id = $2 WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, winnerID, id)
	if err != nil {
		return fmt.Errorf("UpdateResult: failed to execute query for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSlots(ctx context.Context, exec SQLExecutor, id int64, user1ID, user2ID *int64) error {
	query := `UPDATE matches SET user1_id = $1, user2_id = $2 WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, user1ID, user2ID, id)
	if err != nil {
		return fmt.Errorf("UpdateSlots: failed to execute query for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateNextMatch(ctx context.Context, exec SQLExecutor, id int64, nextMatchID *int64) error {
	query := `UPDATE matches SET next_match_id = $1 WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, nextMatchID, id)
	if err != nil {
		if handled := r.handleMatchError(err); handled != err {
			return handled
		}
		return fmt.Errorf("UpdateNextMatch: failed to execute query for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_next_match_id_fkey":
			return ErrMatchNextInvalid
		}
	}
	return err
}

func scanMatch(row rowScanner, m *models.Match) error {
	return row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.Round,
		&m.OrderInRound,
		&m.User1ID,
		&m.User2ID,
		&m.Status,
		&m.WinnerID,
		&m.NextMatchID,
		&m.CreatedAt,
	)
}
