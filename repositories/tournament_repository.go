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
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentInvalidOwner  = errors.New("invalid owner reference")
	ErrTournamentInvalidWinner = errors.New("invalid winner reference")
	ErrTournamentInvalidRounds = errors.New("round count must be positive")
)

type ListTournamentsFilter struct {
	OwnerID *int64
	Status  *models.TournamentStatus
	Format  *models.TournamentFormat
	Limit   int
	Offset  int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.Tournament, error)
	// GetByIDForUpdate locks the tournament row until the surrounding
	// transaction ends. exec must be a transaction.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int64) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int64, status models.TournamentStatus) error
	Complete(ctx context.Context, exec SQLExecutor, id int64, winnerID int64) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, format, status, owner_id, round_count, winner_id, start_date, location, created_at`

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	return executorOrDB(exec, r.db)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, format, status, owner_id, round_count, start_date, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		t.Name, t.Format, t.Status, t.OwnerID, t.RoundCount, t.StartDate, t.Location,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.findOne(ctx, r.getExecutor(exec), query, id)
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int64) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, r.getExecutor(exec), query, id)
}

func (r *postgresTournamentRepository) findOne(ctx context.Context, exec SQLExecutor, query string, id int64) (*models.Tournament, error) {
	t, err := scanTournament(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OwnerID != nil {
		query += fmt.Sprintf(" AND owner_id = $%d", argID)
		args = append(args, *filter.OwnerID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Format != nil {
		query += fmt.Sprintf(" AND format = $%d", argID)
		args = append(args, *filter.Format)
		argID++
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int64, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Complete(ctx context.Context, exec SQLExecutor, id int64, winnerID int64) error {
	query := `UPDATE tournaments SET status = $1, winner_id = $2 WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, models.StatusCompleted, winnerID, id)
	if err != nil {
		if handled := r.handleTournamentError(err); handled != err {
			return handled
		}
		return fmt.Errorf("failed to complete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			switch pqErr.Constraint {
			case "tournaments_owner_id_fkey":
				return ErrTournamentInvalidOwner
			case "tournaments_winner_id_fkey":
				return ErrTournamentInvalidWinner
			}
		case pqCheckViolation:
			if pqErr.Constraint == "tournaments_round_count_check" {
				return ErrTournamentInvalidRounds
			}
		}
	}
	return err
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	var roundCount sql.NullInt32
	err := row.Scan(
		&t.ID, &t.Name, &t.Format, &t.Status, &t.OwnerID,
		&roundCount, &t.WinnerID, &t.StartDate, &t.Location, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if roundCount.Valid {
		rc := int(roundCount.Int32)
		t.RoundCount = &rc
	}
	return t, nil
}
