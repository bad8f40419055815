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
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailConflict    = errors.New("user email conflict")
	ErrUserNicknameConflict = errors.New("user nickname conflict")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.User) error
	GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.User, error)
	// GetByIDForUpdate locks the user row; rating updates go through it.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateStats(ctx context.Context, exec SQLExecutor, user *models.User) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, nickname, email, password_hash, rating, tournaments_played, tournaments_won, created_at`

func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, user *models.User) error {
	query := `
		INSERT INTO users (nickname, email, password_hash, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executorOrDB(exec, r.db).QueryRowContext(ctx, query,
		user.Nickname,
		user.Email,
		user.PasswordHash,
		user.Rating,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			switch pqErr.Constraint {
			case "users_email_key":
				return ErrUserEmailConflict
			case "users_nickname_key":
				return ErrUserNicknameConflict
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, executorOrDB(exec, r.db), query, id)
}

func (r *postgresUserRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, executorOrDB(exec, r.db), query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, r.db, query, email)
}

func (r *postgresUserRepository) findOne(ctx context.Context, exec SQLExecutor, query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := exec.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Nickname,
		&user.Email,
		&user.PasswordHash,
		&user.Rating,
		&user.TournamentsPlayed,
		&user.TournamentsWon,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) UpdateStats(ctx context.Context, exec SQLExecutor, user *models.User) error {
	query := `
		UPDATE users
		SET rating = $1, tournaments_played = $2, tournaments_won = $3
		WHERE id = $4`

	result, err := executorOrDB(exec, r.db).ExecContext(ctx, query,
		user.Rating, user.TournamentsPlayed, user.TournamentsWon, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update stats for user %d: %w", user.ID, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
