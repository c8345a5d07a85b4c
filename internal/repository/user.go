package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskpulse/internal/domain"
)

var userColumns = []string{"id", "name", "message_handle", "role", "team_id", "created_at"}

// UserRepository handles database operations for users.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.MessageHandle,
		&user.Role,
		&user.TeamID,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for user: %w", err)
	}

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// GetByHandle finds a user by messaging handle. Handles are stored with or
// without a leading "+", so both forms are matched.
func (r *UserRepository) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	bare := strings.TrimPrefix(strings.TrimSpace(handle), "+")
	if bare == "" {
		return nil, domain.ErrUserNotFound
	}

	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"message_handle": []string{bare, "+" + bare}}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByHandle query: %w", err)
	}

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// FirstAdmin returns the oldest admin user.
func (r *UserRepository) FirstAdmin(ctx context.Context) (*domain.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"role": domain.RoleAdmin}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build FirstAdmin query: %w", err)
	}

	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrNoAdmin
	}
	return user, err
}
