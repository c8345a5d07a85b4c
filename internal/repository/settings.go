package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskpulse/internal/domain"
)

var settingsColumns = []string{
	"user_id", "personality", "followup_frequency", "work_hours_start", "work_hours_end",
	"timezone", "include_weekends", "optimize_costs", "last_active_at", "created_at", "updated_at",
}

// SettingsRepository handles database operations for per-user AI settings.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetByUserID retrieves the settings of a user.
// Returns ErrSettingsNotFound if the user never saved any.
func (r *SettingsRepository) GetByUserID(ctx context.Context, userID string) (*domain.AISettings, error) {
	query, args, err := psql.
		Select(settingsColumns...).
		From("ai_settings").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByUserID query for settings: %w", err)
	}

	var s domain.AISettings
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&s.UserID,
		&s.Personality,
		&s.FollowupFrequency,
		&s.WorkHoursStart,
		&s.WorkHoursEnd,
		&s.Timezone,
		&s.IncludeWeekends,
		&s.OptimizeCosts,
		&s.LastActiveAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("query settings: %w", err)
	}

	return &s, nil
}

// TouchLastActive records the time of the user's latest interaction. Users
// without a settings row are left without one.
func (r *SettingsRepository) TouchLastActive(ctx context.Context, userID string, at time.Time) error {
	query, args, err := psql.
		Update("ai_settings").
		Set("last_active_at", at).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build TouchLastActive query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("touch last active: %w", err)
	}
	return nil
}

// Upsert inserts or replaces the editable settings of a user. LastActiveAt is
// never overwritten.
func (r *SettingsRepository) Upsert(ctx context.Context, s *domain.AISettings) (*domain.AISettings, error) {
	query, args, err := psql.
		Insert("ai_settings").
		Columns(
			"user_id", "personality", "followup_frequency", "work_hours_start", "work_hours_end",
			"timezone", "include_weekends", "optimize_costs",
		).
		Values(
			s.UserID, s.Personality, s.FollowupFrequency, s.WorkHoursStart, s.WorkHoursEnd,
			s.Timezone, s.IncludeWeekends, s.OptimizeCosts,
		).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			personality = EXCLUDED.personality,
			followup_frequency = EXCLUDED.followup_frequency,
			work_hours_start = EXCLUDED.work_hours_start,
			work_hours_end = EXCLUDED.work_hours_end,
			timezone = EXCLUDED.timezone,
			include_weekends = EXCLUDED.include_weekends,
			optimize_costs = EXCLUDED.optimize_costs,
			updated_at = NOW()
		RETURNING last_active_at, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Upsert query for settings: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&s.LastActiveAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert settings: %w", err)
	}

	return s, nil
}
