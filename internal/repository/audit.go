package repository

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskpulse/internal/domain"
)

// AuditRepository handles database operations for the audit log.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create appends an audit entry.
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	return insertAudit(ctx, r.pool, entry)
}

// CreateTx appends an audit entry within a transaction.
func (r *AuditRepository) CreateTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditLogEntry) error {
	return insertAudit(ctx, tx, entry)
}

func insertAudit(ctx context.Context, db DBTX, entry *domain.AuditLogEntry) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	query, args, err := psql.
		Insert("audit_logs").
		Columns("action", "task_id", "details").
		Values(entry.Action, entry.TaskID, detailsJSON).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	err = db.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}

	return nil
}

// ListByTask retrieves all audit entries for a task, oldest first.
func (r *AuditRepository) ListByTask(ctx context.Context, taskID string) ([]*domain.AuditLogEntry, error) {
	query, args, err := psql.
		Select("id", "action", "task_id", "details", "created_at").
		From("audit_logs").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("created_at ASC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := []*domain.AuditLogEntry{}
	for rows.Next() {
		var entry domain.AuditLogEntry
		var detailsJSON []byte
		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.TaskID,
			&detailsJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
				return nil, fmt.Errorf("parse audit details: %w", err)
			}
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
