package repository

import (
	"context"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskpulse/internal/domain"
)

// MessageRepository handles database operations for the message log.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create records a message.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	query, args, err := psql.
		Insert("messages").
		Columns("task_id", "user_id", "direction", "content", "status").
		Values(msg.TaskID, msg.UserID, msg.Direction, msg.Content, msg.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListRecentByUser returns the last limit messages of a user, oldest first.
func (r *MessageRepository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]*domain.Message, error) {
	query, args, err := psql.
		Select("id", "task_id", "user_id", "direction", "content", "status", "created_at").
		From("messages").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := []*domain.Message{}
	for rows.Next() {
		var msg domain.Message
		err := rows.Scan(
			&msg.ID,
			&msg.TaskID,
			&msg.UserID,
			&msg.Direction,
			&msg.Content,
			&msg.Status,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	slices.Reverse(msgs)
	return msgs, nil
}
