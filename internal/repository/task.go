package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskpulse/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "title", "description", "assignee_id", "creator_id", "deadline",
	"status", "blocker_reason", "team_id", "created_at", "updated_at",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.AssigneeID,
		&task.CreatorID,
		&task.Deadline,
		&task.Status,
		&task.BlockerReason,
		&task.TeamID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a task by ID with FOR UPDATE lock (within transaction).
func (r *TaskRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for task %s: %w", taskID, err)
	}

	return scanTask(tx.QueryRow(ctx, query, args...))
}

// ListOpenByAssignee returns every non-completed task of the assignee, newest first.
func (r *TaskRepository) ListOpenByAssignee(ctx context.Context, assigneeID string) ([]*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"assignee_id": assigneeID}).
		Where(sq.NotEq{"status": domain.TaskStatusCompleted}).
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListOpenByAssignee query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query open tasks: %w", err)
	}

	return scanTasks(rows)
}

// ApplyUpdate applies a partial update to a task owned by assigneeID.
// Returns ErrTaskNotFound if the task does not exist and ErrTaskNotOwned if it
// belongs to someone else.
func (r *TaskRepository) ApplyUpdate(ctx context.Context, taskID, assigneeID string, update domain.TaskUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	qb := psql.
		Update("tasks").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":          taskID,
			"assignee_id": assigneeID,
		})

	if update.Status != nil {
		qb = qb.Set("status", *update.Status)
	}
	if update.Deadline != nil {
		qb = qb.Set("deadline", *update.Deadline)
	}
	if update.BlockerReason != nil {
		qb = qb.Set("blocker_reason", *update.BlockerReason)
	} else if update.ClearBlockerReason {
		qb = qb.Set("blocker_reason", nil)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build ApplyUpdate query for task %s: %w", taskID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, taskID); err != nil {
			return err
		}
		return domain.ErrTaskNotOwned
	}

	return nil
}

// ListRiskCandidates returns every task the risk sweep has to look at.
func (r *TaskRepository) ListRiskCandidates(ctx context.Context) ([]*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.NotEq{"status": []domain.TaskStatus{
			domain.TaskStatusCompleted,
			domain.TaskStatusBlocked,
		}}).
		OrderBy("deadline ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListRiskCandidates query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query risk candidates: %w", err)
	}

	return scanTasks(rows)
}

// MarkAtRisk moves a task to at_risk with optimistic locking.
// Returns ErrTaskStatusChanged if the task was modified (oldStatus doesn't match).
func (r *TaskRepository) MarkAtRisk(ctx context.Context, tx pgx.Tx, taskID string, oldStatus domain.TaskStatus) error {
	query, args, err := psql.
		Update("tasks").
		Set("status", domain.TaskStatusAtRisk).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     taskID,
			"status": oldStatus,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build MarkAtRisk query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark task at risk: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTaskStatusChanged
	}

	return nil
}

// Create creates a new task in the database within a transaction.
// Returns the created task with ID, CreatedAt, and UpdatedAt populated.
func (r *TaskRepository) Create(ctx context.Context, tx pgx.Tx, task *domain.Task) (*domain.Task, error) {
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}

	query, args, err := psql.
		Insert("tasks").
		Columns("title", "description", "assignee_id", "creator_id", "deadline", "status", "team_id").
		Values(
			task.Title,
			task.Description,
			task.AssigneeID,
			task.CreatorID,
			task.Deadline,
			task.Status,
			task.TeamID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}
