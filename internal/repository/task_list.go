package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mtlprog/taskpulse/internal/domain"
)

// TaskListFilters holds all supported filters for task listing.
type TaskListFilters struct {
	Statuses   []string // Optional: filter by status
	AssigneeID *string  // Optional: filter by assignee
	TeamID     *string  // Optional: filter by team
	Overdue    bool     // Optional: show only open tasks past their deadline
	Sort       []string // Optional: sort fields (with - prefix for DESC)
	Limit      int      // Required: page size
	Offset     int      // Required: page offset
	Now        time.Time
}

// TaskListResult holds a task with computed fields.
type TaskListResult struct {
	Task      *domain.Task
	IsOverdue bool
}

// sortableTaskColumns whitelists the columns a caller may sort by.
var sortableTaskColumns = map[string]bool{
	"deadline":   true,
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"title":      true,
}

// SortField splits a sort key such as "-deadline" into its column and
// direction. ok is false for columns outside the whitelist.
func SortField(key string) (field, dir string, ok bool) {
	field, dir = key, "ASC"
	if strings.HasPrefix(key, "-") {
		field, dir = key[1:], "DESC"
	}
	return field, dir, sortableTaskColumns[field]
}

// applyFilters adds the WHERE clauses shared by the list and count queries.
func (f TaskListFilters) applyFilters(qb sq.SelectBuilder) sq.SelectBuilder {
	if len(f.Statuses) > 0 {
		qb = qb.Where(sq.Eq{"status": f.Statuses})
	}
	if f.AssigneeID != nil {
		qb = qb.Where(sq.Eq{"assignee_id": *f.AssigneeID})
	}
	if f.TeamID != nil {
		qb = qb.Where(sq.Eq{"team_id": *f.TeamID})
	}
	if f.Overdue {
		qb = qb.Where(sq.Lt{"deadline": f.Now}).
			Where(sq.NotEq{"status": domain.TaskStatusCompleted})
	}
	return qb
}

// List retrieves tasks with filters and pagination.
func (r *TaskRepository) List(ctx context.Context, filters TaskListFilters) ([]TaskListResult, int, error) {
	if filters.Now.IsZero() {
		filters.Now = time.Now()
	}

	qb := filters.applyFilters(psql.Select(taskColumns...).From("tasks"))

	// Default: soonest deadline first
	if len(filters.Sort) == 0 {
		qb = qb.OrderBy("deadline ASC", "created_at ASC")
	} else {
		for _, key := range filters.Sort {
			field, dir, ok := SortField(key)
			if !ok {
				return nil, 0, fmt.Errorf("%w: %q", domain.ErrInvalidSort, field)
			}
			qb = qb.OrderBy(field + " " + dir)
		}
	}

	qb = qb.Limit(uint64(filters.Limit)).Offset(uint64(filters.Offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, 0, err
	}

	// Get total count (without pagination)
	countQuery, countArgs, err := filters.applyFilters(psql.Select("COUNT(*)").From("tasks")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	results := make([]TaskListResult, len(tasks))
	for i, task := range tasks {
		results[i] = TaskListResult{
			Task:      task,
			IsOverdue: task.Status.IsOpen() && task.Deadline.Before(filters.Now),
		}
	}

	return results, total, nil
}
