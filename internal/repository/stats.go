package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mtlprog/taskpulse/internal/domain"
)

// StatsFilters holds filters for statistics queries.
type StatsFilters struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	TeamID      *string // Optional: filter by team
}

// AssigneeStatsResult holds statistics for a single assignee.
type AssigneeStatsResult struct {
	UserID         string
	UserName       string
	TasksCompleted int
	TasksBlocked   int
	TasksAtRisk    int
	TasksOpen      int
}

// OverviewStatsResult holds overall task statistics.
type OverviewStatsResult struct {
	TotalTasksCreated int
	TasksByStatus     map[string]int
	OverdueCount      int
	AtRiskCount       int
	BlockedCount      int
}

// GetAssigneeStats retrieves per-assignee statistics.
func (r *TaskRepository) GetAssigneeStats(ctx context.Context, filters StatsFilters) ([]AssigneeStatsResult, error) {
	query := `
		SELECT
			u.id,
			u.name,
			COUNT(CASE WHEN t.status = 'completed' AND t.updated_at >= $1 AND t.updated_at <= $2 THEN 1 END) AS tasks_completed,
			COUNT(CASE WHEN t.status = 'blocked' THEN 1 END) AS tasks_blocked,
			COUNT(CASE WHEN t.status = 'at_risk' THEN 1 END) AS tasks_at_risk,
			COUNT(CASE WHEN t.status <> 'completed' THEN 1 END) AS tasks_open
		FROM users u
		LEFT JOIN tasks t ON t.assignee_id = u.id
		WHERE u.role <> 'admin'
	`

	args := []any{filters.PeriodStart, filters.PeriodEnd}

	if filters.TeamID != nil {
		query += " AND u.team_id = $3"
		args = append(args, *filters.TeamID)
	}

	query += " GROUP BY u.id, u.name ORDER BY u.name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assignee stats: %w", err)
	}
	defer rows.Close()

	results := []AssigneeStatsResult{}
	for rows.Next() {
		var result AssigneeStatsResult
		err := rows.Scan(
			&result.UserID,
			&result.UserName,
			&result.TasksCompleted,
			&result.TasksBlocked,
			&result.TasksAtRisk,
			&result.TasksOpen,
		)
		if err != nil {
			return nil, fmt.Errorf("scan assignee stats: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignee stats rows: %w", err)
	}

	return results, nil
}

// GetOverviewStats retrieves overall task statistics.
func (r *TaskRepository) GetOverviewStats(ctx context.Context, filters StatsFilters) (*OverviewStatsResult, error) {
	teamClause := ""
	periodArgs := []any{filters.PeriodStart, filters.PeriodEnd}
	if filters.TeamID != nil {
		teamClause = " AND team_id = $3"
		periodArgs = append(periodArgs, *filters.TeamID)
	}

	// Get total tasks created in period
	var totalCreated int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM tasks
		WHERE created_at >= $1 AND created_at <= $2`+teamClause,
		periodArgs...,
	).Scan(&totalCreated)
	if err != nil {
		return nil, fmt.Errorf("count total tasks: %w", err)
	}

	// Get tasks by status (current state, not historical)
	statusArgs := []any{}
	statusWhere := ""
	if filters.TeamID != nil {
		statusWhere = " WHERE team_id = $1"
		statusArgs = append(statusArgs, *filters.TeamID)
	}

	tasksByStatus := make(map[string]int)
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM tasks`+statusWhere+`
		GROUP BY status`,
		statusArgs...,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		tasksByStatus[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status rows: %w", err)
	}

	// Overdue is measured against the end of the period
	overdueArgs := []any{domain.TaskStatusCompleted, filters.PeriodEnd}
	overdueTeam := ""
	if filters.TeamID != nil {
		overdueTeam = " AND team_id = $3"
		overdueArgs = append(overdueArgs, *filters.TeamID)
	}

	var overdueCount int
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM tasks
		WHERE status <> $1
		  AND deadline < $2`+overdueTeam,
		overdueArgs...,
	).Scan(&overdueCount)
	if err != nil {
		return nil, fmt.Errorf("count overdue tasks: %w", err)
	}

	return &OverviewStatsResult{
		TotalTasksCreated: totalCreated,
		TasksByStatus:     tasksByStatus,
		OverdueCount:      overdueCount,
		AtRiskCount:       tasksByStatus[string(domain.TaskStatusAtRisk)],
		BlockedCount:      tasksByStatus[string(domain.TaskStatusBlocked)],
	}, nil
}
