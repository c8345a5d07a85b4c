package dto

import (
	"time"

	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/repository"
	"github.com/mtlprog/taskpulse/internal/service"
)

// TaskResponse represents a task.
type TaskResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	AssigneeID    string    `json:"assignee_id"`
	CreatorID     string    `json:"creator_id"`
	Deadline      time.Time `json:"deadline"`
	Status        string    `json:"status"`
	BlockerReason *string   `json:"blocker_reason"`
	TeamID        *string   `json:"team_id"`
	IsOverdue     bool      `json:"is_overdue"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TasksListResponse represents the response for GET /tasks.
type TasksListResponse struct {
	Tasks  []TaskResponse `json:"tasks"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// AuditEntryResponse represents one audit log entry.
type AuditEntryResponse struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	TaskID    *string        `json:"task_id"`
	Details   map[string]any `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}

// TaskDetailResponse represents a task with its audit trail.
type TaskDetailResponse struct {
	Task  TaskResponse         `json:"task"`
	Audit []AuditEntryResponse `json:"audit"`
}

// AISettingsResponse represents the AI settings of a user.
type AISettingsResponse struct {
	UserID            string     `json:"user_id"`
	Personality       string     `json:"personality"`
	FollowupFrequency string     `json:"followup_frequency"`
	WorkHoursStart    *string    `json:"work_hours_start"`
	WorkHoursEnd      *string    `json:"work_hours_end"`
	Timezone          string     `json:"timezone"`
	IncludeWeekends   bool       `json:"include_weekends"`
	OptimizeCosts     bool       `json:"optimize_costs"`
	LastActiveAt      *time.Time `json:"last_active_at"`
}

// RiskUpdateResponse describes one task moved to at_risk.
type RiskUpdateResponse struct {
	TaskID         string `json:"task_id"`
	PreviousStatus string `json:"previous_status"`
	Reason         string `json:"reason"`
}

// RiskSweepResponse represents the response for POST /cron/evaluate.
type RiskSweepResponse struct {
	Processed int                  `json:"processed"`
	Updates   int                  `json:"updates"`
	Tasks     []RiskUpdateResponse `json:"tasks"`
}

// WebhookAck is returned to the messaging provider for every delivery.
type WebhookAck struct {
	Success bool `json:"success"`
}

// StatsResponse represents task statistics.
type StatsResponse struct {
	Period      string          `json:"period"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Assignees   []AssigneeStats `json:"assignees"`
	Overview    OverviewStats   `json:"overview"`
}

// AssigneeStats represents statistics for a single assignee.
type AssigneeStats struct {
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	TasksCompleted int    `json:"tasks_completed"`
	TasksBlocked   int    `json:"tasks_blocked"`
	TasksAtRisk    int    `json:"tasks_at_risk"`
	TasksOpen      int    `json:"tasks_open"`
}

// OverviewStats represents overall task statistics.
type OverviewStats struct {
	TotalTasksCreated     int            `json:"total_tasks_created"`
	TasksByStatus         map[string]int `json:"tasks_by_status"`
	OverdueCount          int            `json:"overdue_count"`
	AtRiskCount           int            `json:"at_risk_count"`
	BlockedCount          int            `json:"blocked_count"`
	CompletionRatePercent float64        `json:"completion_rate_percent"`
}

// ToTaskResponse converts domain.Task to TaskResponse.
func ToTaskResponse(task *domain.Task, isOverdue bool) TaskResponse {
	return TaskResponse{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		AssigneeID:    task.AssigneeID,
		CreatorID:     task.CreatorID,
		Deadline:      task.Deadline,
		Status:        string(task.Status),
		BlockerReason: task.BlockerReason,
		TeamID:        task.TeamID,
		IsOverdue:     isOverdue,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

// ToTaskDetailResponse converts a task and its audit trail.
func ToTaskDetailResponse(detail *service.TaskDetail, now time.Time) TaskDetailResponse {
	task := detail.Task
	isOverdue := task.Status.IsOpen() && task.Deadline.Before(now)

	audit := make([]AuditEntryResponse, len(detail.Audit))
	for i, entry := range detail.Audit {
		audit[i] = AuditEntryResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			TaskID:    entry.TaskID,
			Details:   entry.Details,
			CreatedAt: entry.CreatedAt,
		}
	}

	return TaskDetailResponse{
		Task:  ToTaskResponse(task, isOverdue),
		Audit: audit,
	}
}

// ToAISettingsResponse converts domain.AISettings to AISettingsResponse.
func ToAISettingsResponse(s *domain.AISettings) AISettingsResponse {
	return AISettingsResponse{
		UserID:            s.UserID,
		Personality:       string(s.Personality),
		FollowupFrequency: string(s.FollowupFrequency),
		WorkHoursStart:    s.WorkHoursStart,
		WorkHoursEnd:      s.WorkHoursEnd,
		Timezone:          s.Timezone,
		IncludeWeekends:   s.IncludeWeekends,
		OptimizeCosts:     s.OptimizeCosts,
		LastActiveAt:      s.LastActiveAt,
	}
}

// ToRiskSweepResponse converts a sweep result.
func ToRiskSweepResponse(result *service.RiskSweepResult) RiskSweepResponse {
	tasks := make([]RiskUpdateResponse, len(result.Updates))
	for i, u := range result.Updates {
		tasks[i] = RiskUpdateResponse{
			TaskID:         u.TaskID,
			PreviousStatus: string(u.PreviousStatus),
			Reason:         u.Reason,
		}
	}
	return RiskSweepResponse{
		Processed: result.Processed,
		Updates:   len(result.Updates),
		Tasks:     tasks,
	}
}

// ToOverviewStats converts overview statistics and computes the completion rate.
func ToOverviewStats(o *repository.OverviewStatsResult) OverviewStats {
	total := 0
	for _, count := range o.TasksByStatus {
		total += count
	}
	completionRate := 0.0
	if total > 0 {
		completionRate = float64(o.TasksByStatus[string(domain.TaskStatusCompleted)]) / float64(total) * 100
	}

	return OverviewStats{
		TotalTasksCreated:     o.TotalTasksCreated,
		TasksByStatus:         o.TasksByStatus,
		OverdueCount:          o.OverdueCount,
		AtRiskCount:           o.AtRiskCount,
		BlockedCount:          o.BlockedCount,
		CompletionRatePercent: completionRate,
	}
}

// ToAssigneeStats converts per-assignee statistics.
func ToAssigneeStats(results []repository.AssigneeStatsResult) []AssigneeStats {
	stats := make([]AssigneeStats, len(results))
	for i, r := range results {
		stats[i] = AssigneeStats{
			UserID:         r.UserID,
			UserName:       r.UserName,
			TasksCompleted: r.TasksCompleted,
			TasksBlocked:   r.TasksBlocked,
			TasksAtRisk:    r.TasksAtRisk,
			TasksOpen:      r.TasksOpen,
		}
	}
	return stats
}
