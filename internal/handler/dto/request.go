package dto

// CreateTaskRequest represents the request body for POST /tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	AssigneeID  string  `json:"assignee_id"`
	Deadline    string  `json:"deadline"` // RFC 3339
	CreatorID   *string `json:"creator_id,omitempty"`
	TeamID      *string `json:"team_id,omitempty"`
}

// HistoryTurn is one prior exchange supplied to the simulator.
type HistoryTurn struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// SimulateRequest represents the request body for POST /simulate.
type SimulateRequest struct {
	UserID       string        `json:"user_id"`
	Text         string        `json:"text"`
	TimeOverride *string       `json:"time_override,omitempty"` // RFC 3339
	History      []HistoryTurn `json:"history,omitempty"`
}

// UpdateAISettingsRequest represents the request body for PUT /users/:id/ai-settings.
type UpdateAISettingsRequest struct {
	Personality       string  `json:"personality"`
	FollowupFrequency string  `json:"followup_frequency"`
	WorkHoursStart    *string `json:"work_hours_start"`
	WorkHoursEnd      *string `json:"work_hours_end"`
	Timezone          string  `json:"timezone"`
	IncludeWeekends   bool    `json:"include_weekends"`
	OptimizeCosts     bool    `json:"optimize_costs"`
}
