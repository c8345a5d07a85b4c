package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mtlprog/taskpulse/internal/handler/dto"
	"github.com/mtlprog/taskpulse/internal/repository"
	"github.com/mtlprog/taskpulse/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// handleCreateTask assigns a new task and notifies the assignee.
// @Summary Create a new task
// @Description Creates a pending task and sends the assignment message to the assignee. The creator defaults to the first admin.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /v1/tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse request body
	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if _, err := uuid.Parse(req.AssigneeID); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "assignee_id must be a valid UUID")
		return
	}
	if req.CreatorID != nil {
		if _, err := uuid.Parse(*req.CreatorID); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "creator_id must be a valid UUID")
			return
		}
	}
	if req.TeamID != nil {
		if _, err := uuid.Parse(*req.TeamID); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "team_id must be a valid UUID")
			return
		}
	}

	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "deadline must be an RFC 3339 timestamp")
		return
	}

	task, err := h.app.TaskService.CreateTask(ctx, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		CreatorID:   req.CreatorID,
		Deadline:    deadline,
		TeamID:      req.TeamID,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskResponse(task, false))
}

// handleGetTask retrieves task details with the audit trail.
// @Summary Get task details
// @Description Get a task with every audit entry written for it, oldest first
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskDetailResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /v1/tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	detail, err := h.app.TaskService.GetTask(ctx, taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskDetailResponse(detail, h.now()))
}

// handleListTasks returns a list of tasks with filters.
// @Summary List tasks
// @Description List tasks with filtering, sorting and pagination
// @Tags tasks
// @Produce json
// @Param status query string false "Comma-separated statuses (pending,confirmed,blocked,at_risk,completed)"
// @Param assignee query string false "Assignee user UUID"
// @Param team query string false "Team UUID"
// @Param overdue query bool false "Only open tasks past their deadline"
// @Param sort query string false "Comma-separated sort fields, - prefix for descending (default deadline)"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.TasksListResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /v1/tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()

	filters := repository.TaskListFilters{
		Overdue: query.Get("overdue") == "true",
		Limit:   defaultListLimit,
		Now:     h.now(),
	}

	if statusParam := query.Get("status"); statusParam != "" {
		filters.Statuses = splitAndTrim(statusParam, ",")
	}
	if assignee := query.Get("assignee"); assignee != "" {
		if _, err := uuid.Parse(assignee); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "assignee must be a valid UUID")
			return
		}
		filters.AssigneeID = &assignee
	}
	if team := query.Get("team"); team != "" {
		if _, err := uuid.Parse(team); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "team must be a valid UUID")
			return
		}
		filters.TeamID = &team
	}
	if sortParam := query.Get("sort"); sortParam != "" {
		filters.Sort = splitAndTrim(sortParam, ",")
	}

	// Parse pagination
	if limitParam := query.Get("limit"); limitParam != "" {
		if n, err := strconv.Atoi(limitParam); err == nil && n > 0 && n <= maxListLimit {
			filters.Limit = n
		}
	}
	if offsetParam := query.Get("offset"); offsetParam != "" {
		if n, err := strconv.Atoi(offsetParam); err == nil && n >= 0 {
			filters.Offset = n
		}
	}

	results, total, err := h.app.TaskService.ListTasks(ctx, filters)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	tasks := make([]dto.TaskResponse, len(results))
	for i, result := range results {
		tasks[i] = dto.ToTaskResponse(result.Task, result.IsOverdue)
	}

	respondJSON(w, http.StatusOK, dto.TasksListResponse{
		Tasks:  tasks,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
