package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mtlprog/taskpulse/internal/handler/dto"
	"github.com/mtlprog/taskpulse/internal/repository"
)

// handleGetStats returns overview and per-assignee statistics.
// @Summary Get statistics
// @Description Get task statistics for a given period
// @Tags stats
// @Produce json
// @Param period query string false "Period: day, week (default), month, all"
// @Param team query string false "Filter by team UUID"
// @Success 200 {object} dto.StatsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /v1/stats [get]
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse period parameter
	query := r.URL.Query()
	period := query.Get("period")
	if period == "" {
		period = "week"
	}

	// Calculate period boundaries
	now := h.now()
	var periodStart time.Time
	switch period {
	case "day":
		periodStart = now.AddDate(0, 0, -1)
	case "week":
		periodStart = now.AddDate(0, 0, -7)
	case "month":
		periodStart = now.AddDate(0, -1, 0)
	case "all":
		periodStart = time.Time{} // Beginning of time
	default:
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid period, must be: day, week, month, all")
		return
	}

	var teamID *string
	if team := query.Get("team"); team != "" {
		if _, err := uuid.Parse(team); err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "team must be a valid UUID")
			return
		}
		teamID = &team
	}

	overview, assignees, err := h.app.TaskService.Stats(ctx, repository.StatsFilters{
		PeriodStart: periodStart,
		PeriodEnd:   now,
		TeamID:      teamID,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.StatsResponse{
		Period:      period,
		PeriodStart: periodStart,
		PeriodEnd:   now,
		Assignees:   dto.ToAssigneeStats(assignees),
		Overview:    dto.ToOverviewStats(overview),
	})
}
