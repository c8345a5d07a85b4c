package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mtlprog/taskpulse/internal/ai"
	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/engine"
	"github.com/mtlprog/taskpulse/internal/handler/dto"
)

// handleSimulate builds an action plan for a message without applying it.
// @Summary Simulate an inbound message
// @Description Dry run of the decision engine. Nothing is written and no reply is sent.
// @Tags engine
// @Accept json
// @Produce json
// @Param request body dto.SimulateRequest true "Message to simulate"
// @Success 200 {object} object "Action plan"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /v1/simulate [post]
func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if _, err := uuid.Parse(req.UserID); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "user_id must be a valid UUID")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondDomainError(w, domain.ErrEmptyMessage)
		return
	}

	opts, err := simulateOptions(req)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "time_override must be an RFC 3339 timestamp")
		return
	}

	plan, err := h.app.Engine.CreatePlan(ctx, req.UserID, req.Text, opts)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

// simulateOptions converts the request's optional inputs into plan options.
func simulateOptions(req dto.SimulateRequest) (engine.PlanOptions, error) {
	var opts engine.PlanOptions

	if req.TimeOverride != nil && *req.TimeOverride != "" {
		t, err := time.Parse(time.RFC3339, *req.TimeOverride)
		if err != nil {
			return opts, err
		}
		opts.Now = &t
	}

	for _, turn := range req.History {
		role := ai.RoleUser
		if ai.Role(turn.Role) == ai.RoleAssistant {
			role = ai.RoleAssistant
		}
		opts.History = append(opts.History, ai.Turn{Role: role, Content: turn.Content})
	}

	return opts, nil
}
