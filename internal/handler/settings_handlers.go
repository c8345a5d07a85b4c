package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/handler/dto"
)

// handleGetAISettings returns a user's AI settings, or the defaults.
// @Summary Get AI settings
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.AISettingsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /v1/users/{id}/ai-settings [get]
func (h *Handler) handleGetAISettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := extractID(w, r, "user")
	if !ok {
		return
	}

	settings, err := h.app.SettingsService.Get(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToAISettingsResponse(settings))
}

// handleUpdateAISettings replaces a user's AI settings.
// @Summary Update AI settings
// @Description Validated upsert of personality, follow-up frequency, work hours (HH:MM) and IANA timezone
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateAISettingsRequest true "AI settings"
// @Success 200 {object} dto.AISettingsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /v1/users/{id}/ai-settings [put]
func (h *Handler) handleUpdateAISettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := extractID(w, r, "user")
	if !ok {
		return
	}

	var req dto.UpdateAISettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	saved, err := h.app.SettingsService.Update(ctx, &domain.AISettings{
		UserID:            userID,
		Personality:       domain.Personality(req.Personality),
		FollowupFrequency: domain.FollowupFrequency(req.FollowupFrequency),
		WorkHoursStart:    req.WorkHoursStart,
		WorkHoursEnd:      req.WorkHoursEnd,
		Timezone:          req.Timezone,
		IncludeWeekends:   req.IncludeWeekends,
		OptimizeCosts:     req.OptimizeCosts,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToAISettingsResponse(saved))
}
