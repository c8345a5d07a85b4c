package handler

import (
	"log/slog"
	"net/http"

	"github.com/mtlprog/taskpulse/internal/handler/dto"
)

// handleEvaluateRisk runs one deadline-risk sweep.
// @Summary Evaluate deadline risk
// @Description Moves open tasks close to or past their deadline to at_risk. Blocked and completed tasks are never touched.
// @Tags cron
// @Produce json
// @Success 200 {object} dto.RiskSweepResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /v1/cron/evaluate [get]
// @Router /v1/cron/evaluate [post]
func (h *Handler) handleEvaluateRisk(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.RiskService.ProcessAtRiskTasks(r.Context(), h.now())
	if result == nil {
		respondDomainError(w, err)
		return
	}
	if err != nil {
		// Partial sweep: report what was applied, the failures are in the log.
		slog.Error("risk sweep finished with errors", "updates", len(result.Updates), "error", err)
	}

	respondJSON(w, http.StatusOK, dto.ToRiskSweepResponse(result))
}
