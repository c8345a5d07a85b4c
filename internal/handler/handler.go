package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	_ "github.com/mtlprog/taskpulse/docs" // Register OpenAPI docs
	"github.com/mtlprog/taskpulse/internal/app"
	"github.com/mtlprog/taskpulse/internal/handler/dto"
	"github.com/mtlprog/taskpulse/internal/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options configures the HTTP surface.
type Options struct {
	VerifyToken string // WhatsApp webhook verification token
	AppSecret   string // enables webhook signature checks when set
	AdminToken  string // bearer token for /api/v1; empty disables the check
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	app            *app.App
	verifyToken    string
	appSecret      string
	authMiddleware *middleware.AuthMiddleware
	now            func() time.Time
}

// New creates a new Handler on top of the assembled application.
func New(a *app.App, opts Options) *Handler {
	return &Handler{
		app:            a,
		verifyToken:    opts.VerifyToken,
		appSecret:      opts.AppSecret,
		authMiddleware: middleware.NewAuthMiddleware(opts.AdminToken),
		now:            time.Now,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// WhatsApp webhook, authenticated by verify token and signature
	mux.HandleFunc("GET /api/webhook/whatsapp", h.handleVerifyWebhook)
	mux.Handle("POST /api/webhook/whatsapp", middleware.VerifySignature(h.appSecret, http.HandlerFunc(h.handleWebhook)))

	// Admin API v1 routes with authentication
	mux.Handle("POST /api/v1/simulate", h.admin(h.handleSimulate))
	mux.Handle("GET /api/v1/tasks", h.admin(h.handleListTasks))
	mux.Handle("POST /api/v1/tasks", h.admin(h.handleCreateTask))
	mux.Handle("GET /api/v1/tasks/{id}", h.admin(h.handleGetTask))
	mux.Handle("GET /api/v1/users/{id}/ai-settings", h.admin(h.handleGetAISettings))
	mux.Handle("PUT /api/v1/users/{id}/ai-settings", h.admin(h.handleUpdateAISettings))
	mux.Handle("GET /api/v1/cron/evaluate", h.admin(h.handleEvaluateRisk))
	mux.Handle("POST /api/v1/cron/evaluate", h.admin(h.handleEvaluateRisk))
	mux.Handle("GET /api/v1/stats", h.admin(h.handleGetStats))
}

func (h *Handler) admin(fn http.HandlerFunc) http.Handler {
	return h.authMiddleware.Authenticate(fn)
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.app.Pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.app.Pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps err and writes it.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// extractID extracts and validates a UUID path parameter.
// Returns (id, true) if valid, ("", false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" id is required")
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+"_id must be a valid UUID")
		return "", false
	}

	return id, true
}
