package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/handler/dto"
)

const maxWebhookBody = 1 << 20

// handleVerifyWebhook answers the provider's subscription handshake.
// @Summary Verify WhatsApp webhook
// @Description Echoes hub.challenge when hub.mode is subscribe and hub.verify_token matches
// @Tags webhook
// @Produce plain
// @Param hub.mode query string true "Must be subscribe"
// @Param hub.verify_token query string true "Configured verify token"
// @Param hub.challenge query string true "Challenge to echo"
// @Success 200 {string} string
// @Failure 403 {object} dto.ErrorResponse
// @Router /webhook/whatsapp [get]
func (h *Handler) handleVerifyWebhook(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")
	challenge := query.Get("hub.challenge")

	if mode != "subscribe" || h.verifyToken == "" || token != h.verifyToken {
		slog.Warn("webhook verification failed", "mode", mode)
		respondError(w, http.StatusForbidden, "VERIFICATION_FAILED", "Verification failed")
		return
	}

	slog.Info("webhook verification successful")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

// handleWebhook receives message notifications. It always acknowledges with
// 200 so the provider does not redeliver.
// @Summary Receive WhatsApp notifications
// @Tags webhook
// @Accept json
// @Produce json
// @Param X-Hub-Signature-256 header string false "HMAC-SHA256 of the body, required when an app secret is configured"
// @Success 200 {object} dto.WebhookAck
// @Router /webhook/whatsapp [post]
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		slog.Error("failed to read webhook body", "error", err)
		respondJSON(w, http.StatusOK, dto.WebhookAck{Success: false})
		return
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		slog.Warn("invalid webhook payload", "error", err)
		respondJSON(w, http.StatusOK, dto.WebhookAck{Success: false})
		return
	}

	if err := h.app.Audit.Create(ctx, &domain.AuditLogEntry{
		Action:  domain.ActionWebhookRaw,
		Details: raw,
	}); err != nil {
		slog.Error("failed to audit raw webhook", "error", err)
	}

	var payload dto.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Warn("unexpected webhook payload shape", "error", err)
		respondJSON(w, http.StatusOK, dto.WebhookAck{Success: false})
		return
	}

	if payload.Object != dto.WebhookObjectWhatsApp {
		slog.Warn("invalid webhook object type", "object", payload.Object)
		respondJSON(w, http.StatusOK, dto.WebhookAck{Success: false})
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != dto.WebhookFieldMessages {
				continue
			}

			if len(change.Value.Statuses) > 0 {
				slog.Debug("webhook status update", "count", len(change.Value.Statuses))
				continue
			}

			for _, msg := range change.Value.Messages {
				h.processIncomingMessage(ctx, msg)
			}
		}
	}

	respondJSON(w, http.StatusOK, dto.WebhookAck{Success: true})
}

// processIncomingMessage records one inbound text message and hands it to the
// engine. Every failure is logged; nothing is reported to the provider.
func (h *Handler) processIncomingMessage(ctx context.Context, msg dto.WebhookMessage) {
	if msg.Type != dto.MessageTypeText || msg.Text == nil {
		slog.Info("non-text message received, skipping", "message_id", msg.ID, "type", msg.Type)
		return
	}

	text := msg.Text.Body

	user, err := h.app.Users.GetByHandle(ctx, msg.From)
	if errors.Is(err, domain.ErrUserNotFound) {
		slog.Info("message from unknown user", "from", msg.From, "message_id", msg.ID)
		if err := h.app.Audit.Create(ctx, &domain.AuditLogEntry{
			Action: domain.ActionMsgUnknownUser,
			Details: map[string]any{
				"from":       msg.From,
				"body":       text,
				"message_id": msg.ID,
			},
		}); err != nil {
			slog.Error("failed to audit unknown sender", "from", msg.From, "error", err)
		}
		return
	}
	if err != nil {
		slog.Error("failed to look up sender", "from", msg.From, "error", err)
		return
	}

	userID := user.ID
	if err := h.app.Messages.Create(ctx, &domain.Message{
		UserID:    &userID,
		Direction: domain.DirectionInbound,
		Content:   text,
		Status:    domain.MessageStatusReceived,
	}); err != nil {
		slog.Error("failed to record inbound message", "user_id", user.ID, "error", err)
	}

	if err := h.app.Engine.ProcessMessage(ctx, user.ID, text); err != nil {
		slog.Error("engine failed to process message", "user_id", user.ID, "message_id", msg.ID, "error", err)
	}
}
