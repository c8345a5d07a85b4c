package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskpulse/internal/app"
	"github.com/mtlprog/taskpulse/internal/config"
	"github.com/mtlprog/taskpulse/internal/handler"
	"github.com/mtlprog/taskpulse/internal/handler/dto"
	"github.com/mtlprog/taskpulse/internal/messaging"
	"github.com/mtlprog/taskpulse/internal/middleware"
)

const (
	testAdminToken  = "admin-secret"
	testVerifyToken = "verify-me"
	testAppSecret   = "app-secret"
)

// recordingDispatcher captures sends and returns a fixed result.
type recordingDispatcher struct {
	result messaging.SendResult
	sent   []string
}

func (d *recordingDispatcher) Send(_ context.Context, _, body string) messaging.SendResult {
	d.sent = append(d.sent, body)
	return d.result
}

// newMux builds the routes without a database. Only requests rejected
// before any storage access may be sent through it.
func newMux(t *testing.T, opts handler.Options) *http.ServeMux {
	t.Helper()
	a := app.New(nil, config.Config{}, app.WithDispatcher(&recordingDispatcher{}))
	mux := http.NewServeMux()
	handler.New(a, opts).RegisterRoutes(mux)
	return mux
}

func defaultOptions() handler.Options {
	return handler.Options{
		VerifyToken: testVerifyToken,
		AdminToken:  testAdminToken,
	}
}

func serve(mux http.Handler, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestVerifyWebhook(t *testing.T) {
	mux := newMux(t, defaultOptions())

	tests := []struct {
		name   string
		query  string
		status int
		body   string
	}{
		{"valid", "?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=1158201444", http.StatusOK, "1158201444"},
		{"wrong token", "?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=1", http.StatusForbidden, ""},
		{"wrong mode", "?hub.mode=unsubscribe&hub.verify_token=verify-me&hub.challenge=1", http.StatusForbidden, ""},
		{"missing params", "", http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(mux, http.MethodGet, "/api/webhook/whatsapp"+tt.query, "", nil)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestVerifyWebhook_NoConfiguredToken(t *testing.T) {
	mux := newMux(t, handler.Options{})

	w := serve(mux, http.MethodGet, "/api/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=&hub.challenge=1", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhook_InvalidJSONAcknowledged(t *testing.T) {
	mux := newMux(t, defaultOptions())

	w := serve(mux, http.MethodPost, "/api/webhook/whatsapp", "", []byte("{not json"))
	require.Equal(t, http.StatusOK, w.Code)

	var ack dto.WebhookAck
	require.NoError(t, json.NewDecoder(w.Body).Decode(&ack))
	assert.False(t, ack.Success)
}

func TestWebhook_SignatureRequired(t *testing.T) {
	opts := defaultOptions()
	opts.AppSecret = testAppSecret
	mux := newMux(t, opts)

	// A valid payload would be audited, which needs storage; a dropped
	// delivery never gets that far and is still acknowledged.
	payload := []byte(`{"object":"whatsapp_business_account","entry":[]}`)
	w := serve(mux, http.MethodPost, "/api/webhook/whatsapp", "", payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":false}`, w.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/whatsapp", bytes.NewReader(payload))
	req.Header.Set(middleware.SignatureHeader, middleware.Sign("rotated-secret", payload))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/webhook/whatsapp", bytes.NewReader([]byte("{bad")))
	req.Header.Set(middleware.SignatureHeader, middleware.Sign(testAppSecret, []byte("{bad")))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	mux := newMux(t, defaultOptions())

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/simulate"},
		{http.MethodGet, "/api/v1/tasks"},
		{http.MethodPost, "/api/v1/tasks"},
		{http.MethodGet, "/api/v1/tasks/00000000-0000-0000-0000-000000000001"},
		{http.MethodGet, "/api/v1/users/00000000-0000-0000-0000-000000000001/ai-settings"},
		{http.MethodPut, "/api/v1/users/00000000-0000-0000-0000-000000000001/ai-settings"},
		{http.MethodPost, "/api/v1/cron/evaluate"},
		{http.MethodGet, "/api/v1/stats"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := serve(mux, rt.method, rt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = serve(mux, rt.method, rt.path, "wrong-token", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequestValidation(t *testing.T) {
	mux := newMux(t, defaultOptions())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"simulate invalid json", http.MethodPost, "/api/v1/simulate", "{", http.StatusBadRequest, "INVALID_JSON"},
		{"simulate bad user id", http.MethodPost, "/api/v1/simulate", `{"user_id":"nope","text":"done"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"simulate empty text", http.MethodPost, "/api/v1/simulate", `{"user_id":"00000000-0000-0000-0000-000000000021","text":"  "}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"simulate bad time override", http.MethodPost, "/api/v1/simulate", `{"user_id":"00000000-0000-0000-0000-000000000021","text":"done","time_override":"tuesday"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"create invalid json", http.MethodPost, "/api/v1/tasks", "[", http.StatusBadRequest, "INVALID_JSON"},
		{"create bad assignee", http.MethodPost, "/api/v1/tasks", `{"title":"Report","assignee_id":"x","deadline":"2026-03-10T10:00:00Z"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"create bad deadline", http.MethodPost, "/api/v1/tasks", `{"title":"Report","assignee_id":"00000000-0000-0000-0000-000000000021","deadline":"soon"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"get task bad id", http.MethodGet, "/api/v1/tasks/not-a-uuid", "", http.StatusBadRequest, "INVALID_REQUEST"},
		{"list bad assignee", http.MethodGet, "/api/v1/tasks?assignee=bob", "", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"list unknown sort field", http.MethodGet, "/api/v1/tasks?sort=-priority", "", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"list bad status", http.MethodGet, "/api/v1/tasks?status=pending,lost", "", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"settings bad user id", http.MethodGet, "/api/v1/users/42/ai-settings", "", http.StatusBadRequest, "INVALID_REQUEST"},
		{"settings invalid json", http.MethodPut, "/api/v1/users/00000000-0000-0000-0000-000000000021/ai-settings", "{", http.StatusBadRequest, "INVALID_JSON"},
		{"stats bad period", http.MethodGet, "/api/v1/stats?period=year", "", http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(mux, tt.method, tt.path, testAdminToken, []byte(tt.body))
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
		})
	}
}
