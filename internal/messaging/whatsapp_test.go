package messaging_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskpulse/internal/messaging"
)

func TestCleanHandle(t *testing.T) {
	assert.Equal(t, "15551234567", messaging.CleanHandle("+1 555 123 4567"))
	assert.Equal(t, "15551234567", messaging.CleanHandle("15551234567"))
}

func TestSend_Mock(t *testing.T) {
	d := messaging.NewWhatsAppDispatcher(messaging.Config{Mock: true})

	res := d.Send(context.Background(), "+15551234567", "hi")
	assert.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.MessageID, "mock_"))
}

func TestSend_MissingCredentials(t *testing.T) {
	d := messaging.NewWhatsAppDispatcher(messaging.Config{})

	res := d.Send(context.Background(), "+15551234567", "hi")
	assert.False(t, res.Success)
	assert.Equal(t, "missing API credentials", res.Error)
}

func TestSend_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = io.WriteString(w, `{"messaging_product":"whatsapp","messages":[{"id":"wamid.123"}]}`)
	}))
	defer srv.Close()

	d := messaging.NewWhatsAppDispatcher(messaging.Config{APIToken: "tok", PhoneNumberID: "42", GraphURL: srv.URL})

	res := d.Send(context.Background(), "+1 555 0100", "Great job!")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "wamid.123", res.MessageID)
	assert.Equal(t, "/42/messages", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "15550100", gotBody["to"])
	assert.Equal(t, "whatsapp", gotBody["messaging_product"])
	assert.Equal(t, "Great job!", gotBody["text"].(map[string]any)["body"])
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"Invalid parameter","type":"OAuthException","code":100}}`)
	}))
	defer srv.Close()

	d := messaging.NewWhatsAppDispatcher(messaging.Config{APIToken: "tok", PhoneNumberID: "42", GraphURL: srv.URL})

	res := d.Send(context.Background(), "15550100", "hi")
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid parameter", res.Error)
	assert.Equal(t, 100, res.Code)
}

func TestSend_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	d := messaging.NewWhatsAppDispatcher(messaging.Config{APIToken: "tok", PhoneNumberID: "42", GraphURL: srv.URL})

	res := d.Send(context.Background(), "15550100", "hi")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}
