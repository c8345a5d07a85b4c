package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// SignatureHeader carries the HMAC-SHA256 of the webhook body.
const SignatureHeader = "X-Hub-Signature-256"

const maxWebhookBody = 1 << 20

// rejectedAck acknowledges a delivery that is dropped. The provider retries
// anything but a 200, so rejections are acknowledged too.
const rejectedAck = `{"success":false}`

// VerifySignature drops webhook deliveries whose X-Hub-Signature-256 does not
// match the body signed with appSecret. An empty secret disables the check.
func VerifySignature(appSecret string, next http.Handler) http.Handler {
	if appSecret == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			slog.Warn("failed to read webhook body", "remote_addr", r.RemoteAddr, "error", err)
			writeRejected(w)
			return
		}
		r.Body.Close()

		if !ValidSignature(appSecret, body, r.Header.Get(SignatureHeader)) {
			slog.Warn("webhook signature mismatch, delivery dropped", "remote_addr", r.RemoteAddr)
			writeRejected(w)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func writeRejected(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, rejectedAck)
}

// ValidSignature reports whether header is "sha256=<hex hmac of body>".
func ValidSignature(appSecret string, body []byte, header string) bool {
	sig, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign returns the X-Hub-Signature-256 value for body.
func Sign(appSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
