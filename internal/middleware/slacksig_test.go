package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func signedRequest(secret, body string, ts int64) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	timestamp := fmt.Sprintf("%d", ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + timestamp + ":" + body))
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func runSignature(t *testing.T, secret string, req *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	handler := VerifySlackSignature(secret, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, called
}

func TestVerifySlackSignatureValid(t *testing.T) {
	t.Parallel()

	req := signedRequest("secret", `{"type":"event_callback"}`, time.Now().Unix())
	rec, called := runSignature(t, "secret", req)
	if rec.Code != http.StatusOK || !called {
		t.Fatalf("status = %d, called = %v", rec.Code, called)
	}
}

func TestVerifySlackSignatureWrongSecret(t *testing.T) {
	t.Parallel()

	req := signedRequest("wrong", `{}`, time.Now().Unix())
	rec, called := runSignature(t, "secret", req)
	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("status = %d, called = %v", rec.Code, called)
	}
}

func TestVerifySlackSignatureStaleTimestamp(t *testing.T) {
	t.Parallel()

	req := signedRequest("secret", `{}`, time.Now().Add(-10*time.Minute).Unix())
	rec, called := runSignature(t, "secret", req)
	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("status = %d, called = %v", rec.Code, called)
	}
}

func TestVerifySlackSignatureMissingHeaders(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader("{}"))
	rec, called := runSignature(t, "secret", req)
	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("status = %d, called = %v", rec.Code, called)
	}
}

func TestVerifySlackSignatureDisabledWithoutSecret(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader("{}"))
	rec, called := runSignature(t, "", req)
	if rec.Code != http.StatusOK || !called {
		t.Fatalf("status = %d, called = %v", rec.Code, called)
	}
}
