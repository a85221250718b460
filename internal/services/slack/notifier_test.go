package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestPostMessage(t *testing.T) {
	t.Parallel()

	var captured postMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat.postMessage" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer xoxb-test" {
			t.Errorf("auth header = %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	t.Cleanup(server.Close)

	n := NewNotifier("xoxb-test", zap.NewNop(), WithBaseURL(server.URL))
	if err := n.PostMessage(context.Background(), "C123", "hello", "171234.5678"); err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if captured.Channel != "C123" || captured.Text != "hello" || captured.ThreadTS != "171234.5678" {
		t.Fatalf("request = %+v", captured)
	}
}

func TestPostMessageAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	}))
	t.Cleanup(server.Close)

	n := NewNotifier("xoxb-test", zap.NewNop(), WithBaseURL(server.URL))
	err := n.PostMessage(context.Background(), "C404", "hello", "")
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("err = %v, want channel_not_found", err)
	}
}

func TestNotifySwallowsFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	n := NewNotifier("xoxb-test", zap.NewNop(), WithBaseURL(server.URL))
	// Must not panic or propagate
	n.Notify(context.Background(), "C123", "best effort")
}
