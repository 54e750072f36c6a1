package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vertexchat-go/internal/config"
	"vertexchat-go/internal/conversation"
	"vertexchat-go/internal/storage"
	"vertexchat-go/internal/usage"
)

func newTestServer(t *testing.T, deps Dependencies) *Server {
	t.Helper()
	return New(config.MetricsConfig{Listen: "127.0.0.1:0"}, true, deps)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	w := get(t, s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vertexchat_http_requests_total")

	w = get(t, s.Handler(), "/sessions")
	assert.Equal(t, http.StatusNotFound, w.Code, "session routes need a backend")
}

func TestUsageRoute(t *testing.T) {
	tracker := usage.NewTracker(nil, 0)
	tracker.Record(conversation.ExchangeEvent{
		Outcome:      conversation.OutcomeCommitted,
		Model:        "gemini-pro",
		PromptTokens: 3,
		OutputTokens: 4,
		TotalTokens:  7,
		At:           time.Now(),
	})
	s := newTestServer(t, Dependencies{Usage: tracker})

	w := get(t, s.Handler(), "/usage")
	require.Equal(t, http.StatusOK, w.Code)
	var stats usage.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(7), stats.TotalTokens)
	assert.Equal(t, int64(1), stats.Models["gemini-pro"].Calls)
}

func TestReadyzReportsFailingChecks(t *testing.T) {
	s := newTestServer(t, Dependencies{Checks: map[string]HealthCheck{
		"token":   func(context.Context) error { return nil },
		"storage": func(context.Context) error { return errors.New("redis down") },
	}})

	w := get(t, s.Handler(), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"token": "ok", "storage": "redis down"}, body.Checks)
}

func TestSessionRoutes(t *testing.T) {
	backend := storage.NewFileBackend(t.TempDir())
	ctx := context.Background()
	require.NoError(t, backend.Initialize(ctx))
	require.NoError(t, backend.AppendExchange(ctx, conversation.ExchangeEvent{
		SessionID: "s1",
		Outcome:   conversation.OutcomeCommitted,
		UserText:  "hello",
		ModelText: "hi",
	}))

	s := newTestServer(t, Dependencies{Sessions: backend})

	w := get(t, s.Handler(), "/sessions")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessions":["s1"]}`, w.Body.String())

	w = get(t, s.Handler(), "/sessions/s1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"committed":1`)
	assert.Contains(t, w.Body.String(), `"user_text":"hello"`)

	w = get(t, s.Handler(), "/sessions/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeStopsOnContextCancel(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("listen unavailable: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/healthz", ln.Addr().String())
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(url)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.True(t, strings.Contains(string(body), "ok"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
