package tracing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method string
	path   string
	apiKey string
	body   map[string]any
}

func newCaptureServer(t *testing.T) (*httptest.Server, func() []capturedRequest) {
	t.Helper()

	var mu sync.Mutex
	var captured []capturedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		mu.Lock()
		captured = append(captured, capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			apiKey: r.Header.Get("x-api-key"),
			body:   body,
		})
		mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))

	return server, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), captured...)
	}
}

func TestMonitorStartSession(t *testing.T) {
	server, requests := newCaptureServer(t)
	defer server.Close()

	m := NewMonitor("key-123", "test-project", server.URL)
	require.True(t, m.Enabled())

	sessionID := m.StartSession(context.Background(), "my-session")
	assert.Equal(t, "my-session", sessionID)

	got := requests()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodPost, got[0].method)
	assert.Equal(t, "/runs", got[0].path)
	assert.Equal(t, "key-123", got[0].apiKey)
	assert.Equal(t, "chain", got[0].body["run_type"])
	assert.Equal(t, "test-project", got[0].body["session_name"])
}

func TestMonitorStartSessionMintsID(t *testing.T) {
	server, _ := newCaptureServer(t)
	defer server.Close()

	m := NewMonitor("key", "p", server.URL)
	sessionID := m.StartSession(context.Background(), "")
	assert.True(t, strings.HasPrefix(sessionID, "chat_session_"), "got %q", sessionID)
}

func TestMonitorRunLifecycle(t *testing.T) {
	server, requests := newCaptureServer(t)
	defer server.Close()

	m := NewMonitor("key", "p", server.URL)

	runID := m.StartRun(context.Background(), "chat_model", "llm", map[string]any{"user_message": "hi"})
	require.NotEmpty(t, runID)

	m.EndRun(context.Background(), runID, map[string]any{"content": "hello"}, nil)

	got := requests()
	require.Len(t, got, 2)
	assert.Equal(t, http.MethodPost, got[0].method)
	assert.Equal(t, "llm", got[0].body["run_type"])
	assert.Equal(t, http.MethodPatch, got[1].method)
	assert.Equal(t, "/runs/"+runID, got[1].path)
}

func TestMonitorDisabledIsNoOp(t *testing.T) {
	m := NewMonitor("", "p", "http://unused.invalid")
	require.False(t, m.Enabled())

	// Session IDs are still minted so callers always get a usable one.
	sessionID := m.StartSession(context.Background(), "")
	assert.NotEmpty(t, sessionID)

	assert.Empty(t, m.StartRun(context.Background(), "n", "llm", nil))
	m.EndRun(context.Background(), "irrelevant", nil, nil)
	m.LogTurn(context.Background(), sessionID, "in", "out", 1)
	assert.Equal(t, "LangSmith not enabled", m.ProjectURL())
}

func TestMonitorNilIsDisabled(t *testing.T) {
	var m *Monitor
	assert.False(t, m.Enabled())
	assert.Empty(t, m.StartRun(context.Background(), "n", "llm", nil))
	m.EndRun(context.Background(), "x", nil, nil)
	m.LogTurn(context.Background(), "s", "in", "out", 0)
	assert.NotEmpty(t, m.StartSession(context.Background(), ""))
}

func TestMonitorProjectURL(t *testing.T) {
	m := NewMonitor("key", "my-project", "https://api.smith.langchain.com")
	assert.Equal(t, "https://smith.langchain.com/projects/my-project", m.ProjectURL())
}
