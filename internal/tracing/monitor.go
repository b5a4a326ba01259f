package tracing

import (
	"context"
	"fmt"
	"strings"
	"time"

	logx "github.com/graphchat/server/pkg/logger"
)

// Monitor is the application-facing tracing facade. When no API key is
// configured every method is a no-op, so callers never need to branch on
// whether tracing is enabled. Failures are logged and swallowed: tracing is
// never allowed to break a conversation turn.
type Monitor struct {
	client  *Client
	project string
	enabled bool
}

func NewMonitor(apiKey, project, endpoint string) *Monitor {
	enabled := strings.TrimSpace(apiKey) != ""
	if !enabled {
		logx.Warn().Msg("LangSmith monitoring disabled - no API key provided")
		return &Monitor{enabled: false, project: project}
	}
	return &Monitor{
		client:  NewClient(apiKey, endpoint),
		project: project,
		enabled: true,
	}
}

// Enabled reports whether runs are actually shipped to LangSmith.
// A nil Monitor behaves as a disabled one.
func (m *Monitor) Enabled() bool {
	return m != nil && m.enabled
}

// StartSession registers a session-scoped chain run and returns the session
// identifier. A fresh identifier is minted when none is supplied, whether or
// not tracing is enabled, so the caller always gets a usable session ID.
func (m *Monitor) StartSession(ctx context.Context, sessionID string) string {
	if sessionID == "" {
		sessionID = fmt.Sprintf("chat_session_%s", time.Now().Format("20060102_150405"))
	}
	if !m.Enabled() {
		return sessionID
	}

	run := &Run{
		ID:          NewRunID(),
		Name:        "Chat Session",
		RunType:     "chain",
		StartTime:   time.Now().UTC(),
		Inputs:      map[string]any{"session_id": sessionID},
		SessionName: m.project,
	}
	if err := m.client.CreateRun(ctx, run); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to start LangSmith trace")
		return sessionID
	}
	logx.Info().Str("session_id", sessionID).Msg("started LangSmith trace")
	return sessionID
}

// LogTurn records a completed conversation turn as a chain run.
func (m *Monitor) LogTurn(ctx context.Context, sessionID, userInput, reply string, turn int) {
	if !m.Enabled() {
		return
	}

	now := time.Now().UTC()
	run := &Run{
		ID:        NewRunID(),
		Name:      "Conversation Turn",
		RunType:   "chain",
		StartTime: now,
		EndTime:   &now,
		Inputs:    map[string]any{"user_input": userInput},
		Outputs:   map[string]any{"assistant_response": reply},
		Extra: map[string]any{
			"session_id":  sessionID,
			"turn_number": turn,
		},
		SessionName: m.project,
	}
	if err := m.client.CreateRun(ctx, run); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to log conversation turn")
		return
	}
	logx.Debug().Str("session_id", sessionID).Int("turn", turn).Msg("logged conversation turn")
}

// StartRun opens a node-scoped run and returns its identifier, or "" when
// tracing is disabled or the create failed.
func (m *Monitor) StartRun(ctx context.Context, name, runType string, inputs map[string]any) string {
	if !m.Enabled() {
		return ""
	}
	id := NewRunID()
	run := &Run{
		ID:          id,
		Name:        name,
		RunType:     runType,
		StartTime:   time.Now().UTC(),
		Inputs:      inputs,
		SessionName: m.project,
	}
	if err := m.client.CreateRun(ctx, run); err != nil {
		logx.Error().Err(err).Str("run_name", name).Msg("failed to start LangSmith run")
		return ""
	}
	return id
}

// EndRun closes a run previously opened with StartRun. runErr, when non-nil,
// is recorded on the run.
func (m *Monitor) EndRun(ctx context.Context, runID string, outputs map[string]any, runErr error) {
	if !m.Enabled() || runID == "" {
		return
	}
	update := &RunUpdate{
		EndTime: time.Now().UTC(),
		Outputs: outputs,
	}
	if runErr != nil {
		update.Error = runErr.Error()
	}
	if err := m.client.UpdateRun(ctx, runID, update); err != nil {
		logx.Error().Err(err).Str("run_id", runID).Msg("failed to end LangSmith run")
	}
}

// ProjectURL returns the browser URL of the configured project.
func (m *Monitor) ProjectURL() string {
	if !m.Enabled() {
		return "LangSmith not enabled"
	}
	base := strings.Replace(m.client.endpoint, "api.", "", 1)
	return fmt.Sprintf("%s/projects/%s", base, m.project)
}
