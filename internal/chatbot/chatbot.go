package chatbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/graphchat/server/internal/chatbot/graph"
	"github.com/graphchat/server/internal/chatbot/model"
	"github.com/graphchat/server/internal/chatbot/repo"
	"github.com/graphchat/server/internal/config"
	"github.com/graphchat/server/internal/search"
	"github.com/graphchat/server/internal/tracing"
	logx "github.com/graphchat/server/pkg/logger"
)

// Chatbot wires configuration, the compiled chat graph, the conversation
// store, and the tracing monitor into one "send message, get reply" surface
// shared by the CLI and the web server.
type Chatbot struct {
	cfg        *config.Config
	runner     graph.Runner
	monitor    *tracing.Monitor
	graphBuilt bool
}

// New builds a Chatbot from configuration: validates config, picks the
// conversation store (Redis when configured, in-memory otherwise), constructs
// the optional search tool and tracing monitor, and compiles the graph.
func New(ctx context.Context, cfg *config.Config) (*Chatbot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	conversationRepo, err := newConversationRepo(cfg)
	if err != nil {
		return nil, err
	}

	var searcher search.Searcher
	if cfg.SearchEnabled() {
		searcher = search.NewTavilyClient(cfg.TavilyAPIKey)
		logx.Info().Msg("web search enabled (Tavily)")
	} else {
		logx.Warn().Msg("TAVILY_API_KEY not set - web search disabled")
	}

	monitor := tracing.NewMonitor(cfg.LangSmithAPIKey, cfg.LangSmithProject, cfg.LangSmithEndpoint)

	runner, err := graph.BuildChatGraph(ctx, graph.Config{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model: model.ChatModelConfig{
			Model:       cfg.ModelName,
			MaxTokens:   cfg.ModelMaxTokens,
			Temperature: cfg.ModelTemperature,
		},
		Prompt:           model.PromptConfig{AssistantName: cfg.AssistantName},
		Conversation:     model.ConversationConfig{TTL: cfg.ConversationTTL, ToolMaxCalls: cfg.ToolMaxCalls},
		ConversationRepo: conversationRepo,
		Searcher:         searcher,
		MaxSearchResults: cfg.MaxSearchResults,
		Monitor:          monitor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	logx.Info().Str("model", cfg.ModelName).Msg("chatbot initialized")
	return &Chatbot{
		cfg:        cfg,
		runner:     runner,
		monitor:    monitor,
		graphBuilt: true,
	}, nil
}

// NewWithRunner assembles a Chatbot around an existing runner. Used by tests
// to drive the public surface without a live model.
func NewWithRunner(cfg *config.Config, runner graph.Runner, monitor *tracing.Monitor) *Chatbot {
	return &Chatbot{
		cfg:        cfg,
		runner:     runner,
		monitor:    monitor,
		graphBuilt: runner != nil,
	}
}

func newConversationRepo(cfg *config.Config) (model.ConversationRepository, error) {
	if !cfg.Redis.Enabled() {
		logx.Info().Msg("REDIS_URL not set - using in-memory conversation store")
		return repo.NewMemoryConversationRepository(), nil
	}

	rdb, err := cfg.Redis.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise Redis client: %w", err)
	}

	ttl, err := time.ParseDuration(cfg.ConversationTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid CONVERSATION_TTL %q: %w", cfg.ConversationTTL, err)
	}

	logx.Info().Dur("ttl", ttl).Msg("using Redis conversation store")
	return repo.NewRedisConversationRepository(rdb, ttl), nil
}

// StartSession registers a new session with the tracing monitor and returns
// its identifier. With tracing disabled a local identifier is still minted.
func (b *Chatbot) StartSession(ctx context.Context, sessionID string) string {
	return b.monitor.StartSession(ctx, sessionID)
}

// Chat runs one conversation turn: the user message enters the graph, the
// final assistant message comes back. An empty sessionID gets a fresh session.
func (b *Chatbot) Chat(ctx context.Context, sessionID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message is empty")
	}
	if sessionID == "" {
		sessionID = "session_" + uuid.NewString()
	}

	out, err := b.runner.Invoke(ctx, model.ChatInput{
		SessionID: sessionID,
		Message:   message,
	})
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}

	b.monitor.LogTurn(ctx, sessionID, message, out.Content, 0)
	return out.Content, nil
}

// HealthCheck computes the transient health record on demand.
func (b *Chatbot) HealthCheck(ctx context.Context) model.HealthStatus {
	status := model.HealthStatus{
		Status:         model.HealthStatusHealthy,
		ConfigLoaded:   true,
		GraphBuilt:     b.graphBuilt,
		SearchEnabled:  b.cfg.SearchEnabled(),
		TracingEnabled: b.monitor.Enabled(),
		Errors:         []string{},
	}

	if err := b.cfg.Validate(); err != nil {
		status.Status = model.HealthStatusUnhealthy
		status.ConfigLoaded = false
		status.Errors = append(status.Errors, fmt.Sprintf("config validation failed: %v", err))
	}

	if !b.graphBuilt {
		status.Status = model.HealthStatusUnhealthy
		status.Errors = append(status.Errors, "graph not built")
	}

	if !status.SearchEnabled {
		status.Errors = append(status.Errors, "search disabled: TAVILY_API_KEY not configured")
	}
	if !status.TracingEnabled {
		status.Errors = append(status.Errors, "tracing disabled: LANGSMITH_API_KEY not configured")
	}

	logx.Debug().Str("status", status.Status).Msg("health check completed")
	return status
}

// Mermaid returns the Mermaid diagram text for the configured topology.
func (b *Chatbot) Mermaid() string {
	return graph.MermaidDiagram(b.cfg.SearchEnabled())
}

// Monitor exposes the tracing monitor (e.g., for printing the project URL).
func (b *Chatbot) Monitor() *tracing.Monitor {
	return b.monitor
}
