package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/graphchat/server/internal/core"
	pkgredis "github.com/graphchat/server/pkg/redis"
)

// Config is the flat, process-wide configuration record. It is loaded once at
// startup and treated as read-only thereafter.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// LLM provider
	GeminiAPIKey     string  `envconfig:"GEMINI_API_KEY" required:"true"`
	GeminiBaseURL    string  `envconfig:"GEMINI_BASE_URL"`
	ModelName        string  `envconfig:"MODEL_NAME" default:"gemini-2.5-flash"`
	ModelMaxTokens   int     `envconfig:"MODEL_MAX_TOKENS" default:"2000"`
	ModelTemperature float32 `envconfig:"MODEL_TEMPERATURE" default:"0.4"`

	// Search provider (optional - search tool disabled when key is absent)
	TavilyAPIKey     string `envconfig:"TAVILY_API_KEY"`
	MaxSearchResults int    `envconfig:"MAX_SEARCH_RESULTS" default:"3"`

	// Tracing provider (optional - tracing disabled when key is absent)
	LangSmithAPIKey   string `envconfig:"LANGSMITH_API_KEY"`
	LangSmithProject  string `envconfig:"LANGSMITH_PROJECT" default:"graphchat"`
	LangSmithEndpoint string `envconfig:"LANGSMITH_ENDPOINT" default:"https://api.smith.langchain.com"`

	// Conversation/session
	Redis                pkgredis.Config
	ConversationTTL      string `envconfig:"CONVERSATION_TTL" default:"15m"`
	ToolMaxCalls         int    `envconfig:"TOOL_MAX_CALLS" default:"5"`
	MaxConversationTurns int    `envconfig:"MAX_CONVERSATION_TURNS" default:"50"`

	// Interfaces
	HTTPPort      string `envconfig:"HTTP_PORT" default:"5000"`
	AssistantName string `envconfig:"ASSISTANT_NAME" default:"GraphChat"`

	// Visualization
	SaveVisualizations bool     `envconfig:"SAVE_VISUALIZATIONS" default:"true"`
	VizFormats         []string `envconfig:"VIZ_FORMATS" default:"png,mermaid"`
	VizOutputDir       string   `envconfig:"VIZ_OUTPUT_DIR" default:"."`
}

// Load binds configuration from environment variables. Callers load .env
// beforehand (godotenv) for local runs.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects obviously unusable configuration. Missing optional keys
// are not errors; they disable features instead.
func (c *Config) Validate() error {
	key := strings.TrimSpace(c.GeminiAPIKey)
	if key == "" || key == "your-gemini-api-key-here" {
		return fmt.Errorf("valid GEMINI_API_KEY is required")
	}
	if c.ModelName == "" {
		return fmt.Errorf("MODEL_NAME must not be empty")
	}
	if c.MaxSearchResults <= 0 {
		return fmt.Errorf("MAX_SEARCH_RESULTS must be positive")
	}
	return nil
}

// SearchEnabled reports whether the web-search tool is available.
func (c *Config) SearchEnabled() bool {
	return strings.TrimSpace(c.TavilyAPIKey) != ""
}

// TracingEnabled reports whether LangSmith tracing is available.
func (c *Config) TracingEnabled() bool {
	return strings.TrimSpace(c.LangSmithAPIKey) != ""
}

// Env returns the parsed deployment environment.
func (c *Config) Env() core.Environment {
	return core.ParseEnvironment(c.Environment)
}
