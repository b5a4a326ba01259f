package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/graphchat/server/internal/chatbot/model"
	errx "github.com/graphchat/server/internal/core/error"
	logx "github.com/graphchat/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey  string
	BaseURL string
	Config  *model.ChatModelConfig
}

// NewChatModel creates the response chat model backed by the Gemini API.
// The returned value is the tool-calling interface so the graph can bind
// tools and tests can substitute a scripted model.
func NewChatModel(ctx context.Context, config ChatModelConfig) (einomodel.ToolCallingChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, errx.WrapModel(fmt.Errorf("error creating Gemini client: %w", err))
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Config.Model,
		Temperature: &config.Config.Temperature,
		MaxTokens:   &config.Config.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating chat model")
		return nil, errx.WrapModel(fmt.Errorf("error creating chat model: %w", err))
	}

	return chatModel, nil
}
