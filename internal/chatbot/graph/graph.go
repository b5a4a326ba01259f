package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/graphchat/server/internal/chatbot/graph/conversations"
	"github.com/graphchat/server/internal/chatbot/graph/nodes"
	"github.com/graphchat/server/internal/chatbot/graph/observers"
	"github.com/graphchat/server/internal/chatbot/graph/tools"
	"github.com/graphchat/server/internal/chatbot/model"
	"github.com/graphchat/server/internal/tracing"
	logx "github.com/graphchat/server/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled graph with the public ChatInput.
type Runner interface {
	Invoke(ctx context.Context, in model.ChatInput) (*schema.Message, error)
}

// Config holds everything needed to compose the full chat graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs the chat
// model and MessagesManager.
type Config struct {
	APIKey           string
	BaseURL          string
	Model            model.ChatModelConfig
	Prompt           model.PromptConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository

	// Searcher is nil when web search is disabled; the graph is then built
	// without the tools node.
	Searcher         tools.Searcher
	MaxSearchResults int

	Monitor *tracing.Monitor
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModel        einomodel.ToolCallingChatModel
	ModelName        string
	MessagesManager  *conversations.MessagesManager
	Prompt           *model.PromptConfig
	Searcher         tools.Searcher
	MaxSearchResults int
	ToolMaxCalls     int
	Monitor          *tracing.Monitor
}

// GraphBuilder handles the construction of the chat graph
type GraphBuilder struct {
	config    *GraphConfig
	chatModel einomodel.ToolCallingChatModel
	graph     *compose.Graph[model.ChatInput, *schema.Message]
}

type graphRunner struct {
	runnable  compose.Runnable[model.ChatInput, *schema.Message]
	callbacks einocb.Handler
}

func (r *graphRunner) Invoke(ctx context.Context, in model.ChatInput) (*schema.Message, error) {
	return r.runnable.Invoke(ctx, in, compose.WithCallbacks(r.callbacks))
}

// BuildChatGraph composes the chat model and MessagesManager, builds the
// graph, and returns a Runner.
func BuildChatGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}

	cm, err := nodes.NewChatModel(ctx, nodes.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Config:  &cfg.Model,
	})
	if err != nil {
		return nil, err
	}

	mm := conversations.NewMessagesManager(cfg.ConversationRepo)

	return BuildGraph(ctx, &GraphConfig{
		ChatModel:        cm,
		ModelName:        cfg.Model.Model,
		MessagesManager:  mm,
		Prompt:           &cfg.Prompt,
		Searcher:         cfg.Searcher,
		MaxSearchResults: cfg.MaxSearchResults,
		ToolMaxCalls:     cfg.Conversation.ToolMaxCalls,
		Monitor:          cfg.Monitor,
	})
}

// BuildGraph constructs and compiles the chat graph and wraps it in a Runner.
func BuildGraph(ctx context.Context, config *GraphConfig) (Runner, error) {
	// Basic config validation
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModel == nil {
		return nil, fmt.Errorf("chat model is not initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.Prompt == nil {
		return nil, fmt.Errorf("prompt config is nil")
	}

	builder := &GraphBuilder{
		config:    config,
		chatModel: config.ChatModel,
		graph: compose.NewGraph[model.ChatInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if builder.searchEnabled() {
		if err := builder.setupTools(ctx); err != nil {
			return nil, err
		}
	}

	builder.addNodes()

	if err := builder.addEdges(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}

	logx.Debug().Bool("search_enabled", builder.searchEnabled()).Msg("Chat graph built successfully")
	return &graphRunner{
		runnable:  runnable,
		callbacks: observers.NewAllCallbacks(config.Monitor),
	}, nil
}

func (b *GraphBuilder) searchEnabled() bool {
	return b.config.Searcher != nil
}

// setupTools registers the web-search tool, binds it to the chat model, and
// adds the tool executor node.
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	chatTools := tools.GetChatTools(b.config.Searcher, b.config.MaxSearchResults)
	toolInfos, err := tools.GetToolInfos(ctx, chatTools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	boundModel, err := b.chatModel.WithTools(toolInfos)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to chat model")
		return fmt.Errorf("failed to bind tools to chat model: %w", err)
	}
	b.chatModel = boundModel

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               chatTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// Gracefully handle hallucinated or malformed tool calls (e.g., empty name)
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			// Best-effort sanitize; never fail hard here
			var m map[string]any
			if err := json.Unmarshal([]byte(arguments), &m); err != nil {
				// keep original if not JSON
				return arguments, nil
			}

			if name == tools.ToolWebSearch {
				// query: string (required)
				if v, ok := m["query"]; ok {
					switch vv := v.(type) {
					case string:
						m["query"] = strings.TrimSpace(vv)
					default:
						m["query"] = strings.TrimSpace(fmt.Sprint(v))
					}
				}
				// max_results: number (optional)
				if v, ok := m["max_results"]; ok {
					switch vv := v.(type) {
					case float64:
						// JSON numbers decode as float64
						m["max_results"] = clampInt(int(vv), 1, 10)
					case string:
						if n, err := strconv.Atoi(strings.TrimSpace(vv)); err == nil {
							m["max_results"] = clampInt(n, 1, 10)
						} else {
							delete(m, "max_results")
						}
					default:
						delete(m, "max_results")
					}
				}
			}

			sanitized, err := json.Marshal(m)
			if err != nil {
				// fallback to original
				return arguments, nil
			}
			return string(sanitized), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.ToolMaxCalls)),
	)

	return nil
}

// addNodes adds the processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeContextLoader,
		nodes.NewContextLoaderNode(b.config.MessagesManager, b.config.Prompt, b.searchEnabled()),
		compose.WithStatePreHandler(nodes.NewContextLoaderPreHandler()),
	)

	b.graph.AddChatModelNode(nodes.NodeChatModel,
		b.chatModel,
		compose.WithStatePreHandler(nodes.NewChatModelPreHandler(b.config.ToolMaxCalls)),
		compose.WithStatePostHandler(nodes.NewChatModelPostHandler(b.config.MessagesManager, b.config.ModelName)),
	)
}

// addEdges creates the flow connections and, when search is enabled, the
// conditional branch after the chat model.
func (b *GraphBuilder) addEdges() error {
	b.graph.AddEdge(compose.START, nodes.NodeContextLoader)
	b.graph.AddEdge(nodes.NodeContextLoader, nodes.NodeChatModel)

	if !b.searchEnabled() {
		// Simple flow without tools: start -> chat model -> end
		b.graph.AddEdge(nodes.NodeChatModel, compose.END)
		return nil
	}

	// Tools always feed back into the chat model for the final response
	b.graph.AddEdge(nodes.NodeToolExecutor, nodes.NodeChatModel)

	decisionBranch := compose.NewGraphBranch(
		nodes.NewToolRoutingCondition(),
		map[string]bool{
			nodes.NodeToolExecutor: true,
			compose.END:            true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeChatModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding tool routing branch")
		return fmt.Errorf("error adding tool routing branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.ChatInput, *schema.Message], error) {
	// Limit total run steps to avoid infinite loops in branching or tool retries
	maxSteps := 10 + b.config.ToolMaxCalls*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

// clampInt returns v limited to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
