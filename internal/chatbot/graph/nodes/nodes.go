package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/graphchat/server/internal/chatbot/graph/conversations"
	"github.com/graphchat/server/internal/chatbot/graph/prompts"
	"github.com/graphchat/server/internal/chatbot/model"
	logx "github.com/graphchat/server/pkg/logger"
)

// Node keys used when composing the graph.
const (
	NodeContextLoader = "ContextLoader"
	NodeChatModel     = "ChatModel"
	NodeToolExecutor  = "ToolExecutor"
)

// NewContextLoaderPreHandler creates the pre-handler for the ContextLoader node.
// It resets per-turn state so a session can be invoked repeatedly.
func NewContextLoaderPreHandler() func(context.Context, model.ChatInput, *model.AppState) (model.ChatInput, error) {
	return func(ctx context.Context, in model.ChatInput, s *model.AppState) (model.ChatInput, error) {
		s.SessionID = in.SessionID
		s.History = nil
		s.ToolCallCount = 0
		s.ToolCallLimitReached = false
		s.ToolCallIDSeq = 0
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewContextLoaderNode creates the ContextLoader node. It persists the user's
// newest message and assembles the model context: system prompt plus history.
func NewContextLoaderNode(
	mm *conversations.MessagesManager,
	promptCfg *model.PromptConfig,
	searchEnabled bool,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.ChatInput) ([]*schema.Message, error) {
		if strings.TrimSpace(input.Message) == "" {
			return nil, fmt.Errorf("message is empty")
		}

		if err := mm.AppendUserMessage(ctx, input.SessionID, input.Message); err != nil {
			return nil, fmt.Errorf("save user message: %w", err)
		}

		systemPrompt, err := prompts.RenderSystem(ctx, *promptCfg, searchEnabled)
		if err != nil {
			return nil, fmt.Errorf("render system prompt: %w", err)
		}

		messages, err := mm.BuildModelContext(ctx, input.SessionID, systemPrompt)
		if err != nil {
			return nil, fmt.Errorf("build model context: %w", err)
		}

		return messages, nil
	})
}

// NewChatModelPreHandler creates the pre-handler for the ChatModel node.
// It folds incoming messages into the turn history and injects the wrap-up
// notice once the tool-call limit is hit.
func NewChatModelPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		// Some providers omit tool_call_id on tool results; backfill from the
		// most recent assistant tool call so the request stays well-formed.
		if len(in) > 0 {
			last := in[len(in)-1]
			if last != nil && last.Role == schema.Tool && strings.TrimSpace(last.ToolCallID) == "" {
				for i := len(state.History) - 1; i >= 0; i-- {
					msg := state.History[i]
					if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
						continue
					}
					id := msg.ToolCalls[0].ID
					if strings.TrimSpace(id) != "" {
						last.ToolCallID = id
					}
					break
				}
			}
		}

		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Please synthesize a helpful response using the information you've already gathered. "+
						"Acknowledge any limitations in your response if you couldn't complete all necessary tool calls.",
					maxToolCalls,
				),
			}
			state.History = append(state.History, wrapUp)
		}

		return state.History, nil
	}
}

// NewChatModelPostHandler creates the post-handler for the ChatModel node.
// It accounts usage cost, normalizes tool-call IDs, and persists the final
// assistant reply.
func NewChatModelPostHandler(
	mm *conversations.MessagesManager,
	modelName string,
) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if model.CostEnabled() && out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			pricing := model.ResolvePricing(modelName)
			inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			out.Extra["usage_cost"] = map[string]any{
				"currency":          "USD",
				"model":             modelName,
				"prompt_tokens":     out.ResponseMeta.Usage.PromptTokens,
				"completion_tokens": out.ResponseMeta.Usage.CompletionTokens,
				"total_tokens":      out.ResponseMeta.Usage.TotalTokens,
				"input_cost":        inC,
				"output_cost":       outC,
				"total_cost":        totalC,
			}
			logx.Debug().
				Str("session_id", state.SessionID).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
				Float64("total_cost_usd", totalC).
				Msg("LLM usage")

			state.TotalCostUSD += totalC
			out.Extra["usage_cost_total_usd"] = state.TotalCostUSD
		}

		// Normalize tool calls: some providers may omit tool_call IDs.
		if out != nil && len(out.ToolCalls) > 0 {
			for i := range out.ToolCalls {
				if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
					state.ToolCallIDSeq++
					out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
				}
			}
		}

		state.History = append(state.History, out)

		if len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
		} else {
			logx.Debug().Msg("AI response ready")
		}

		// Save only when it's a final assistant message (no further tool calls),
		// or when we've reached the tool-call limit but still have a content response.
		if out.Role == schema.Assistant && (len(out.ToolCalls) == 0 || state.ToolCallLimitReached) && strings.TrimSpace(out.Content) != "" {
			if err := mm.SaveResponse(ctx, state.SessionID, out.Content); err != nil {
				logx.Error().
					Str("session_id", state.SessionID).
					Err(err).
					Msg("Error saving assistant response")
			} else {
				logx.Debug().
					Str("session_id", state.SessionID).
					Msg("Saved assistant response")
			}
		}

		return out, nil
	}
}

// NewToolRoutingCondition creates the branch condition after the chat model:
// route to the tool executor when the response carries tool calls, otherwise
// terminate the turn. A reached limit always terminates.
func NewToolRoutingCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			limitReached = state.ToolCallLimitReached
			return nil
		})

		if limitReached {
			logx.Debug().Msg("Tool limit reached previously - routing to end")
			return compose.END, nil
		}

		if len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to ToolExecutor")
			return NodeToolExecutor, nil
		}

		logx.Debug().Msg("No tool calls - continuing to end")
		return compose.END, nil
	}
}

// NewToolExecutorPreHandler creates the pre-handler for the ToolExecutor node.
// It counts tool executions against the per-turn cap.
func NewToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		exceeded := incrementToolCallAndCheck(state, maxToolCalls)

		logx.Debug().
			Int("tool_call_count", state.ToolCallCount).
			Str("session_id", state.SessionID).
			Msg("Tool execution attempt")

		if exceeded {
			logx.Warn().
				Int("tool_call_count", state.ToolCallCount).
				Int("max_tool_calls", normalizeMaxToolCalls(maxToolCalls)).
				Str("session_id", state.SessionID).
				Msg("Tool call limit exceeded - flagging and continuing")
		}

		return in, nil
	}
}
