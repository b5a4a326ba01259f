package observers

import (
	"context"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	"github.com/graphchat/server/internal/metrics"
	"github.com/graphchat/server/internal/tracing"
	logx "github.com/graphchat/server/pkg/logger"
)

// newModelHandler builds a typed ModelCallbackHandler that logs model calls
// and mirrors them to LangSmith as llm runs.
func newModelHandler(monitor *tracing.Monitor) *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			logx.Debug().
				Str("node_type", info.Type).
				Str("node_name", info.Name).
				Msg("model call start")

			inputs := map[string]any{}
			if input != nil {
				if um := lastUserContent(input.Messages); um != "" {
					inputs["user_message"] = um
				}
				inputs["message_count"] = len(input.Messages)
			}
			if runID := monitor.StartRun(ctx, "chat_model", "llm", inputs); runID != "" {
				ctx = context.WithValue(ctx, modelRunKey{}, runID)
			}
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			outputs := map[string]any{}
			toolCalls := 0
			if output != nil && output.Message != nil {
				if content := strings.TrimSpace(output.Message.Content); content != "" {
					outputs["content"] = content
				}
				toolCalls = len(output.Message.ToolCalls)
				outputs["tool_calls"] = toolCalls
			}

			metrics.ModelCallsTotal.WithLabelValues(info.Name, "ok").Inc()
			logx.Debug().
				Str("node_name", info.Name).
				Int("tool_calls", toolCalls).
				Msg("model call end")

			if runID, ok := ctx.Value(modelRunKey{}).(string); ok {
				monitor.EndRun(ctx, runID, outputs, nil)
			}
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			metrics.ModelCallsTotal.WithLabelValues(info.Name, "error").Inc()
			logx.Error().Err(err).Str("node_name", info.Name).Msg("model call failed")

			if runID, ok := ctx.Value(modelRunKey{}).(string); ok {
				monitor.EndRun(ctx, runID, nil, err)
			}
			return ctx
		},
	}
}

func lastUserContent(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}
