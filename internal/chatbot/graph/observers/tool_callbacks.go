package observers

import (
	"context"
	"errors"
	"io"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	"github.com/graphchat/server/internal/metrics"
	"github.com/graphchat/server/internal/tracing"
	logx "github.com/graphchat/server/pkg/logger"
)

// newToolHandler builds a typed ToolCallbackHandler that logs tool calls and
// mirrors them to LangSmith as tool runs.
func newToolHandler(monitor *tracing.Monitor) *callbackHelper.ToolCallbackHandler {
	return &callbackHelper.ToolCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *tool.CallbackInput) context.Context {
			args := ""
			if input != nil {
				args = input.ArgumentsInJSON
			}
			logx.Debug().
				Str("tool_name", info.Name).
				Str("arguments", args).
				Msg("tool call start")

			if runID := monitor.StartRun(ctx, info.Name, "tool", map[string]any{"arguments": args}); runID != "" {
				ctx = context.WithValue(ctx, toolRunKey{}, runID)
			}
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *tool.CallbackOutput) context.Context {
			metrics.ToolCallsTotal.WithLabelValues(info.Name, "ok").Inc()

			outputs := map[string]any{}
			if output != nil {
				outputs["response"] = output.Response
			}
			logx.Debug().Str("tool_name", info.Name).Msg("tool call end")

			if runID, ok := ctx.Value(toolRunKey{}).(string); ok {
				monitor.EndRun(ctx, runID, outputs, nil)
			}
			return ctx
		},
		OnEndWithStreamOutput: func(ctx context.Context, info *einocb.RunInfo, output *schema.StreamReader[*tool.CallbackOutput]) context.Context {
			// Drain the stream so the tool run still closes with its final output.
			runID, _ := ctx.Value(toolRunKey{}).(string)
			go func() {
				defer output.Close()
				var last string
				for {
					chunk, err := output.Recv()
					if errors.Is(err, io.EOF) {
						break
					}
					if err != nil {
						return
					}
					if chunk != nil {
						last = chunk.Response
					}
				}
				metrics.ToolCallsTotal.WithLabelValues(info.Name, "ok").Inc()
				monitor.EndRun(context.WithoutCancel(ctx), runID, map[string]any{"response": last}, nil)
			}()
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			metrics.ToolCallsTotal.WithLabelValues(info.Name, "error").Inc()
			logx.Error().Err(err).Str("tool_name", info.Name).Msg("tool call failed")

			if runID, ok := ctx.Value(toolRunKey{}).(string); ok {
				monitor.EndRun(ctx, runID, nil, err)
			}
			return ctx
		},
	}
}
