package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	"github.com/graphchat/server/internal/tracing"
)

// NewAllCallbacks aggregates the model and tool observers into one
// callbacks.Handler. The monitor may be disabled; observers still log locally.
func NewAllCallbacks(monitor *tracing.Monitor) einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler(monitor)).
		Tool(newToolHandler(monitor)).
		Handler()
}

type modelRunKey struct{}
type toolRunKey struct{}
