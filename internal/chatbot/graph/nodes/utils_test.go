package nodes

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphchat/server/internal/chatbot/model"
)

func TestNormalizeMaxToolCalls(t *testing.T) {
	assert.Equal(t, DefaultMaxToolCalls, normalizeMaxToolCalls(0))
	assert.Equal(t, DefaultMaxToolCalls, normalizeMaxToolCalls(-3))
	assert.Equal(t, 7, normalizeMaxToolCalls(7))
}

func TestCheckAndMarkToolLimit(t *testing.T) {
	state := &model.AppState{ToolCallCount: 2}

	assert.False(t, checkAndMarkToolLimit(state, 3))
	assert.False(t, state.ToolCallLimitReached)

	state.ToolCallCount = 3
	assert.True(t, checkAndMarkToolLimit(state, 3))
	assert.True(t, state.ToolCallLimitReached)

	// Already marked: not reported as newly marked again.
	assert.False(t, checkAndMarkToolLimit(state, 3))
}

func TestIncrementToolCallAndCheck(t *testing.T) {
	state := &model.AppState{}

	assert.False(t, incrementToolCallAndCheck(state, 2))
	assert.False(t, incrementToolCallAndCheck(state, 2))
	assert.Equal(t, 2, state.ToolCallCount)
	assert.False(t, state.ToolCallLimitReached)

	assert.True(t, incrementToolCallAndCheck(state, 2))
	assert.True(t, state.ToolCallLimitReached)
}

func TestToolRoutingCondition(t *testing.T) {
	cond := NewToolRoutingCondition()
	ctx := context.Background()

	withTools := schema.AssistantMessage("", []schema.ToolCall{
		{ID: "call_1", Function: schema.FunctionCall{Name: "web_search", Arguments: "{}"}},
	})
	next, err := cond(ctx, withTools)
	require.NoError(t, err)
	assert.Equal(t, NodeToolExecutor, next)

	plain := schema.AssistantMessage("done", nil)
	next, err = cond(ctx, plain)
	require.NoError(t, err)
	assert.Equal(t, compose.END, next)
}

func TestContextLoaderPreHandlerResetsState(t *testing.T) {
	state := &model.AppState{
		SessionID:            "old",
		History:              []*schema.Message{schema.UserMessage("stale")},
		ToolCallCount:        4,
		ToolCallLimitReached: true,
		ToolCallIDSeq:        9,
		TotalCostUSD:         0.42,
	}

	handler := NewContextLoaderPreHandler()
	in, err := handler(context.Background(), model.ChatInput{SessionID: "new", Message: "hi"}, state)
	require.NoError(t, err)

	assert.Equal(t, "new", state.SessionID)
	assert.Nil(t, state.History)
	assert.Zero(t, state.ToolCallCount)
	assert.False(t, state.ToolCallLimitReached)
	assert.Zero(t, state.ToolCallIDSeq)
	assert.Zero(t, state.TotalCostUSD)
	assert.Equal(t, "hi", in.Message)
}

func TestChatModelPreHandlerInjectsWrapUpNotice(t *testing.T) {
	state := &model.AppState{ToolCallCount: 2}
	handler := NewChatModelPreHandler(2)

	out, err := handler(context.Background(), []*schema.Message{schema.UserMessage("q")}, state)
	require.NoError(t, err)

	require.NotEmpty(t, out)
	last := out[len(out)-1]
	assert.Equal(t, schema.System, last.Role)
	assert.Contains(t, last.Content, "maximum tool call limit")
	assert.True(t, state.ToolCallLimitReached)
}

func TestChatModelPreHandlerBackfillsToolCallID(t *testing.T) {
	state := &model.AppState{
		History: []*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{
				{ID: "call_7", Function: schema.FunctionCall{Name: "web_search", Arguments: "{}"}},
			}),
		},
	}
	handler := NewChatModelPreHandler(5)

	toolResult := &schema.Message{Role: schema.Tool, Content: "{}"}
	out, err := handler(context.Background(), []*schema.Message{toolResult}, state)
	require.NoError(t, err)

	assert.Equal(t, "call_7", out[len(out)-1].ToolCallID)
}
