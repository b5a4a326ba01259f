package repo

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepoInsertionOrder(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryConversationRepository()

	require.NoError(t, r.AddMessage(ctx, "s1", schema.UserMessage("first")))
	require.NoError(t, r.AddMessage(ctx, "s1", schema.AssistantMessage("second", nil)))
	require.NoError(t, r.AddMessage(ctx, "s1", schema.UserMessage("third")))

	history, err := r.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 3)
	assert.Equal(t, "first", history.Messages[0].Content)
	assert.Equal(t, "second", history.Messages[1].Content)
	assert.Equal(t, "third", history.Messages[2].Content)
	assert.Equal(t, "s1", history.SessionID)
}

func TestMemoryRepoSessionIsolation(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryConversationRepository()

	require.NoError(t, r.AddMessage(ctx, "a", schema.UserMessage("for a")))
	require.NoError(t, r.AddMessage(ctx, "b", schema.UserMessage("for b")))

	historyA, err := r.LoadHistory(ctx, "a")
	require.NoError(t, err)
	require.Len(t, historyA.Messages, 1)
	assert.Equal(t, "for a", historyA.Messages[0].Content)

	count, err := r.GetMessageCount(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryRepoClearHistory(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryConversationRepository()

	require.NoError(t, r.AddMessage(ctx, "s1", schema.UserMessage("msg")))
	require.NoError(t, r.ClearHistory(ctx, "s1"))

	history, err := r.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history.Messages)

	count, err := r.GetMessageCount(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryRepoLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryConversationRepository()

	require.NoError(t, r.AddMessage(ctx, "s1", schema.UserMessage("original")))

	history, err := r.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	history.Messages[0] = schema.UserMessage("mutated")

	reloaded, err := r.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "original", reloaded.Messages[0].Content)
}
