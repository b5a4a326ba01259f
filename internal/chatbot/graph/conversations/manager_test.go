package conversations

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphchat/server/internal/chatbot/repo"
)

func TestBuildModelContextShape(t *testing.T) {
	ctx := context.Background()
	mm := NewMessagesManager(repo.NewMemoryConversationRepository())

	require.NoError(t, mm.AppendUserMessage(ctx, "s1", "hello"))
	require.NoError(t, mm.SaveResponse(ctx, "s1", "hi there"))
	require.NoError(t, mm.AppendUserMessage(ctx, "s1", "how are you?"))

	msgs, err := mm.BuildModelContext(ctx, "s1", "You are a helpful assistant.")
	require.NoError(t, err)

	// System prompt first, then the persisted history in insertion order.
	require.Len(t, msgs, 4)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "You are a helpful assistant.", msgs[0].Content)
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, "hello", msgs[1].Content)
	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Equal(t, schema.User, msgs[3].Role)
	assert.Equal(t, "how are you?", msgs[3].Content)
}

func TestBuildModelContextEmptySession(t *testing.T) {
	ctx := context.Background()
	mm := NewMessagesManager(repo.NewMemoryConversationRepository())

	msgs, err := mm.BuildModelContext(ctx, "fresh", "system")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, schema.System, msgs[0].Role)
}

func TestTurnCount(t *testing.T) {
	ctx := context.Background()
	mm := NewMessagesManager(repo.NewMemoryConversationRepository())

	n, err := mm.TurnCount(ctx, "s2")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, mm.AppendUserMessage(ctx, "s2", "one"))
	require.NoError(t, mm.SaveResponse(ctx, "s2", "reply one"))
	require.NoError(t, mm.AppendUserMessage(ctx, "s2", "two"))

	n, err = mm.TurnCount(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
