package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphchat/server/internal/chatbot/model"
)

func TestRenderSystemWithSearch(t *testing.T) {
	out, err := RenderSystem(context.Background(), model.PromptConfig{AssistantName: "Nova"}, true)
	require.NoError(t, err)

	assert.Contains(t, out, "Nova")
	assert.Contains(t, out, "web_search")
}

func TestRenderSystemWithoutSearch(t *testing.T) {
	out, err := RenderSystem(context.Background(), model.PromptConfig{AssistantName: "Nova"}, false)
	require.NoError(t, err)

	assert.Contains(t, out, "Nova")
	assert.NotContains(t, out, "web_search")
}

func TestRenderSystemDefaultName(t *testing.T) {
	out, err := RenderSystem(context.Background(), model.PromptConfig{}, false)
	require.NoError(t, err)
	assert.Contains(t, out, "Assistant")
}
