package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/graphchat/server/internal/chatbot/graph/tools"
	"github.com/graphchat/server/internal/chatbot/model"
)

//go:embed template/system_prompt.txt
var systemPromptTemplate string

// RenderSystem renders the per-turn system prompt via the Eino prompt
// component (Go template), which also emits prompt callbacks.
func RenderSystem(ctx context.Context, config model.PromptConfig, searchEnabled bool) (string, error) {
	name := config.AssistantName
	if name == "" {
		name = "Assistant"
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPromptTemplate),
	)
	vars := map[string]any{
		"AssistantName": name,
		"SearchEnabled": searchEnabled,
		"SearchTool":    tools.ToolWebSearch,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
