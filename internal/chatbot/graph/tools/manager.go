package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// GetChatTools returns the tools available to the response model. The set is
// a single web-search tool today; registering another tool here makes it
// visible to the model and the tools node alike.
func GetChatTools(searcher Searcher, defaultMax int) []tool.BaseTool {
	return []tool.BaseTool{
		NewWebSearchTool(searcher, defaultMax),
	}
}

// GetToolInfos resolves ToolInfo for each registered tool so they can be
// bound to the chat model.
func GetToolInfos(ctx context.Context, ts []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
