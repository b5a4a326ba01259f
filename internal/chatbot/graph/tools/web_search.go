package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/graphchat/server/internal/search"
)

// ===================================
// Web Search Tool
// ===================================

const ToolWebSearch = "web_search"

const maxResultsCeiling = 10

// Searcher abstracts the search provider behind the tool so tests can
// substitute a fake and the provider can be swapped without touching graph code.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]search.Result, error)
}

type WebSearchInput struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

type WebSearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type WebSearchOutput struct {
	Results []WebSearchResult `json:"results"`
	Total   int               `json:"total"`
}

// NewWebSearchTool wraps the search provider as an Eino tool the response
// model can call. defaultMax bounds the result count when the model omits it.
func NewWebSearchTool(searcher Searcher, defaultMax int) tool.BaseTool {
	if defaultMax <= 0 {
		defaultMax = 3
	}
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolWebSearch,
			Desc: "Search the web for current information: news, recent events, facts the assistant may not know. Returns a list of results with title, URL, and a content snippet. Use this tool whenever the user asks about anything recent or outside your knowledge.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Web search query. Plain keywords or a short question.",
					Required: true,
				},
				"max_results": {
					Type: "number",
					Desc: fmt.Sprintf("Maximum number of results to return (default: %d, max: %d)", defaultMax, maxResultsCeiling),
				},
			}),
		},
		func(ctx context.Context, in *WebSearchInput) (*WebSearchOutput, error) {
			if in.Query == "" {
				return nil, fmt.Errorf("query is required")
			}

			max := in.MaxResults
			if max <= 0 {
				max = defaultMax
			}
			if max > maxResultsCeiling {
				max = maxResultsCeiling
			}

			hits, err := searcher.Search(ctx, in.Query, max)
			if err != nil {
				return nil, fmt.Errorf("web search failed: %w", err)
			}

			out := &WebSearchOutput{Results: make([]WebSearchResult, 0, len(hits))}
			for _, h := range hits {
				out.Results = append(out.Results, WebSearchResult{
					Title:   h.Title,
					URL:     h.URL,
					Snippet: h.Content,
				})
			}
			out.Total = len(out.Results)
			return out, nil
		},
	)
}
