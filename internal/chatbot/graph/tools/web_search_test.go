package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphchat/server/internal/search"
)

type stubSearcher struct {
	lastQuery string
	lastMax   int
	results   []search.Result
	err       error
}

func (s *stubSearcher) Search(_ context.Context, query string, maxResults int) ([]search.Result, error) {
	s.lastQuery = query
	s.lastMax = maxResults
	return s.results, s.err
}

func invoke(t *testing.T, bt tool.BaseTool, args string) (string, error) {
	t.Helper()
	inv, ok := bt.(tool.InvokableTool)
	require.True(t, ok, "web search tool must be invokable")
	return inv.InvokableRun(context.Background(), args)
}

func TestWebSearchToolInfo(t *testing.T) {
	bt := NewWebSearchTool(&stubSearcher{}, 3)

	info, err := bt.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ToolWebSearch, info.Name)
	assert.NotEmpty(t, info.Desc)
}

func TestWebSearchToolReturnsResults(t *testing.T) {
	searcher := &stubSearcher{
		results: []search.Result{
			{Title: "Title A", URL: "https://a.example", Content: "snippet a"},
			{Title: "Title B", URL: "https://b.example", Content: "snippet b"},
		},
	}
	bt := NewWebSearchTool(searcher, 3)

	raw, err := invoke(t, bt, `{"query":"go generics"}`)
	require.NoError(t, err)

	var out WebSearchOutput
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, "Title A", out.Results[0].Title)
	assert.Equal(t, "snippet b", out.Results[1].Snippet)

	assert.Equal(t, "go generics", searcher.lastQuery)
	assert.Equal(t, 3, searcher.lastMax, "default max applies when the model omits it")
}

func TestWebSearchToolClampsMaxResults(t *testing.T) {
	searcher := &stubSearcher{}
	bt := NewWebSearchTool(searcher, 3)

	_, err := invoke(t, bt, `{"query":"q","max_results":50}`)
	require.NoError(t, err)
	assert.Equal(t, maxResultsCeiling, searcher.lastMax)
}

func TestWebSearchToolRequiresQuery(t *testing.T) {
	bt := NewWebSearchTool(&stubSearcher{}, 3)

	_, err := invoke(t, bt, `{"max_results":2}`)
	require.Error(t, err)
}

func TestWebSearchToolPropagatesProviderError(t *testing.T) {
	bt := NewWebSearchTool(&stubSearcher{err: errors.New("rate limited")}, 3)

	_, err := invoke(t, bt, `{"query":"q"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
