package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	errx "github.com/graphchat/server/internal/core/error"
)

const defaultEndpoint = "https://api.tavily.com/search"

// Searcher is the capability the chat graph needs from a search provider.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Result is a single web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results,omitempty"`
	SearchDepth string `json:"search_depth,omitempty"`
}

type searchResponse struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// TavilyClient implements web search against the Tavily REST API.
type TavilyClient struct {
	httpClient *resty.Client
	apiKey     string
	endpoint   string
	depth      string
}

// NewTavilyClient creates a Tavily client against the production endpoint.
func NewTavilyClient(apiKey string) *TavilyClient {
	return NewTavilyClientWithEndpoint(apiKey, defaultEndpoint)
}

// NewTavilyClientWithEndpoint creates a Tavily client against a custom
// endpoint. Used by tests to point at a local server.
func NewTavilyClientWithEndpoint(apiKey, endpoint string) *TavilyClient {
	client := resty.New().
		SetHeader("User-Agent", "graphchat/1.0").
		SetTimeout(15 * time.Second)

	return &TavilyClient{
		httpClient: client,
		apiKey:     apiKey,
		endpoint:   endpoint,
		depth:      "basic",
	}
}

// Search posts a query to Tavily and returns up to maxResults hits.
// Errors are surfaced to the caller; nothing is retried here.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, fmt.Errorf("tavily API key is missing")
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	var result searchResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(searchRequest{
			APIKey:      c.apiKey,
			Query:       query,
			MaxResults:  maxResults,
			SearchDepth: c.depth,
		}).
		SetResult(&result).
		Post(c.endpoint)

	if err != nil {
		return nil, errx.WrapSearch(fmt.Errorf("failed to query Tavily search API: %w", err))
	}

	if resp.IsError() {
		return nil, errx.WrapSearch(fmt.Errorf("Tavily search API error (status %d): %s", resp.StatusCode(), resp.String()))
	}

	if len(result.Results) > maxResults {
		result.Results = result.Results[:maxResults]
	}
	return result.Results, nil
}
