package tracing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	errx "github.com/graphchat/server/internal/core/error"
)

const defaultEndpoint = "https://api.smith.langchain.com"

// Run mirrors the subset of the LangSmith run payload this service emits.
type Run struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	RunType     string         `json:"run_type"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     *time.Time     `json:"end_time,omitempty"`
	Inputs      map[string]any `json:"inputs"`
	Outputs     map[string]any `json:"outputs,omitempty"`
	SessionName string         `json:"session_name"`
	Extra       map[string]any `json:"extra,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// RunUpdate is the patch body closing out a run.
type RunUpdate struct {
	EndTime time.Time      `json:"end_time"`
	Outputs map[string]any `json:"outputs,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Client is a thin REST client for the LangSmith run-ingest API.
type Client struct {
	httpClient *resty.Client
	apiKey     string
	endpoint   string
}

func NewClient(apiKey, endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	client := resty.New().
		SetHeader("User-Agent", "graphchat/1.0").
		SetTimeout(10 * time.Second)

	return &Client{
		httpClient: client,
		apiKey:     apiKey,
		endpoint:   strings.TrimRight(endpoint, "/"),
	}
}

// CreateRun posts a new run to LangSmith.
func (c *Client) CreateRun(ctx context.Context, run *Run) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(run).
		Post(c.endpoint + "/runs")
	if err != nil {
		return errx.WrapTracing(fmt.Errorf("failed to create LangSmith run: %w", err))
	}
	if resp.IsError() {
		return errx.WrapTracing(fmt.Errorf("LangSmith run create error (status %d): %s", resp.StatusCode(), resp.String()))
	}
	return nil
}

// UpdateRun patches an existing run with outputs and an end time.
func (c *Client) UpdateRun(ctx context.Context, runID string, update *RunUpdate) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(update).
		Patch(c.endpoint + "/runs/" + runID)
	if err != nil {
		return errx.WrapTracing(fmt.Errorf("failed to update LangSmith run: %w", err))
	}
	if resp.IsError() {
		return errx.WrapTracing(fmt.Errorf("LangSmith run update error (status %d): %s", resp.StatusCode(), resp.String()))
	}
	return nil
}

// NewRunID mints an identifier accepted by the run-ingest API.
func NewRunID() string {
	return uuid.NewString()
}
