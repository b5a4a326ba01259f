package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearch(t *testing.T) {
	var received searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{
			Query: received.Query,
			Results: []Result{
				{Title: "Result one", URL: "https://one.example", Content: "content one"},
				{Title: "Result two", URL: "https://two.example", Content: "content two"},
			},
		})
	}))
	defer server.Close()

	client := NewTavilyClientWithEndpoint("test-key", server.URL)

	results, err := client.Search(context.Background(), "golang news", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Result one", results[0].Title)

	assert.Equal(t, "test-key", received.APIKey)
	assert.Equal(t, "golang news", received.Query)
	assert.Equal(t, 5, received.MaxResults)
	assert.Equal(t, "basic", received.SearchDepth)
}

func TestTavilySearchTruncatesToMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{
			Results: []Result{
				{Title: "a"}, {Title: "b"}, {Title: "c"}, {Title: "d"},
			},
		})
	}))
	defer server.Close()

	client := NewTavilyClientWithEndpoint("k", server.URL)

	results, err := client.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestTavilySearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewTavilyClientWithEndpoint("bad-key", server.URL)

	_, err := client.Search(context.Background(), "q", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTavilySearchValidation(t *testing.T) {
	client := NewTavilyClientWithEndpoint("", "http://unused.invalid")
	_, err := client.Search(context.Background(), "q", 3)
	require.Error(t, err, "missing API key must fail before any request")

	client = NewTavilyClientWithEndpoint("k", "http://unused.invalid")
	_, err = client.Search(context.Background(), "   ", 3)
	require.Error(t, err, "blank query must fail before any request")
}
