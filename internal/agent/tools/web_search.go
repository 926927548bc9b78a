package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/planweave/planweave/internal/agent"
	"github.com/planweave/planweave/internal/domain"
)

// WebSearch queries a SerpAPI-compatible search endpoint and returns the top
// organic results. The request context carries the sandbox deadline.
type WebSearch struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewWebSearch(apiKey, baseURL string) *WebSearch {
	return &WebSearch{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (t *WebSearch) Name() string { return "web_search" }

func (t *WebSearch) Description() string {
	return "Search the web and return the top results (title, link, snippet)."
}

// SearchResult is one entry of a web search.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

func (t *WebSearch) Invoke(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("tools.WebSearch.Invoke: query is required: %w", domain.ErrValidation)
	}
	if t.apiKey == "" {
		return nil, fmt.Errorf("tools.WebSearch.Invoke: search API key is not configured")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", t.apiKey)
	params.Set("num", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("tools.WebSearch.Invoke: build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tools.WebSearch.Invoke: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tools.WebSearch.Invoke: search endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		OrganicResults []SearchResult `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("tools.WebSearch.Invoke: decode response: %w", err)
	}

	results := body.OrganicResults
	if len(results) > 5 {
		results = results[:5]
	}

	return &agent.ToolResult{Output: map[string]any{"results": results}}, nil
}
