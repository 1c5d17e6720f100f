package research

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const defaultTavilyBaseURL = "https://api.tavily.com"

// ErrNoResults reports that the search backend returned zero results even
// after escalating the requested result count. Distinguishable from
// transport failures via errors.Is.
var ErrNoResults = errors.New("No results found")

// TavilyClient calls the Tavily search API. If a query yields zero results
// the client widens it by doubling the requested result count, up to
// MaxRetries attempts. Transport errors are never retried here; that policy
// belongs to the caller.
type TavilyClient struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewTavilyClient(apiKey string, maxRetries int) *TavilyClient {
	return &TavilyClient{
		APIKey:     apiKey,
		BaseURL:    defaultTavilyBaseURL,
		MaxRetries: maxRetries,
		HTTPClient: http.DefaultClient,
		Logger:     slog.Default(),
	}
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content"`
	Score      float64 `json:"score"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

// Search runs the query, escalating the result count on empty responses.
func (c *TavilyClient) Search(ctx context.Context, query string, initialResults int) ([]SearchResult, error) {
	maxResults := initialResults

	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		results, err := c.searchOnce(ctx, query, maxResults)
		if err != nil {
			return nil, fmt.Errorf("failed to perform search: %w", err)
		}

		if len(results) > 0 {
			return results, nil
		}

		c.Logger.Info("No results found, retrying with more results", "query", query, "next_max_results", maxResults*2)
		maxResults *= 2
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrNoResults, c.MaxRetries)
}

func (c *TavilyClient) searchOnce(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	payload, err := json.Marshal(tavilyRequest{
		APIKey:            c.APIKey,
		Query:             query,
		SearchDepth:       "advanced",
		MaxResults:        maxResults,
		IncludeRawContent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.Logger.Error("Search API returned non-200 status code", "status", resp.StatusCode, "body", string(bodyBytes))
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, SearchResult{
			Title:      r.Title,
			URL:        r.URL,
			Content:    r.Content,
			RawContent: r.RawContent,
			Score:      r.Score,
		})
	}
	return results, nil
}
