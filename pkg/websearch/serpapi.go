package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SerpApiProvider implements SearchProvider via the SerpAPI Google endpoint
type SerpApiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ SearchProvider = &SerpApiProvider{}

func NewSerpApiProvider(apiKey string) *SerpApiProvider {
	return &SerpApiProvider{
		apiKey:  apiKey,
		baseURL: "https://serpapi.com/search",
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type serpApiResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error,omitempty"`
}

func (p *SerpApiProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", limit))
	params.Set("api_key", p.apiKey)

	endpoint := fmt.Sprintf("%s?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var serpResp serpApiResponse
	if err := json.Unmarshal(bodyBytes, &serpResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if serpResp.Error != "" {
		return nil, fmt.Errorf("serpapi returned error: %s", serpResp.Error)
	}

	results := make([]Result, 0, limit)
	for _, r := range serpResp.OrganicResults {
		results = append(results, Result{
			Title:   r.Title,
			Link:    r.Link,
			Snippet: r.Snippet,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
