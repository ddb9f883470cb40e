package websearch

import "context"

// Result is a single hit from an external search API.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchProvider defines the contract for external web search backends
type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}
