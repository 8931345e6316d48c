// Package fetcher provides the rate-limited HTTP client the scrapers share
// and the JSON load/save helpers for card collection files.
package fetcher

import "context"

// Fetcher retrieves raw pages. Implementations handle rate limiting and
// retries; callers just ask for a URL.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}
