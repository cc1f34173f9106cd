// Package scrape extracts readable text content from web pages.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	requestTimeout  = 30 * time.Second
	maxResponseSize = 10 * 1024 * 1024 // 10MB
)

// Fetcher retrieves the main text content of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// ReadabilityFetcher fetches a page over HTTP and extracts article text.
type ReadabilityFetcher struct {
	client *http.Client
}

// NewReadabilityFetcher creates a fetcher with a pooled HTTP client.
func NewReadabilityFetcher() *ReadabilityFetcher {
	return &ReadabilityFetcher{
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Fetch downloads the page and returns its readable text content.
func (f *ReadabilityFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}

	limited := io.LimitReader(resp.Body, maxResponseSize)
	article, err := readability.FromReader(limited, parsed)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}
	return article.TextContent, nil
}
