package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultUserAgent = "Mozilla/5.0"
	defaultSearchURL = "https://html.duckduckgo.com/html/"
	maxBodyBytes     = 2 << 20
)

// Options configure a Client. Zero values take the defaults.
type Options struct {
	SearchURL     string
	UserAgent     string
	FetchTimeout  time.Duration
	SearchTimeout time.Duration
	MaxChars      int
	HTTPClient    *http.Client
	// Breaker defaults to a per-client breaker with a 30s base and 5m max cooldown.
	Breaker *Breaker
}

// Client searches DuckDuckGo's HTML endpoint and fetches result pages as plain text.
type Client struct {
	http          *http.Client
	searchURL     string
	userAgent     string
	fetchTimeout  time.Duration
	searchTimeout time.Duration
	maxChars      int
	breaker       *Breaker
}

func New(opts Options) *Client {
	c := &Client{
		http:          opts.HTTPClient,
		searchURL:     opts.SearchURL,
		userAgent:     opts.UserAgent,
		fetchTimeout:  opts.FetchTimeout,
		searchTimeout: opts.SearchTimeout,
		maxChars:      opts.MaxChars,
		breaker:       opts.Breaker,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.searchURL == "" {
		c.searchURL = defaultSearchURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.fetchTimeout <= 0 {
		c.fetchTimeout = 15 * time.Second
	}
	if c.searchTimeout <= 0 {
		c.searchTimeout = 30 * time.Second
	}
	if c.maxChars <= 0 {
		c.maxChars = 20000
	}
	if c.breaker == nil {
		c.breaker = NewBreaker(30*time.Second, 5*time.Minute)
	}
	return c
}

// get performs a GET and returns at most maxBodyBytes of the body. Hosts that keep
// failing are skipped with ErrCircuitOpen until their cooldown ends.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	host := hostOf(url)
	if !c.breaker.Allow(host) {
		return nil, fmt.Errorf("%s: %w", host, ErrCircuitOpen)
	}
	body, err := c.do(ctx, url)
	switch {
	case err == nil:
		c.breaker.Success(host)
	case trips(err):
		c.breaker.Failure(host)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
