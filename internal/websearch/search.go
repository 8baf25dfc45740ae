package websearch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/local/lessonplanner/internal/source"
)

// Search queries DuckDuckGo and returns up to max ranked hits.
func (c *Client) Search(ctx context.Context, query string, max int) ([]source.WebSource, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if max <= 0 {
		max = 5
	}
	ctx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	body, err := c.get(ctx, c.searchURL+"?q="+url.QueryEscape(query))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	hits, err := parseResults(body, max)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("query", query).Int("hits", len(hits)).Msg("web search completed")
	return hits, nil
}

// parseResults walks DuckDuckGo's HTML result page.
func parseResults(body []byte, max int) ([]source.WebSource, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	var hits []source.WebSource
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(hits) >= max {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") && hasClass(n, "results_links") {
			if hit := resultFrom(n); hit.URL != "" && hit.Title != "" {
				hits = append(hits, hit)
			}
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	return hits, nil
}

func resultFrom(n *html.Node) source.WebSource {
	var hit source.WebSource
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				hit.URL = attr(n, "href")
				hit.Title = textContent(n)
			case hasClass(n, "result__snippet"):
				hit.Excerpt = textContent(n)
				return
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	hit.URL = unwrapRedirect(hit.URL)
	return hit
}

// unwrapRedirect turns "//duckduckgo.com/l/?uddg=<escaped>&rut=..." into the target URL.
func unwrapRedirect(raw string) string {
	if !strings.Contains(raw, "duckduckgo.com/l/") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}
