package websearch

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	minParagraphChars = 30
	minPageChars      = 100
)

// Fetch downloads url and returns its readable text, capped at the client's MaxChars.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	return ExtractText(body, c.maxChars), nil
}

// ExtractText prefers the first <article>; otherwise it joins <p> blocks of at least 30
// characters with blank lines. Pages yielding under 100 characters fall back to the title
// and meta description.
func ExtractText(body []byte, maxChars int) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var text string
	if article := find(doc, func(n *html.Node) bool { return n.Data == "article" }); article != nil {
		text = blockText(article)
	} else {
		var paras []string
		walkElements(doc, func(n *html.Node) bool {
			if n.Data != "p" {
				return true
			}
			if t := textContent(n); utf8.RuneCountInString(t) >= minParagraphChars {
				paras = append(paras, t)
			}
			return false
		})
		text = strings.Join(paras, "\n\n")
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < minPageChars {
		text = strings.TrimSpace(pageTitle(doc) + "\n" + metaDescription(doc))
	}
	if maxChars > 0 {
		if r := []rune(text); len(r) > maxChars {
			text = string(r[:maxChars])
		}
	}
	return text
}

func pageTitle(doc *html.Node) string {
	if t := find(doc, func(n *html.Node) bool { return n.Data == "title" }); t != nil {
		return textContent(t)
	}
	return ""
}

func metaDescription(doc *html.Node) string {
	byName := find(doc, func(n *html.Node) bool {
		return n.Data == "meta" && strings.EqualFold(attr(n, "name"), "description")
	})
	if byName == nil {
		byName = find(doc, func(n *html.Node) bool {
			return n.Data == "meta" && attr(n, "property") == "og:description"
		})
	}
	if byName == nil {
		return ""
	}
	return strings.TrimSpace(attr(byName, "content"))
}

// blockText renders a subtree with one line per text node, skipping scripts and styles.
func blockText(n *html.Node) string {
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "svg":
				return
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return strings.Join(lines, "\n")
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// walkElements visits element nodes depth-first; returning false skips the children.
func walkElements(n *html.Node, visit func(*html.Node) bool) {
	if n.Type == html.ElementNode && !visit(n) {
		return
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		walkElements(ch, visit)
	}
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walkElements(n, func(el *html.Node) bool {
		if found != nil {
			return false
		}
		if match(el) {
			found = el
			return false
		}
		return true
	})
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
