package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/JaimeStill/recon/pkg/faults"
)

const defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

type duckduckgo struct {
	client   *http.Client
	endpoint string
}

// NewDuckDuckGo creates a keyless provider backed by the DuckDuckGo HTML
// interface. An empty endpoint uses the public one.
func NewDuckDuckGo(client *http.Client, endpoint string) Provider {
	if endpoint == "" {
		endpoint = defaultDuckDuckGoURL
	}
	return &duckduckgo{client: client, endpoint: endpoint}
}

func (d *duckduckgo) Name() string { return ProviderDuckDuckGo }

func (d *duckduckgo) Search(ctx context.Context, q Query) ([]Result, error) {
	target := d.endpoint + "?q=" + url.QueryEscape(q.Text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, faults.ProviderStatus(ProviderDuckDuckGo, "search", resp.StatusCode, resp.Status)
	}

	return parseResults(io.LimitReader(resp.Body, 1<<20), q.Count)
}

func parseResults(r io.Reader, limit int) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var results []Result

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") {
			if res := extractResult(n); res.URL != "" && res.Title != "" {
				results = append(results, res)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return results, nil
}

func extractResult(n *html.Node) Result {
	var res Result

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				res.URL = resolveRedirect(attr(n, "href"))
				res.Title = text(n)
			case hasClass(n, "result__snippet"):
				res.Snippet = text(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	res.Content = res.Snippet
	return res
}

// resolveRedirect unwraps DuckDuckGo's //duckduckgo.com/l/?uddg= links.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && u.Path == "/l/" {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return sb.String()
}
