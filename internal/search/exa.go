package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JaimeStill/recon/pkg/faults"
	"github.com/JaimeStill/recon/pkg/formatting"
)

const (
	defaultExaURL   = "https://api.exa.ai"
	exaContentLimit = 2000
)

type exa struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewExa creates a provider for the Exa neural search API.
// An empty baseURL uses the public endpoint.
func NewExa(client *http.Client, baseURL, token string) Provider {
	if baseURL == "" {
		baseURL = defaultExaURL
	}
	return &exa{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
	}
}

type exaRequest struct {
	Query      string      `json:"query"`
	NumResults int         `json:"numResults"`
	Contents   exaContents `json:"contents"`
}

type exaContents struct {
	Text       exaText       `json:"text"`
	Highlights exaHighlights `json:"highlights"`
}

type exaText struct {
	MaxCharacters int `json:"maxCharacters"`
}

type exaHighlights struct {
	NumSentences int `json:"numSentences"`
}

type exaResponse struct {
	Results []struct {
		URL        string   `json:"url"`
		Title      string   `json:"title"`
		Text       string   `json:"text"`
		Highlights []string `json:"highlights"`
	} `json:"results"`
}

func (e *exa) Name() string { return ProviderExa }

func (e *exa) Search(ctx context.Context, q Query) ([]Result, error) {
	token := e.token
	if q.Credential != "" {
		token = q.Credential
	}
	if token == "" {
		return nil, faults.Configuration("exa search requires an API token")
	}

	body, err := json.Marshal(exaRequest{
		Query:      q.Text,
		NumResults: q.Count,
		Contents: exaContents{
			Text:       exaText{MaxCharacters: exaContentLimit},
			Highlights: exaHighlights{NumSentences: 3},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", token)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, faults.ProviderStatus(ProviderExa, "search", resp.StatusCode, formatting.Truncate(string(detail), 500))
	}

	var decoded exaResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]Result, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, Result{
			URL:     r.URL,
			Title:   r.Title,
			Content: r.Text,
			Snippet: strings.Join(r.Highlights, " "),
		})
	}
	return results, nil
}
