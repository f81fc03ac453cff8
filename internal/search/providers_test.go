package search_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/recon/internal/search"
	"github.com/JaimeStill/recon/pkg/faults"
)

func TestExa(t *testing.T) {
	var got struct {
		Query      string `json:"query"`
		NumResults int    `json:"numResults"`
	}
	var key string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		key = r.Header.Get("x-api-key")
		json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"url":"https://example.com/a","title":"A","text":"body a","highlights":["one","two"]},
			{"url":"https://example.com/b","title":"B","text":"body b"}
		]}`))
	}))
	defer srv.Close()

	p := search.NewExa(srv.Client(), srv.URL+"/", "secret")

	t.Run("maps results", func(t *testing.T) {
		results, err := p.Search(context.Background(), search.Query{Text: "Acme AI", Count: 2})
		if err != nil {
			t.Fatalf("Search error: %v", err)
		}
		if key != "secret" {
			t.Errorf("x-api-key = %q, want secret", key)
		}
		if got.Query != "Acme AI" || got.NumResults != 2 {
			t.Errorf("request = %+v", got)
		}
		if len(results) != 2 {
			t.Fatalf("len = %d, want 2", len(results))
		}
		want := search.Result{URL: "https://example.com/a", Title: "A", Content: "body a", Snippet: "one two"}
		if results[0] != want {
			t.Errorf("results[0] = %+v, want %+v", results[0], want)
		}
	})

	t.Run("credential overrides token", func(t *testing.T) {
		_, err := p.Search(context.Background(), search.Query{Text: "x", Count: 1, Credential: "override"})
		if err != nil {
			t.Fatalf("Search error: %v", err)
		}
		if key != "override" {
			t.Errorf("x-api-key = %q, want override", key)
		}
	})
}

func TestExaErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	t.Run("non-200 is a provider error", func(t *testing.T) {
		p := search.NewExa(srv.Client(), srv.URL, "bad")
		_, err := p.Search(context.Background(), search.Query{Text: "x", Count: 1})

		var pe *faults.ProviderError
		if !errors.As(err, &pe) || pe.Status != http.StatusUnauthorized {
			t.Errorf("error = %v, want 401 ProviderError", err)
		}
	})

	t.Run("missing token is a configuration error", func(t *testing.T) {
		p := search.NewExa(srv.Client(), srv.URL, "")
		_, err := p.Search(context.Background(), search.Query{Text: "x", Count: 1})
		if !errors.Is(err, faults.ErrConfiguration) {
			t.Errorf("error = %v, want ErrConfiguration", err)
		}
	})
}

const duckduckgoPage = `<html><body>
<div class="results">
  <div class="result results_links results_links_deep web-result">
    <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Facme.com%2Fai&amp;rut=abc">Acme <b>AI</b> Lab</a></h2>
    <a class="result__snippet" href="#">Acme opens a research lab.</a>
  </div>
  <div class="result results_links web-result">
    <h2><a class="result__a" href="https://news.example.com/acme">Acme News</a></h2>
  </div>
  <div class="result results_links web-result">
    <h2><a class="result__a" href="https://third.example.com">Third</a></h2>
  </div>
</div>
</body></html>`

func TestDuckDuckGo(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(duckduckgoPage))
	}))
	defer srv.Close()

	p := search.NewDuckDuckGo(srv.Client(), srv.URL+"/html/")

	results, err := p.Search(context.Background(), search.Query{Text: "acme ai", Count: 2})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if query != "acme ai" {
		t.Errorf("q = %q, want acme ai", query)
	}
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2 (count limit)", len(results))
	}

	first := results[0]
	if first.URL != "https://acme.com/ai" {
		t.Errorf("URL = %q, want redirect resolved", first.URL)
	}
	if first.Title != "Acme AI Lab" {
		t.Errorf("Title = %q, want Acme AI Lab", first.Title)
	}
	if first.Snippet != "Acme opens a research lab." {
		t.Errorf("Snippet = %q", first.Snippet)
	}
	if results[1].URL != "https://news.example.com/acme" {
		t.Errorf("results[1].URL = %q", results[1].URL)
	}
}
