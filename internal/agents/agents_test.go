package agents_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/recon/internal/agents"
	"github.com/JaimeStill/recon/internal/generation"
	"github.com/JaimeStill/recon/internal/memory"
	"github.com/JaimeStill/recon/internal/search"
	"github.com/JaimeStill/recon/internal/workflow"
)

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// searchProvider answers queries by looking up the first matching substring.
type searchProvider struct {
	mu      sync.Mutex
	results map[string][]search.Result
	fail    string
	queries []search.Query
}

func (p *searchProvider) Name() string { return "fake" }

func (p *searchProvider) Search(ctx context.Context, q search.Query) ([]search.Result, error) {
	p.mu.Lock()
	p.queries = append(p.queries, q)
	p.mu.Unlock()

	if p.fail != "" && strings.Contains(q.Text, p.fail) {
		return nil, errors.New("upstream unavailable")
	}
	for key, set := range p.results {
		if strings.Contains(q.Text, key) {
			return set, nil
		}
	}
	return []search.Result{}, nil
}

func (p *searchProvider) seen() []search.Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]search.Query(nil), p.queries...)
}

type memoryStore struct {
	passages []memory.Passage
	queries  []string
	names    [][]string
}

func (s *memoryStore) Retrieve(ctx context.Context, query string, names []string, topK int) ([]memory.Passage, error) {
	s.queries = append(s.queries, query)
	s.names = append(s.names, names)
	return s.passages, nil
}

type modelProvider struct {
	replies []string
	err     error
	calls   []generation.Call
}

func (p *modelProvider) Name() string { return "fake-model" }

func (p *modelProvider) Generate(ctx context.Context, call generation.Call) (string, error) {
	p.calls = append(p.calls, call)
	if p.err != nil {
		return "", p.err
	}
	reply := p.replies[0]
	if len(p.replies) > 1 {
		p.replies = p.replies[1:]
	}
	return reply, nil
}

type countingSink struct {
	mu     sync.Mutex
	traces []*workflow.Trace
}

func (s *countingSink) Flush(ctx context.Context, t *workflow.Trace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traces = append(s.traces, t)
	return nil
}

type nopRecorder struct{}

func (nopRecorder) StepFinished(string, string, workflow.Status, time.Duration) {}
func (nopRecorder) RunFinished(string, workflow.Status)                         {}

type harness struct {
	search   *searchProvider
	store    *memoryStore
	model    *modelProvider
	sink     *countingSink
	registry *agents.Registry
}

func newHarness(t *testing.T, cfg agents.Config) *harness {
	t.Helper()

	h := &harness{
		search: &searchProvider{results: map[string][]search.Result{}},
		store:  &memoryStore{},
		model:  &modelProvider{replies: []string{"ok"}},
		sink:   &countingSink{},
	}

	agg, err := search.NewAggregator(&search.Config{Provider: "fake", MaxResults: 25}, discard(), h.search)
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}

	rt := &agents.Runtime{
		Search:    agg,
		Memory:    memory.NewRetriever(h.store, 5, discard()),
		Generator: generation.NewInvoker(h.model, "gpt-5-mini", discard()),
		Engine:    workflow.NewEngine(workflow.Options{Sink: h.sink, Recorder: nopRecorder{}}, discard()),
		Now:       func() time.Time { return fixedNow },
		Logger:    discard(),
	}

	h.registry, err = agents.New(rt, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func (h *harness) trace(t *testing.T) *workflow.Trace {
	t.Helper()
	if len(h.sink.traces) != 1 {
		t.Fatalf("teardown flushed %d traces, want 1", len(h.sink.traces))
	}
	return h.sink.traces[0]
}

func TestRegistry(t *testing.T) {
	h := newHarness(t, agents.Config{})

	infos := h.registry.List()
	want := []struct {
		name  string
		kind  generation.Kind
		steps int
	}{
		{agents.NameInitiatives, generation.KindStructured, 5},
		{agents.NameDossier, generation.KindText, 4},
		{agents.NameDocuments, generation.KindText, 2},
	}
	if len(infos) != len(want) {
		t.Fatalf("List() = %d agents", len(infos))
	}
	for i, w := range want {
		if infos[i].Name != w.name || infos[i].Kind != w.kind || len(infos[i].Steps) != w.steps {
			t.Errorf("infos[%d] = %+v", i, infos[i])
		}
	}

	if _, err := h.registry.Get("forecaster"); !errors.Is(err, agents.ErrUnknownAgent) {
		t.Errorf("Get(unknown) err = %v", err)
	}
	if _, err := h.registry.Run(context.Background(), "forecaster", "x"); !errors.Is(err, agents.ErrUnknownAgent) {
		t.Errorf("Run(unknown) err = %v", err)
	}
}

func TestRunRejectsEmptyInput(t *testing.T) {
	h := newHarness(t, agents.Config{})

	for _, input := range []string{"", "   \n\t"} {
		out, err := h.registry.Run(context.Background(), agents.NameDocuments, input)
		if !errors.Is(err, agents.ErrInvalidInput) || out != nil {
			t.Errorf("Run(%q) = %v, %v", input, out, err)
		}
	}
	if len(h.sink.traces) != 0 || len(h.store.queries) != 0 {
		t.Error("invalid input must not start a run")
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := agents.New(&agents.Runtime{}, &agents.Config{})
	if err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_DOSSIER_MODEL", "gpt-4.1")
	t.Setenv("TEST_DOCS_MEMORY", "handbook")

	cfg := agents.Config{Initiatives: agents.Settings{SearchProvider: "duckduckgo"}}
	err := cfg.Finalize(&agents.Env{
		Dossier:   agents.SettingsEnv{Model: "TEST_DOSSIER_MODEL"},
		Documents: agents.SettingsEnv{Memory: "TEST_DOCS_MEMORY"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Initiatives.Memory != "ai-intelligence-reports" || cfg.Initiatives.SearchProvider != "duckduckgo" {
		t.Errorf("initiatives = %+v", cfg.Initiatives)
	}
	if cfg.Dossier.Model != "gpt-4.1" || cfg.Dossier.Memory != "intelligence-sources" {
		t.Errorf("dossier = %+v", cfg.Dossier)
	}
	if cfg.Documents.Memory != "handbook" {
		t.Errorf("documents = %+v", cfg.Documents)
	}

	bad := agents.Config{Documents: agents.Settings{Memory: "Not A Slug"}}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected invalid memory name error")
	}

	base := agents.Config{Dossier: agents.Settings{Model: "a", Memory: "m"}}
	base.Merge(&agents.Config{Dossier: agents.Settings{Model: "b"}})
	if base.Dossier.Model != "b" || base.Dossier.Memory != "m" {
		t.Errorf("merged = %+v", base.Dossier)
	}
}
