package prompts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/recon/internal/prompts"
	"github.com/JaimeStill/recon/pkg/pagination"
	"github.com/JaimeStill/recon/pkg/routes"
)

type mockSystem struct {
	prompts map[uuid.UUID]prompts.Prompt
	filters prompts.Filters
}

func newMockSystem(seed ...prompts.Prompt) *mockSystem {
	m := &mockSystem{prompts: map[uuid.UUID]prompts.Prompt{}}
	for _, p := range seed {
		m.prompts[p.ID] = p
	}
	return m
}

func (m *mockSystem) Handler() *prompts.Handler {
	return prompts.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func (m *mockSystem) Instructions(ctx context.Context, stage prompts.Stage) (string, error) {
	for _, p := range m.prompts {
		if p.Stage == stage && p.Active {
			return p.Instructions, nil
		}
	}
	return prompts.Default(stage)
}

func (m *mockSystem) List(_ context.Context, page pagination.PageRequest, f prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
	m.filters = f
	var data []prompts.Prompt
	for _, p := range m.prompts {
		data = append(data, p)
	}
	result := pagination.NewPageResult(data, len(data), page.Page, page.PageSize)
	return &result, nil
}

func (m *mockSystem) Find(_ context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	p, ok := m.prompts[id]
	if !ok {
		return nil, prompts.ErrNotFound
	}
	return &p, nil
}

func (m *mockSystem) Create(_ context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
	if cmd.Name == "" || cmd.Instructions == "" {
		return nil, prompts.ErrEmptyPrompt
	}
	for _, p := range m.prompts {
		if p.Name == cmd.Name {
			return nil, prompts.ErrDuplicate
		}
	}
	p := prompts.Prompt{ID: uuid.New(), Name: cmd.Name, Stage: cmd.Stage, Instructions: cmd.Instructions, Description: cmd.Description}
	m.prompts[p.ID] = p
	return &p, nil
}

func (m *mockSystem) Update(_ context.Context, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error) {
	p, ok := m.prompts[id]
	if !ok {
		return nil, prompts.ErrNotFound
	}
	p.Name, p.Stage, p.Instructions, p.Description = cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description
	m.prompts[id] = p
	return &p, nil
}

func (m *mockSystem) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.prompts[id]; !ok {
		return prompts.ErrNotFound
	}
	delete(m.prompts, id)
	return nil
}

func (m *mockSystem) Activate(_ context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	target, ok := m.prompts[id]
	if !ok {
		return nil, prompts.ErrNotFound
	}
	for k, p := range m.prompts {
		if p.Stage == target.Stage {
			p.Active = k == id
			m.prompts[k] = p
		}
	}
	p := m.prompts[id]
	return &p, nil
}

func (m *mockSystem) Deactivate(_ context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	p, ok := m.prompts[id]
	if !ok {
		return nil, prompts.ErrNotFound
	}
	p.Active = false
	m.prompts[id] = p
	return &p, nil
}

func samplePrompt() prompts.Prompt {
	return prompts.Prompt{
		ID:           uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Name:         "terse-chat",
		Stage:        prompts.StageDocumentChat,
		Instructions: "Answer in one sentence.",
		Description:  ptr("Short document answers"),
	}
}

func serve(sys *mockSystem, method, target string, body any) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())

	var r io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		r = bytes.NewReader(data)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func TestHandlerStatus(t *testing.T) {
	p := samplePrompt()

	tests := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
	}{
		{"list", "GET", "/prompts", nil, http.StatusOK},
		{"stages", "GET", "/prompts/stages", nil, http.StatusOK},
		{"stage instructions", "GET", "/prompts/stages/dossier_report", nil, http.StatusOK},
		{"unknown stage", "GET", "/prompts/stages/classify", nil, http.StatusBadRequest},
		{"find", "GET", "/prompts/" + p.ID.String(), nil, http.StatusOK},
		{"find missing", "GET", "/prompts/" + uuid.NewString(), nil, http.StatusNotFound},
		{"find bad id", "GET", "/prompts/not-a-uuid", nil, http.StatusBadRequest},
		{"create", "POST", "/prompts", map[string]any{"name": "brief", "stage": "dossier_report", "instructions": "Keep it short."}, http.StatusCreated},
		{"create bad stage", "POST", "/prompts", map[string]any{"name": "brief", "stage": "classify", "instructions": "x"}, http.StatusBadRequest},
		{"create duplicate", "POST", "/prompts", map[string]any{"name": p.Name, "stage": "document_chat", "instructions": "x"}, http.StatusConflict},
		{"create empty", "POST", "/prompts", map[string]any{"stage": "document_chat"}, http.StatusBadRequest},
		{"search", "POST", "/prompts/search", map[string]any{"page": 1, "stage": "document_chat"}, http.StatusOK},
		{"update", "PUT", "/prompts/" + p.ID.String(), map[string]any{"name": "renamed", "stage": "document_chat", "instructions": "x"}, http.StatusOK},
		{"update missing", "PUT", "/prompts/" + uuid.NewString(), map[string]any{"name": "x", "stage": "document_chat", "instructions": "x"}, http.StatusNotFound},
		{"activate", "POST", "/prompts/" + p.ID.String() + "/activate", nil, http.StatusOK},
		{"deactivate", "POST", "/prompts/" + p.ID.String() + "/deactivate", nil, http.StatusOK},
		{"delete", "DELETE", "/prompts/" + p.ID.String(), nil, http.StatusNoContent},
		{"delete missing", "DELETE", "/prompts/" + uuid.NewString(), nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newMockSystem(p), tt.method, tt.target, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestHandlerInstructionsOverride(t *testing.T) {
	p := samplePrompt()
	sys := newMockSystem(p)

	read := func() string {
		rec := serve(sys, "GET", "/prompts/stages/document_chat", nil)
		var sc prompts.StageContent
		if err := json.NewDecoder(rec.Body).Decode(&sc); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if sc.Stage != prompts.StageDocumentChat {
			t.Errorf("stage = %s", sc.Stage)
		}
		return sc.Content
	}

	fallback, _ := prompts.Default(prompts.StageDocumentChat)
	if got := read(); got != fallback {
		t.Errorf("inactive override served: %q", got)
	}

	serve(sys, "POST", "/prompts/"+p.ID.String()+"/activate", nil)
	if got := read(); got != p.Instructions {
		t.Errorf("active override = %q, want %q", got, p.Instructions)
	}

	serve(sys, "POST", "/prompts/"+p.ID.String()+"/deactivate", nil)
	if got := read(); got != fallback {
		t.Errorf("after deactivate = %q", got)
	}
}

func TestHandlerListFilters(t *testing.T) {
	sys := newMockSystem(samplePrompt())
	rec := serve(sys, "GET", "/prompts?stage=document_chat&name=terse&page_size=500", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var result pagination.PageResult[prompts.Prompt]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Total != 1 || result.PageSize != 100 {
		t.Errorf("result = %+v", result)
	}
	if sys.filters.Stage == nil || *sys.filters.Stage != prompts.StageDocumentChat {
		t.Errorf("stage filter = %v", sys.filters.Stage)
	}
}
