package agents_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/recon/internal/agents"
	"github.com/JaimeStill/recon/internal/memory"
	"github.com/JaimeStill/recon/pkg/faults"
)

func TestDocuments(t *testing.T) {
	h := newHarness(t, agents.Config{Documents: agents.Settings{Memory: "handbook"}})
	h.store.passages = []memory.Passage{
		{Text: "Section 2: leave accrues monthly.", Score: 0.92, Source: "handbook.pdf"},
		{Text: "Section 5: carryover is capped.", Score: 0.81, Source: "handbook.pdf"},
	}
	h.model.replies = []string{"Leave accrues monthly (Section 2)."}

	question := "How does leave accrue?"
	out, err := h.registry.Run(context.Background(), agents.NameDocuments, question)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out.Text != "Leave accrues monthly (Section 2)." {
		t.Errorf("text = %q", out.Text)
	}

	if h.store.queries[0] != question || h.store.names[0][0] != "handbook" {
		t.Errorf("retrieve = %q from %v", h.store.queries[0], h.store.names[0])
	}

	call := h.model.calls[0]
	wantContext := "Section 2: leave accrues monthly.\n\nSection 5: carryover is capped."
	if !strings.HasSuffix(call.Instructions, wantContext) {
		t.Errorf("instructions = %q", call.Instructions)
	}
	if len(call.Turns) != 1 || call.Turns[0].Content != question {
		t.Errorf("turns = %+v", call.Turns)
	}

	wantSteps := []string{"retrieve_pdf_content", "generate_pdf_response"}
	if tr := h.trace(t); !slices.Equal(tr.Steps, wantSteps) {
		t.Errorf("steps = %v, want %v", tr.Steps, wantSteps)
	}
}

func TestDocumentsProviderFailure(t *testing.T) {
	h := newHarness(t, agents.Config{})
	h.model.err = errors.New("503 from upstream")

	_, err := h.registry.Run(context.Background(), agents.NameDocuments, "anything")
	if !errors.Is(err, faults.ErrProvider) {
		t.Fatalf("err = %v", err)
	}
	if agents.MapHTTPStatus(err) != 502 {
		t.Errorf("status = %d", agents.MapHTTPStatus(err))
	}
	if tr := h.trace(t); tr.FailedStep != agents.StepGeneratePDFResponse {
		t.Errorf("failed step = %s", tr.FailedStep)
	}
}
