package agents

import (
	"context"

	"github.com/JaimeStill/recon/internal/generation"
	"github.com/JaimeStill/recon/internal/memory"
	"github.com/JaimeStill/recon/internal/prompts"
	"github.com/JaimeStill/recon/internal/workflow"
)

// NameDocuments is the document chat agent.
const NameDocuments = "documents"

// Documents step ids.
const (
	StepRetrievePDFContent  = "retrieve_pdf_content"
	StepGeneratePDFResponse = "generate_pdf_response"
)

type documents struct {
	rt       *Runtime
	settings Settings
	def      workflow.Definition
}

// NewDocuments creates the document chat agent, which answers a question
// from passages retrieved out of an ingested document memory.
func NewDocuments(rt *Runtime, settings Settings) Agent {
	a := &documents{rt: rt, settings: settings}
	a.def = workflow.Definition{
		Name: NameDocuments,
		Steps: []workflow.Step{
			{ID: StepRetrievePDFContent, Run: retrieveStep(rt, settings.Memory, func(input string) string { return input })},
			{ID: StepGeneratePDFResponse, Run: a.respond},
		},
	}
	return a
}

func (a *documents) Name() string { return NameDocuments }

func (a *documents) Description() string {
	return "Answers questions from the content of ingested documents."
}

func (a *documents) Kind() generation.Kind { return generation.KindText }

func (a *documents) Definition() workflow.Definition { return a.def }

func (a *documents) Run(ctx context.Context, input string) (*Output, error) {
	return execute(ctx, a.rt, a, input)
}

func (a *documents) respond(ctx context.Context, run *workflow.Run) (any, error) {
	passages, err := workflow.Value[[]memory.Passage](run, StepRetrievePDFContent)
	if err != nil {
		return nil, err
	}

	base, err := a.rt.Instructions.Instructions(ctx, prompts.StageDocumentChat)
	if err != nil {
		return nil, err
	}

	instructions := base +
		"\n\nUse the following context from the document to answer the user's question:\n\n" +
		memory.Join(passages, "\n\n")

	result, err := a.rt.Generator.Generate(ctx, generation.Request{
		Instructions: instructions,
		Turns:        []generation.Turn{generation.User(run.Input)},
		Model:        a.settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return result.Text, nil
}
