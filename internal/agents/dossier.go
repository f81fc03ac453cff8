package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/recon/internal/generation"
	"github.com/JaimeStill/recon/internal/memory"
	"github.com/JaimeStill/recon/internal/prompts"
	"github.com/JaimeStill/recon/internal/search"
	"github.com/JaimeStill/recon/internal/workflow"
)

// NameDossier is the person dossier agent.
const NameDossier = "dossier"

// Dossier step ids.
const (
	StepRetrieveGuidelines  = "retrieve_guidelines"
	StepComprehensiveSearch = "comprehensive_search"
	StepAnalyzeInformation  = "analyze_information"
	StepGenerateDossier     = "generate_dossier"
)

const guidelinesQuery = "intelligence gathering guidelines dossier structure"

type facet struct {
	key     string
	heading string
	terms   string
	count   int
}

var facets = []facet{
	{"professional", "PROFESSIONAL INFORMATION", "LinkedIn professional profile career", 5},
	{"news", "NEWS AND MEDIA", "news articles press releases media mentions", 5},
	{"social", "SOCIAL MEDIA", "Twitter X social media online presence", 3},
	{"academic", "ACADEMIC/ACHIEVEMENTS", "education university degree achievements awards", 3},
	{"affiliations", "AFFILIATIONS", "company organization board member executive", 4},
	{"speaking", "SPEAKING/INTERVIEWS", "speaker conference presentation interview podcast", 3},
}

// Findings holds the comprehensive search results per facet, in facet order.
type Findings struct {
	Facets []Facet
}

// Facet is the result set of one dossier search.
type Facet struct {
	Key     string
	Heading string
	Results []search.Result
}

// Get returns the results for a facet key.
func (f Findings) Get(key string) []search.Result {
	for _, fc := range f.Facets {
		if fc.Key == key {
			return fc.Results
		}
	}
	return nil
}

// MarshalJSON renders the findings as an object keyed by facet, in facet order.
func (f Findings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fc := range f.Facets {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(fc.Key)
		results := fc.Results
		if results == nil {
			results = []search.Result{}
		}
		value, err := json.Marshal(results)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type dossier struct {
	rt       *Runtime
	settings Settings
	def      workflow.Definition
}

// NewDossier creates the person dossier agent: a guidelines lookup, six
// concurrent searches joined all-or-nothing, an analysis, and a report.
func NewDossier(rt *Runtime, settings Settings) Agent {
	a := &dossier{rt: rt, settings: settings}
	a.def = workflow.Definition{
		Name: NameDossier,
		Steps: []workflow.Step{
			{ID: StepRetrieveGuidelines, Run: retrieveStep(rt, settings.Memory, func(string) string { return guidelinesQuery })},
			{ID: StepComprehensiveSearch, Run: a.search},
			{ID: StepAnalyzeInformation, Run: a.analyze},
			{ID: StepGenerateDossier, Run: a.report},
		},
	}
	return a
}

func (a *dossier) Name() string { return NameDossier }

func (a *dossier) Description() string {
	return "Researches a person across professional, media, social, academic, and speaking sources and writes a dossier."
}

func (a *dossier) Kind() generation.Kind { return generation.KindText }

func (a *dossier) Definition() workflow.Definition { return a.def }

func (a *dossier) Run(ctx context.Context, input string) (*Output, error) {
	return execute(ctx, a.rt, a, input)
}

func (a *dossier) search(ctx context.Context, run *workflow.Run) (any, error) {
	queries := make([]search.Query, len(facets))
	for i, f := range facets {
		queries[i] = search.Query{
			Text:     run.Input + " " + f.terms,
			Provider: a.settings.SearchProvider,
			Count:    f.count,
		}
	}

	sets, err := a.rt.Search.Search(ctx, queries)
	if err != nil {
		return nil, err
	}

	findings := Findings{Facets: make([]Facet, len(facets))}
	for i, f := range facets {
		findings.Facets[i] = Facet{Key: f.key, Heading: f.heading, Results: sets[i]}
	}
	return findings, nil
}

func (a *dossier) analyze(ctx context.Context, run *workflow.Run) (any, error) {
	guidelines, err := workflow.Value[[]memory.Passage](run, StepRetrieveGuidelines)
	if err != nil {
		return nil, err
	}
	findings, err := workflow.Value[Findings](run, StepComprehensiveSearch)
	if err != nil {
		return nil, err
	}

	base, err := a.rt.Instructions.Instructions(ctx, prompts.StageDossierAnalysis)
	if err != nil {
		return nil, err
	}

	var turn strings.Builder
	fmt.Fprintf(&turn, "Analyze the following search results for %s:\n\n", run.Input)
	for _, fc := range findings.Facets {
		entries := make([]string, len(fc.Results))
		for i, r := range fc.Results {
			entries[i] = fmt.Sprintf("Source: %s\nContent: %s", r.URL, r.Content)
		}
		fmt.Fprintf(&turn, "%s:\n%s\n\n", fc.Heading, strings.Join(entries, "\n\n"))
	}
	turn.WriteString("Provide a detailed analysis of this information.")

	return a.text(ctx, base+"\n\nGuidelines:\n"+memory.Join(guidelines, "\n"), turn.String())
}

func (a *dossier) report(ctx context.Context, run *workflow.Run) (any, error) {
	analysis, err := workflow.Value[string](run, StepAnalyzeInformation)
	if err != nil {
		return nil, err
	}
	findings, err := workflow.Value[Findings](run, StepComprehensiveSearch)
	if err != nil {
		return nil, err
	}

	base, err := a.rt.Instructions.Instructions(ctx, prompts.StageDossierReport)
	if err != nil {
		return nil, err
	}

	raw, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render findings: %w", err)
	}

	turn := fmt.Sprintf(
		"Create a comprehensive dossier for %s based on this analysis:\n\n%s\n\nOriginal search results for reference:\n%s",
		run.Input, analysis, raw,
	)
	return a.text(ctx, base, turn)
}

func (a *dossier) text(ctx context.Context, instructions, turn string) (string, error) {
	result, err := a.rt.Generator.Generate(ctx, generation.Request{
		Instructions: instructions,
		Turns:        []generation.Turn{generation.User(turn)},
		Model:        a.settings.Model,
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}
