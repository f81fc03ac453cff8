package agents

import (
	"context"
	"fmt"
	"strconv"

	"github.com/JaimeStill/recon/internal/generation"
	"github.com/JaimeStill/recon/internal/memory"
	"github.com/JaimeStill/recon/internal/prompts"
	"github.com/JaimeStill/recon/internal/search"
	"github.com/JaimeStill/recon/internal/workflow"
	"github.com/JaimeStill/recon/pkg/schema"
)

// NameInitiatives is the competitive intelligence agent.
const NameInitiatives = "initiatives"

// Initiatives step ids.
const (
	StepSearchAIActivities          = "search_ai_activities"
	StepSearchJobPostings           = "search_job_postings"
	StepSearchProductLaunches       = "search_product_launches"
	StepRetrieveIntelligenceContext = "retrieve_intelligence_context"
	StepAnalyzeFindings             = "analyze_findings"
)

// IntelligenceReport is the structured output of the initiatives agent.
// A report with UpdatesFound false is a successful answer.
type IntelligenceReport struct {
	Company         string       `json:"company"`
	LastUpdated     string       `json:"last_updated"`
	UpdatesFound    bool         `json:"updates_found"`
	ConfidenceScore float64      `json:"confidence_score"`
	Initiatives     []Initiative `json:"initiatives"`
}

// Initiative is one AI-related development attributed to the company.
type Initiative struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	SourceLink  string   `json:"source_link"`
	KeyPhrases  []string `json:"key_phrases"`
}

// IntelligenceSchema declares IntelligenceReport for constrained
// generation and local validation.
func IntelligenceSchema() *schema.Schema {
	initiative := schema.Object(
		schema.Required("title", schema.String()),
		schema.Required("description", schema.String()),
		schema.Required("date", schema.String()),
		schema.Required("source_link", schema.String()),
		schema.Required("key_phrases", schema.Array(schema.String())),
	)

	return schema.Object(
		schema.Required("company", schema.String()),
		schema.Required("last_updated", schema.String()),
		schema.Required("updates_found", schema.Boolean()),
		schema.Required("confidence_score", schema.Number().Describe("0 to 1, weighted by source credibility")),
		schema.Required("initiatives", schema.Array(initiative)),
	).Named("CompetitiveIntelligence")
}

type initiatives struct {
	rt       *Runtime
	settings Settings
	def      workflow.Definition
}

// NewInitiatives creates the competitive intelligence agent: three web
// searches, one memory lookup, and a schema-constrained analysis.
func NewInitiatives(rt *Runtime, settings Settings) Agent {
	a := &initiatives{rt: rt, settings: settings}
	provider := settings.SearchProvider

	a.def = workflow.Definition{
		Name: NameInitiatives,
		Steps: []workflow.Step{
			{ID: StepSearchAIActivities, Run: searchStep(rt, provider, 10, activitiesQuery)},
			{ID: StepSearchJobPostings, Run: searchStep(rt, provider, 5, jobsQuery)},
			{ID: StepSearchProductLaunches, Run: searchStep(rt, provider, 8, a.launchesQuery)},
			{ID: StepRetrieveIntelligenceContext, Run: retrieveStep(rt, settings.Memory, contextQuery)},
			{ID: StepAnalyzeFindings, Run: a.analyze},
		},
	}
	return a
}

func (a *initiatives) Name() string { return NameInitiatives }

func (a *initiatives) Description() string {
	return "Tracks a company's recent AI initiatives and returns a scored intelligence report."
}

func (a *initiatives) Kind() generation.Kind { return generation.KindStructured }

func (a *initiatives) Definition() workflow.Definition { return a.def }

func (a *initiatives) Run(ctx context.Context, input string) (*Output, error) {
	return execute(ctx, a.rt, a, input)
}

func activitiesQuery(input string) string {
	return input + " artificial intelligence machine learning generative AI research team investment partnership acquisition" +
		" site:techcrunch.com OR site:venturebeat.com OR site:reuters.com OR site:bloomberg.com OR site:prnewswire.com"
}

func jobsQuery(input string) string {
	return input + ` "AI engineer" "machine learning" "head of AI" "AI research" "artificial intelligence" hiring jobs` +
		" site:linkedin.com OR site:glassdoor.com OR site:indeed.com"
}

func (a *initiatives) launchesQuery(input string) string {
	return input + ` "AI product" "AI feature" "generative AI" "machine learning model" launch announcement ` +
		strconv.Itoa(a.rt.Now().Year())
}

func contextQuery(input string) string {
	return input + " AI competitive intelligence analysis trends patterns"
}

func (a *initiatives) analyze(ctx context.Context, run *workflow.Run) (any, error) {
	var sets [][]search.Result
	for _, id := range []string{StepSearchAIActivities, StepSearchJobPostings, StepSearchProductLaunches} {
		set, err := workflow.Value[[]search.Result](run, id)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	passages, err := workflow.Value[[]memory.Passage](run, StepRetrieveIntelligenceContext)
	if err != nil {
		return nil, err
	}

	base, err := a.rt.Instructions.Instructions(ctx, prompts.StageInitiativesAnalysis)
	if err != nil {
		return nil, err
	}

	instructions := fmt.Sprintf(
		"%s\n\nContext from previous intelligence reports:\n%s\n\nCurrent date: %s",
		base,
		memory.Join(passages, "\n"),
		a.rt.Now().Format("2006-01-02"),
	)

	turn := fmt.Sprintf(
		"Analyze these search results for %s and extract AI-related competitive intelligence. Search results: %s",
		run.Input,
		search.Indent(search.Flatten(sets...)),
	)

	result, err := a.rt.Generator.Generate(ctx, generation.Request{
		Instructions: instructions,
		Turns:        []generation.Turn{generation.User(turn)},
		Schema:       IntelligenceSchema(),
		Model:        a.settings.Model,
	})
	if err != nil {
		return nil, err
	}

	return generation.Decode[IntelligenceReport](result)
}
