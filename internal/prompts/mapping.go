package prompts

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/recon/pkg/query"
	"github.com/JaimeStill/recon/pkg/repository"
)

var projection = query.
	NewProjection("prompts", "p").
	Field("ID", "id").
	Field("Name", "name").
	Field("Stage", "stage").
	Field("Instructions", "instructions").
	Field("Description", "description").
	Field("Active", "active")

var defaultSort = query.Sort{Field: "Name"}

// Filters contains optional filtering criteria for prompt queries.
// Nil fields are ignored. Stage and Active use exact matching.
// Name uses case-insensitive contains matching.
type Filters struct {
	Stage  *Stage  `json:"stage,omitempty"`
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		Equals("Stage", f.Stage).
		Contains("Name", f.Name).
		Equals("Active", f.Active)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("stage"); s != "" {
		stage := Stage(s)
		f.Stage = &stage
	}

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if a := values.Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Active = &v
		}
	}

	return f
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Stage,
		&p.Instructions,
		&p.Description,
		&p.Active,
	)
	return p, err
}
