package generation

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/JaimeStill/recon/pkg/faults"
	"github.com/JaimeStill/recon/pkg/schema"
)

type gemini struct {
	client *genai.Client
}

// NewGemini creates a Provider backed by the Gemini API. A missing token
// is a configuration error.
func NewGemini(ctx context.Context, baseURL, token string) (Provider, error) {
	if token == "" {
		return nil, faults.Configuration("gemini generation requires an API token")
	}

	cc := &genai.ClientConfig{
		APIKey:  token,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &gemini{client: client}, nil
}

func (g *gemini) Name() string { return ProviderGemini }

func (g *gemini) Generate(ctx context.Context, call Call) (string, error) {
	contents := make([]*genai.Content, 0, len(call.Turns))
	for _, t := range call.Turns {
		var role genai.Role = genai.RoleUser
		if t.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}

	cfg := &genai.GenerateContentConfig{}
	if call.Instructions != "" {
		cfg.SystemInstruction = genai.NewContentFromText(call.Instructions, genai.RoleUser)
	}
	if call.Constraint != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = GenAISchema(call.Constraint.Schema)
	}

	resp, err := g.client.Models.GenerateContent(ctx, call.Model, contents, cfg)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("response contained no text")
	}
	return text, nil
}

// GenAISchema projects s into the Gemini response schema format.
// Optional fields become nullable and are left out of Required.
func GenAISchema(s *schema.Schema) *genai.Schema {
	out := &genai.Schema{
		Type:        genaiType(s.Kind),
		Description: s.Description,
	}

	switch s.Kind {
	case schema.KindArray:
		if s.Items != nil {
			out.Items = GenAISchema(s.Items)
		}
	case schema.KindObject:
		out.Properties = make(map[string]*genai.Schema, len(s.Fields))
		for _, f := range s.Fields {
			prop := GenAISchema(f.Schema)
			if f.Optional {
				prop.Nullable = genai.Ptr(true)
			} else {
				out.Required = append(out.Required, f.Name)
			}
			out.Properties[f.Name] = prop
			out.PropertyOrdering = append(out.PropertyOrdering, f.Name)
		}
	}

	return out
}

func genaiType(k schema.Kind) genai.Type {
	switch k {
	case schema.KindString:
		return genai.TypeString
	case schema.KindNumber:
		return genai.TypeNumber
	case schema.KindInteger:
		return genai.TypeInteger
	case schema.KindBoolean:
		return genai.TypeBoolean
	case schema.KindArray:
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}
