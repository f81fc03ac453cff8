package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/JaimeStill/recon/pkg/faults"
	"github.com/JaimeStill/recon/pkg/formatting"
)

const (
	defaultOpenAIURL = "https://api.openai.com/v1"
	cognitiveScope   = "https://cognitiveservices.azure.com/.default"
)

type chatCompletions struct {
	name      string
	client    *http.Client
	endpoint  string
	authorize func(ctx context.Context, req *http.Request) error
}

// NewOpenAI creates a Provider for the OpenAI chat completions API or any
// compatible endpoint. An empty baseURL uses the public OpenAI endpoint.
// A missing token is a configuration error.
func NewOpenAI(client *http.Client, baseURL, token string) (Provider, error) {
	if token == "" {
		return nil, faults.Configuration("openai generation requires an API token")
	}
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &chatCompletions{
		name:     ProviderOpenAI,
		client:   client,
		endpoint: strings.TrimSuffix(baseURL, "/") + "/chat/completions",
		authorize: func(ctx context.Context, req *http.Request) error {
			req.Header.Set("Authorization", "Bearer "+token)
			return nil
		},
	}, nil
}

// NewAzure creates a Provider for an Azure OpenAI deployment. When cred is
// non-nil requests carry an Entra ID bearer token; otherwise token is sent
// as the api-key header, which must then be set.
func NewAzure(client *http.Client, cfg *Config, cred azcore.TokenCredential) (Provider, error) {
	if cred == nil && cfg.Token == "" {
		return nil, faults.Configuration("azure generation requires an API key or azure_ad auth")
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimSuffix(cfg.BaseURL, "/"),
		url.PathEscape(cfg.Deployment),
		url.QueryEscape(cfg.APIVersion),
	)

	token := cfg.Token
	authorize := func(ctx context.Context, req *http.Request) error {
		req.Header.Set("api-key", token)
		return nil
	}
	if cred != nil {
		authorize = func(ctx context.Context, req *http.Request) error {
			tk, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{cognitiveScope}})
			if err != nil {
				return fmt.Errorf("acquire token: %w", err)
			}
			req.Header.Set("Authorization", "Bearer "+tk.Token)
			return nil
		}
	}

	return &chatCompletions{
		name:      ProviderAzure,
		client:    client,
		endpoint:  endpoint,
		authorize: authorize,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (p *chatCompletions) Name() string { return p.name }

func (p *chatCompletions) Generate(ctx context.Context, call Call) (string, error) {
	body, err := json.Marshal(p.request(call))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if err := p.authorize(ctx, req); err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", faults.ProviderStatus(p.name, "generate", resp.StatusCode, formatting.Truncate(string(detail), 500))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}

	msg := decoded.Choices[0].Message
	if msg.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", msg.Refusal)
	}
	return msg.Content, nil
}

func (p *chatCompletions) request(call Call) chatRequest {
	messages := make([]chatMessage, 0, len(call.Turns)+1)
	if call.Instructions != "" {
		messages = append(messages, chatMessage{Role: "system", Content: call.Instructions})
	}
	for _, t := range call.Turns {
		messages = append(messages, chatMessage{Role: string(t.Role), Content: t.Content})
	}

	req := chatRequest{Messages: messages}
	// azure routes by deployment; the model field is ignored there
	if p.name != ProviderAzure {
		req.Model = call.Model
	}
	if c := call.Constraint; c != nil {
		req.ResponseFormat = &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   c.Name,
				Schema: c.Schema.JSONSchema(),
				Strict: c.Strict,
			},
		}
	}
	return req
}
