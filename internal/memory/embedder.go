package memory

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/JaimeStill/recon/pkg/faults"
)

type genaiEmbedder struct {
	client     *genai.Client
	model      string
	dimensions int32
}

// NewEmbedder creates an Embedder backed by the Gemini embedding API.
func NewEmbedder(ctx context.Context, cfg *Config) (Embedder, error) {
	if cfg.Token == "" {
		return nil, faults.Configuration("memory embedding requires a token")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.Token,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &genaiEmbedder{
		client:     client,
		model:      cfg.EmbeddingModel,
		dimensions: int32(cfg.Dimensions),
	}, nil
}

func (e *genaiEmbedder) Embed(ctx context.Context, texts []string, task Task) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	dims := e.dimensions
	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType:             string(task),
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, faults.Provider("genai", "embed", err)
	}

	if len(result.Embeddings) != len(texts) {
		return nil, faults.Provider("genai", "embed",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Embeddings)))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
