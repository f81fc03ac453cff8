package generation

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/JaimeStill/recon/pkg/faults"
)

// New builds the Provider named by cfg and wraps it in an Invoker.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*Invoker, error) {
	client := &http.Client{Timeout: cfg.TimeoutDuration()}

	var (
		provider Provider
		err      error
	)

	switch cfg.Provider {
	case ProviderOpenAI:
		provider, err = NewOpenAI(client, cfg.BaseURL, cfg.Token)
	case ProviderAzure:
		var cred azcore.TokenCredential
		if cfg.AuthType == AuthAzureAD {
			if cred, err = azidentity.NewDefaultAzureCredential(nil); err != nil {
				return nil, fmt.Errorf("create azure credential: %w", err)
			}
		}
		provider, err = NewAzure(client, cfg, cred)
	case ProviderGemini:
		provider, err = NewGemini(ctx, cfg.BaseURL, cfg.Token)
	default:
		err = faults.Configuration("unknown generation provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewInvoker(provider, cfg.Model, logger), nil
}
