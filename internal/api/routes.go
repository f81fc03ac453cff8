package api

import (
	"net/http"

	"github.com/JaimeStill/recon/internal/traces"
	"github.com/JaimeStill/recon/pkg/openapi"
	"github.com/JaimeStill/recon/pkg/routes"
)

const specDescription = "Agentic research workflows over web search, document memories, and structured model output."

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime, basePath, version string) error {
	groups := []routes.Group{
		domain.Agents.Handler().Routes(),
		domain.Memory.Handler(runtime.MaxUploadSize).Routes(),
		domain.Prompts.Handler().Routes(),
	}

	if runtime.Storage != nil {
		groups = append(groups, traces.NewHandler(runtime.Storage, runtime.Logger).Routes())
	}

	endpoints := routes.Register(mux, groups...)

	spec := openapi.NewSpec("recon", version, specDescription)
	for _, e := range endpoints {
		runtime.Logger.Debug("route registered", "pattern", e.Pattern())
		if err := spec.Add(e.Method, basePath+e.Path, e.Summary, e.Tag); err != nil {
			return err
		}
	}

	h, err := spec.Handler()
	if err != nil {
		return err
	}
	mux.Handle("GET /openapi.json", h)
	return nil
}
