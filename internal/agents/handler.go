package agents

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/recon/pkg/handlers"
	"github.com/JaimeStill/recon/pkg/routes"
)

// RunRequest is the body of a run request.
type RunRequest struct {
	Input string `json:"input"`
}

// Handler provides HTTP endpoints for listing and running agents.
type Handler struct {
	registry *Registry
	logger   *slog.Logger
}

// NewHandler creates a Handler over registry.
func NewHandler(registry *Registry, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger.With("handler", "agents"),
	}
}

// Routes returns the route group definition for agent endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/agents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Summary: "List registered agents", Handler: h.List},
			{Method: "GET", Pattern: "/{name}", Summary: "Describe an agent", Handler: h.Find},
			{Method: "POST", Pattern: "/{name}/runs", Summary: "Run an agent", Handler: h.Run},
		},
	}
}

// List describes the available agents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.registry.List())
}

// Find describes one agent.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	a, err := h.registry.Get(r.PathValue("name"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, Describe(a))
}

// Run executes an agent synchronously and returns its output.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	out, err := h.registry.Run(r.Context(), r.PathValue("name"), req.Input)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, out)
}
