package prompts

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/recon/pkg/handlers"
	"github.com/JaimeStill/recon/pkg/pagination"
	"github.com/JaimeStill/recon/pkg/routes"
)

// Handler provides HTTP endpoints for prompt overrides.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "prompts"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for prompt endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Summary: "List prompt overrides", Handler: h.List},
			{Method: "GET", Pattern: "/stages", Summary: "List workflow stages", Handler: h.Stages},
			{Method: "GET", Pattern: "/stages/{stage}", Summary: "Resolve instructions for a stage", Handler: h.Instructions},
			{Method: "GET", Pattern: "/{id}", Summary: "Find a prompt override", Handler: h.Find},
			{Method: "POST", Pattern: "", Summary: "Create a prompt override", Handler: h.Create},
			{Method: "POST", Pattern: "/search", Summary: "Search prompt overrides", Handler: h.Search},
			{Method: "PUT", Pattern: "/{id}", Summary: "Update a prompt override", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Summary: "Delete a prompt override", Handler: h.Delete},
			{Method: "POST", Pattern: "/{id}/activate", Summary: "Activate a prompt override", Handler: h.Activate},
			{Method: "POST", Pattern: "/{id}/deactivate", Summary: "Deactivate a prompt override", Handler: h.Deactivate},
		},
	}
}

// List returns a page of prompts filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page, FiltersFromQuery(r.URL.Query()))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Stages returns the overridable stages.
func (h *Handler) Stages(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Stages())
}

// Instructions returns the effective instructions for a stage.
func (h *Handler) Instructions(w http.ResponseWriter, r *http.Request) {
	stage, err := ParseStage(r.PathValue("stage"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	text, err := h.sys.Instructions(r.Context(), stage)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, StageContent{Stage: stage, Content: text})
}

// Find returns a single prompt.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	prompt, err := h.sys.Find(r.Context(), id)
	h.respond(w, http.StatusOK, prompt, err)
}

// Create adds a prompt override. New overrides start inactive.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	prompt, err := h.sys.Create(r.Context(), cmd)
	h.respond(w, http.StatusCreated, prompt, err)
}

// Search accepts pagination and filter criteria as a JSON body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Update replaces a prompt override.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	prompt, err := h.sys.Update(r.Context(), id, cmd)
	h.respond(w, http.StatusOK, prompt, err)
}

// Delete removes a prompt override.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activate makes a prompt the active override for its stage.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	prompt, err := h.sys.Activate(r.Context(), id)
	h.respond(w, http.StatusOK, prompt, err)
}

// Deactivate returns a prompt's stage to its built-in instructions.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	prompt, err := h.sys.Deactivate(r.Context(), id)
	h.respond(w, http.StatusOK, prompt, err)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respond(w http.ResponseWriter, status int, prompt *Prompt, err error) {
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, status, prompt)
}
