package traces

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/recon/pkg/handlers"
	"github.com/JaimeStill/recon/pkg/routes"
	"github.com/JaimeStill/recon/pkg/storage"
)

// ErrInvalidRunID indicates a malformed run id path value.
var ErrInvalidRunID = errors.New("invalid run id")

// Handler serves archived traces.
type Handler struct {
	store  storage.System
	logger *slog.Logger
}

// NewHandler creates a Handler reading from store.
func NewHandler(store storage.System, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger.With("handler", "traces"),
	}
}

// Routes returns the route group definition for trace endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/traces",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{agent}", Summary: "List archived runs for an agent", Handler: h.List},
			{Method: "GET", Pattern: "/{agent}/{id}", Summary: "Fetch an archived run trace", Handler: h.Get},
		},
	}
}

// List returns archived run ids for an agent.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := List(r.Context(), h.store, r.PathValue("agent"))
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, ids)
}

// Get returns one archived trace.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRunID)
		return
	}

	t, err := Load(r.Context(), h.store, r.PathValue("agent"), id)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, t)
}
