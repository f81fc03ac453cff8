package memory

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/JaimeStill/recon/pkg/handlers"
	"github.com/JaimeStill/recon/pkg/routes"
)

// Handler provides HTTP endpoints for memory operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// IngestRequest is the JSON body accepted by the ingest endpoint when no
// file is uploaded.
type IngestRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "memories"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for memory endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/memories",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Summary: "List memories", Handler: h.List},
			{Method: "POST", Pattern: "/{name}/documents", Summary: "Ingest a document into a memory", Handler: h.Ingest},
			{Method: "DELETE", Pattern: "/{name}", Summary: "Delete a memory", Handler: h.Delete},
		},
	}
}

// List returns every memory with document and passage counts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.sys.Memories(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, list)
}

// Ingest adds a document to the named memory. It accepts either a
// multipart upload with a "file" part (plain text, markdown, or PDF) or a
// JSON IngestRequest.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := ValidateName(name); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var (
		cmd IngestCommand
		err error
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		cmd, err = h.fromUpload(r)
	} else {
		cmd, err = h.fromJSON(w, r)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	cmd.Memory = name

	doc, err := h.sys.Ingest(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// Delete removes a memory and everything ingested into it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("name")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fromJSON(w http.ResponseWriter, r *http.Request) (IngestCommand, error) {
	var req IngestRequest
	body := http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return IngestCommand{}, ErrFileTooLarge
		}
		return IngestCommand{}, ErrInvalidFile
	}
	if strings.TrimSpace(req.Text) == "" {
		return IngestCommand{}, ErrEmptyDocument
	}

	return IngestCommand{
		Source:      req.Source,
		ContentType: "text/plain",
		Text:        req.Text,
	}, nil
}

func (h *Handler) fromUpload(r *http.Request) (IngestCommand, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return IngestCommand{}, ErrFileTooLarge
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return IngestCommand{}, ErrInvalidFile
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		return IngestCommand{}, ErrInvalidFile
	}
	if int64(len(data)) > h.maxUploadSize {
		return IngestCommand{}, ErrFileTooLarge
	}

	source := r.FormValue("source")
	if source == "" {
		source = filepath.Base(header.Filename)
	}

	return FileCommand(source, header.Header.Get("Content-Type"), data)
}

// FileCommand builds an IngestCommand from raw file bytes. PDFs are
// extracted page by page; text and JSON must be valid UTF-8.
func FileCommand(source, contentType string, data []byte) (IngestCommand, error) {
	contentType = detectContentType(contentType, data)
	cmd := IngestCommand{Source: source, ContentType: contentType}

	switch {
	case contentType == "application/pdf":
		text, pages, err := ExtractPDF(data)
		if err != nil {
			return IngestCommand{}, err
		}
		cmd.Text = text
		cmd.PageCount = &pages
	case strings.HasPrefix(contentType, "text/"), contentType == "application/json":
		if !utf8.Valid(data) {
			return IngestCommand{}, ErrInvalidFile
		}
		cmd.Text = string(data)
	default:
		return IngestCommand{}, ErrInvalidFile
	}

	if strings.TrimSpace(cmd.Text) == "" {
		return IngestCommand{}, ErrEmptyDocument
	}
	return cmd, nil
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		if mediaType, _, err := mime.ParseMediaType(header); err == nil {
			return mediaType
		}
	}
	mediaType, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mediaType
}
