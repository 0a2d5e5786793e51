package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-fileservice/pkg/fileservice"
)

// MaxUploadBytes caps request bodies accepted by PUT /{name}
const MaxUploadBytes = 32 << 20

// FilesHandler handles file read, write and transform endpoints
type FilesHandler struct {
	service fileservice.Service
}

func NewFilesHandler(service fileservice.Service) *FilesHandler {
	return &FilesHandler{service: service}
}

// Routes returns the router for files endpoints
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListFiles)
	r.Post("/batch", h.ProcessBatch)
	r.Get("/{name}", h.ReadFile)
	r.Put("/{name}", h.WriteFile)
	r.Delete("/{name}", h.DeleteFile)
	r.Get("/{name}/transformed", h.TransformFile)
	return r
}

// ListFilesResponse lists stored file names
type ListFilesResponse struct {
	Files []string `json:"files"`
}

// WriteFileResponse confirms a stored file
type WriteFileResponse struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// BatchRequest selects files either by name or by glob
type BatchRequest struct {
	Names []string `json:"names,omitempty"`
	Match string   `json:"match,omitempty"`
}

// BatchItem is the outcome of one batch entry
type BatchItem struct {
	Name    string                `json:"name"`
	Content string                `json:"content,omitempty"`
	Error   string                `json:"error,omitempty"`
	Kind    fileservice.ErrorKind `json:"kind,omitempty"`
}

// BatchResponse reports every item; a failed item never fails the request
type BatchResponse struct {
	BatchID   string      `json:"batch_id"`
	Results   []BatchItem `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// ListFiles lists stored files, optionally filtered by ?match=glob
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	var (
		names []string
		err   error
	)
	if pattern := r.URL.Query().Get("match"); pattern != "" {
		names, err = h.service.MatchFiles(r.Context(), pattern)
	} else {
		names, err = h.service.ListFiles(r.Context())
	}
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, ListFilesResponse{Files: names})
}

// ReadFile returns the file content as plain text
func (h *FilesHandler) ReadFile(w http.ResponseWriter, r *http.Request) {
	name := fileName(r)
	content, err := h.service.ReadFile(r.Context(), name)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.PlainText(w, r, content)
}

// WriteFile stores the request body as the file content
func (h *FilesHandler) WriteFile(w http.ResponseWriter, r *http.Request) {
	name := fileName(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			renderError(w, r, &fileservice.TooLargeError{Key: name, Actual: maxErr.Limit + 1, Limit: maxErr.Limit})
			return
		}
		renderBadRequest(w, r, "failed to read request body")
		return
	}
	if !utf8.Valid(body) {
		renderError(w, r, &fileservice.InvalidEncodingError{Key: name})
		return
	}

	if err := h.service.WriteFile(r.Context(), name, string(body)); err != nil {
		renderError(w, r, err)
		return
	}

	slog.Info("File written", "name", name, "size", len(body))
	render.JSON(w, r, WriteFileResponse{Name: name, Size: int64(len(body))})
}

// DeleteFile removes a file
func (h *FilesHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	name := fileName(r)
	if err := h.service.DeleteFile(r.Context(), name); err != nil {
		renderError(w, r, err)
		return
	}
	slog.Info("File deleted", "name", name)
	render.NoContent(w, r)
}

// TransformFile returns the file content passed through the rule pipeline
func (h *FilesHandler) TransformFile(w http.ResponseWriter, r *http.Request) {
	name := fileName(r)
	content, err := h.service.TransformFile(r.Context(), name)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.PlainText(w, r, content)
}

// ProcessBatch transforms many files at once
func (h *FilesHandler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, r, "invalid JSON body")
		return
	}
	if (len(req.Names) == 0) == (req.Match == "") {
		renderBadRequest(w, r, "exactly one of names or match is required")
		return
	}

	names := req.Names
	if req.Match != "" {
		var err error
		names, err = h.service.MatchFiles(r.Context(), req.Match)
		if err != nil {
			renderError(w, r, err)
			return
		}
	}

	batchID := uuid.New().String()
	results := h.service.ProcessBatch(r.Context(), names)

	resp := BatchResponse{
		BatchID: batchID,
		Results: make([]BatchItem, len(results)),
	}
	for i, res := range results {
		item := BatchItem{Name: res.Name}
		if res.OK() {
			item.Content = res.Content
			resp.Succeeded++
		} else {
			item.Error = res.Err.Error()
			item.Kind = fileservice.KindOf(res.Err)
			resp.Failed++
		}
		resp.Results[i] = item
	}

	slog.Info("Batch processed", "batch_id", batchID, "items", len(results), "succeeded", resp.Succeeded, "failed", resp.Failed)
	render.JSON(w, r, resp)
}

// fileName returns the decoded {name} parameter. chi matches against the raw
// path when the request carries escaped separators, so "..%2Fx" must be
// decoded before validation sees it.
func fileName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}
