package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-chi/render"
	"github.com/tendant/simple-fileservice/pkg/fileservice"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error string                `json:"error"`
	Kind  fileservice.ErrorKind `json:"kind"`
}

// kindInvalidRequest marks malformed requests that never reached the service
const kindInvalidRequest fileservice.ErrorKind = "invalid_request"

// StatusFor maps an error to its HTTP status code
func StatusFor(err error) int {
	if errors.Is(err, doublestar.ErrBadPattern) {
		return http.StatusBadRequest
	}
	switch fileservice.KindOf(err) {
	case fileservice.KindNotFound:
		return http.StatusNotFound
	case fileservice.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case fileservice.KindPermissionDenied:
		return http.StatusForbidden
	case fileservice.KindInvalidEncoding:
		return http.StatusUnprocessableEntity
	case fileservice.KindDuplicateEmail:
		return http.StatusConflict
	case fileservice.KindInvalidEmail:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	kind := fileservice.KindOf(err)
	if errors.Is(err, doublestar.ErrBadPattern) {
		kind = kindInvalidRequest
	}

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "kind", kind, "error", err)
	} else {
		slog.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "kind", kind, "error", err)
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: err.Error(), Kind: kind})
}

func renderBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	slog.Warn("Bad request", "method", r.Method, "path", r.URL.Path, "error", msg)
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: msg, Kind: kindInvalidRequest})
}
