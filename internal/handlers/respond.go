package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quillpress/internal/models"
	"quillpress/internal/store"
)

// maxJSONBody caps request bodies for JSON endpoints.
const maxJSONBody = 1 << 20

// envelope is the success response shape.
type envelope struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

// apiError is the body of an error response.
type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeData writes {"data": v}.
func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, envelope{Data: v})
}

// writePage writes {"data": v, "meta": {"pagination": p}}.
func writePage(w http.ResponseWriter, v any, p models.Pagination) {
	writeJSON(w, http.StatusOK, envelope{Data: v, Meta: map[string]any{"pagination": p}})
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, map[string]apiError{
		"error": {Code: code, Message: message, Details: details},
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "bad_request", message, nil)
}

func writeValidation(w http.ResponseWriter, errs fieldErrors) {
	writeError(w, http.StatusUnprocessableEntity, "validation_error", "validation failed", errs)
}

// writeStoreError maps store error kinds to HTTP responses. Unknown errors
// are logged and hidden behind a generic 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", errMessage(err), nil)
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", errMessage(err), nil)
	case errors.Is(err, store.ErrInvalidOperation):
		writeError(w, http.StatusUnprocessableEntity, "invalid_operation", errMessage(err), nil)
	default:
		slog.ErrorContext(r.Context(), op+" failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred", nil)
	}
}

// errMessage strips wrapping operation prefixes, keeping the kind and detail
// ("not found: post 1234").
func errMessage(err error) string {
	msg := err.Error()
	for _, kind := range []error{store.ErrNotFound, store.ErrConflict, store.ErrInvalidOperation} {
		if i := strings.Index(msg, kind.Error()); i >= 0 {
			return msg[i:]
		}
	}
	return msg
}

// decodeJSON reads a JSON body into v, rejecting unknown fields and
// trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON: unexpected data after object")
	}
	return nil
}

// pathID parses the {name} URL parameter as a UUID, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter. A missing value
// yields fallback.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

// queryUUID parses an optional UUID query parameter.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a UUID", name)
	}
	return &id, nil
}

// queryLimit parses ?limit= bounded to 1..max, defaulting to fallback.
func queryLimit(r *http.Request, fallback, max int) (int, error) {
	n, err := queryInt(r, "limit", fallback)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > max {
		return 0, fmt.Errorf("limit must be between 1 and %d", max)
	}
	return n, nil
}
