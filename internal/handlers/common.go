package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"match-backend/internal/middleware"
	"match-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxJSONBodyBytes = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondServiceError maps a service error to its HTTP status. Only
// unexpected errors are answered with 500, and those are always logged.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: services.ErrValidation.Error(), Fields: verr.Fields})
	case errors.Is(err, services.ErrValidation):
		respondError(w, services.ErrValidation.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrUnauthenticated):
		respondError(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		respondError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, "not found", http.StatusNotFound)
	case errors.Is(err, services.ErrConflict):
		respondError(w, err.Error(), http.StatusConflict)
	default:
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg(msg)
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debug().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(msg)
}

// decodeJSON reads a JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &services.ValidationError{Fields: map[string]string{"body": "is required"}}
		}
		return &services.ValidationError{Fields: map[string]string{"body": "must be a valid JSON object"}}
	}
	return nil
}

// authUserID returns the caller's ID, answering 401 when it is missing
func authUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, "unauthenticated", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

// pathID parses a positive integer URL parameter. Anything else cannot name
// an existing row, so it is answered with 404.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, name+" not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}
