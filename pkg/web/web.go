// Package web holds the JSON response helpers shared by every handler, so
// the track/playlist projections and the error taxonomy are written in one
// place instead of per route.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mixtape-fm/mixtape/models"
)

func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// StatusCode maps a service error onto its HTTP status. Unrecognized errors
// are treated as internal.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, models.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error writes the JSON error body for a service error.
func Error(w http.ResponseWriter, err error) {
	code := StatusCode(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		// don't leak internals
		msg = "internal server error"
	}
	ErrorMessage(w, code, msg)
}

func ErrorMessage(w http.ResponseWriter, statusCode int, msg string) {
	JSON(w, statusCode, map[string]string{"error": msg})
}
