// Package httpx provides HTTP response utilities shared by all handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// Envelope wraps every successful payload.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorBody is the uniform error shape returned on 4xx/5xx. Data carries an
// existing record when a conflict response returns it for client convenience.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON sends a success envelope with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

// Error sends the uniform error body.
func Error(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Message: message, Error: detail})
}

// ErrorWithData sends the uniform error body along with an existing record.
func ErrorWithData(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Message: message, Data: data})
}

// RespondError maps domain errors onto HTTP statuses. Conflicts return 400,
// matching the behaviour clients already depend on.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrInvalidReference),
		errors.Is(err, shared.ErrInvalidState),
		errors.Is(err, shared.ErrConflict):
		Error(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrUnauthorized):
		Error(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Error(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
