package httperror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error is a domain failure that maps to a client-visible status code.
// Handlers return it instead of panicking or retrying.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Write sends err as the JSON error envelope. Domain errors keep their
// status; anything else is a plain 500.
func Write(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var httpErr *Error
	if errors.As(err, &httpErr) {
		status = httpErr.Status
		message = httpErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WriteJSON sends a success payload with status 200.
func WriteJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
