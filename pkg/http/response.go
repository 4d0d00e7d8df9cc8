package http

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Response is the standard API response envelope.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes an arbitrary JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Log-worthy encoding errors are swallowed here; the status line has
	// already been written.
	_ = json.NewEncoder(w).Encode(body)
}

// WriteSuccess writes a 200 {"success":true} response.
func WriteSuccess(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, Response{Success: true})
}

// WriteError writes a {"success":false,"error":...} response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, Response{Success: false, Error: message})
}

// WriteRateLimited writes a 429 with a Retry-After header.
func WriteRateLimited(w http.ResponseWriter, retryAfterSeconds int, message string) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	WriteError(w, http.StatusTooManyRequests, message)
}
