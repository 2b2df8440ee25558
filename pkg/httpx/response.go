// Package httpx provides the shared HTTP plumbing: JSON responses, the
// middleware chain, bearer-session authentication, and per-key rate limiting.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform error payload for every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status code. Responses
// are marked non-cacheable since most of what this service returns is either
// financial data or tokens.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with a single "error" field.
func Error(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, ErrorResponse{Error: message})
}

// NoCache sets Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
