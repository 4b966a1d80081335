package http

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the failure envelope every handler writes
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`         // Human-readable message
	Error   string `json:"error,omitempty"` // Machine-readable error code
}

// WriteError writes a JSON failure envelope with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Success: false,
		Message: message,
		Error:   errorCode,
	}

	_ = json.NewEncoder(w).Encode(resp)
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

// WriteConflict reports a duplicate resource. Clients of this API expect 400
// for duplicates, so the status is 400 and only the code says "conflict".
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "conflict", message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", message)
}

// WriteUpstreamError reports a metadata or asset host failure. Surfaced as 500.
func WriteUpstreamError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "upstream_error", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}
