package http

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes body as JSON with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteSuccess writes {"success": true, ...fields}
func WriteSuccess(w http.ResponseWriter, statusCode int, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	WriteJSON(w, statusCode, body)
}
