package memstore

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes v as the response body. Encoding errors are dropped: the
// status line is already on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeProblem writes an ErrorResponse that has no store error behind it.
func writeProblem(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, &ErrorResponse{Error: code, Message: message})
}
