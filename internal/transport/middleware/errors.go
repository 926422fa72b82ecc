package middleware

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// writeError responds with the same {"error": "..."} body the REST
// handlers use.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
