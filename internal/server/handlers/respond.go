// Package handlers implements the HTTP endpoints: starting and polling
// bulk playlist analyses, single-video analysis, and playlist browsing.
package handlers

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
