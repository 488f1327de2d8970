package handlers

import "net/http"

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Health reports process liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VersionInfo reports the build version.
func VersionInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": Version})
}
