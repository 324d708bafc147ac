package api

import "net/http"

// NewRouter registers the Radarr v3 API subset and returns the full handler
// chain, logging and panic recovery included.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v3/system/status", h.HandleSystemStatus)
	mux.HandleFunc("/api/v3/system/status/", h.HandleSystemStatus)

	mux.HandleFunc("/api/v3/qualityProfile", h.HandleQualityProfiles)
	mux.HandleFunc("/api/v3/qualityProfile/", h.HandleQualityProfiles)
	mux.HandleFunc("/api/v3/qualityprofile", h.HandleQualityProfiles)
	mux.HandleFunc("/api/v3/qualityprofile/", h.HandleQualityProfiles)

	mux.HandleFunc("/api/v3/rootfolder", h.HandleRootFolder)
	mux.HandleFunc("/api/v3/rootfolder/", h.HandleRootFolder)

	mux.HandleFunc("/api/v3/movie", h.HandleMovies)
	mux.HandleFunc("/api/v3/movie/", h.HandleMovies)

	mux.HandleFunc("/api/v3/command", h.HandleCommand)
	mux.HandleFunc("/api/v3/command/", h.HandleCommand)
	mux.HandleFunc("/api/v3/Command", h.HandleCommand)
	mux.HandleFunc("/api/v3/Command/", h.HandleCommand)

	mux.HandleFunc("/", h.HandleUnknown)

	return LogConnection(PanicRecovery(mux))
}
