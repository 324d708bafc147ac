package api

import (
	"net/http"
	"runtime"

	"github.com/moonbuggy/watcher3-api-adapter/pkg/diskspace"
	"github.com/moonbuggy/watcher3-api-adapter/pkg/radarr"
)

// Version the adapter reports to Radarr consumers. Ombi gates features on
// the major version, so this tracks a Radarr v3 release line.
const reportedVersion = "3.2.2.5080"

// HandleSystemStatus returns the static capability descriptor. It never
// touches the upstream server, so Radarr consumers can verify connectivity
// to the adapter even while Watcher3 is down.
func (h *Handler) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := radarr.SystemStatus{
		AppName:        "Radarr",
		InstanceName:   "watcher3-api-adapter",
		Version:        reportedVersion,
		IsDebug:        h.cfg.Debug,
		IsProduction:   true,
		IsAdmin:        true,
		StartupPath:    "/app",
		AppData:        "/config",
		OsName:         runtime.GOOS,
		IsLinux:        runtime.GOOS == "linux",
		IsOsx:          runtime.GOOS == "darwin",
		IsWindows:      runtime.GOOS == "windows",
		Mode:           "production",
		Branch:         "master",
		Authentication: "external",
		RuntimeName:    "go",
		RuntimeVersion: runtime.Version(),
	}

	writeJSON(w, http.StatusOK, status)
}

// HandleQualityProfiles derives Radarr quality profiles from Watcher3's
// configured profiles.
func (h *Handler) HandleQualityProfiles(w http.ResponseWriter, r *http.Request) {
	serverConfig, err := h.watcher.GetConfig(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, radarr.FromQualityProfiles(serverConfig.Quality.Profiles))
}

// HandleRootFolder reports the movie root derived from Watcher3's mover path
// along with its capacity. An unmounted root degrades to the fallback values
// rather than an error.
func (h *Handler) HandleRootFolder(w http.ResponseWriter, r *http.Request) {
	serverConfig, err := h.watcher.GetConfig(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	rootPath := radarr.RootFolderFromMoverPath(serverConfig.Postprocessing.MoverPath)
	free, total := diskspace.UsageOrFallback(rootPath)

	writeJSON(w, http.StatusOK, []radarr.RootFolder{{
		Path:       rootPath,
		Accessible: true,
		FreeSpace:  free,
		TotalSpace: total,
		ID:         1,
	}})
}

// HandleUnknown logs and rejects requests to unconfigured paths.
func (h *Handler) HandleUnknown(w http.ResponseWriter, r *http.Request) {
	writeNotFound(w)
}
