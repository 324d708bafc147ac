package api

import (
	"net/http"
	"runtime"

	"github.com/moonbuggy/watcher3-api-adapter/pkg/logger"
)

// LogConnection logs every inbound request before handling it.
func LogConnection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("%s: %s", r.Method, r.URL.String())
		next.ServeHTTP(w, r)
	})
}

// PanicRecovery converts handler panics into a 500 instead of dropping the
// connection.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic handling %s %s: %v", r.Method, r.URL.Path, err)

				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				logger.Debug("Stack trace: %s", buf[:n])

				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
