package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/otpguard/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed in
// app.maintenance.endpoints, or for every route but /health when
// app.maintenance.enabled is set. Config is read per request so a hot reload
// takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			if !underMaintenance(cfg, route) {
				next.ServeHTTP(w, r)
				return
			}

			if ra := cfg.GetInt("app.maintenance.retry_after_seconds"); ra > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(ra))
			}
			writeJSON(w, errorResponse{Message: "Service is under maintenance"}, http.StatusServiceUnavailable)
		})
	}
}

func underMaintenance(cfg config.Config, route string) bool {
	if route == "/health" {
		return false
	}
	if cfg.GetBool("app.maintenance.enabled") {
		return true
	}

	for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
		if strings.TrimSpace(endpoint) == route {
			return true
		}
	}

	return false
}
