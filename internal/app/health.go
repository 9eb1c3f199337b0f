package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpguard/internal/pkg/goerror"
	"github.com/shandysiswandi/otpguard/internal/pkg/router"
)

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (healthResponse) Message() string {
	return "service is healthy"
}

// health reports process liveness plus redis reachability when redis is
// configured. Messaging is not probed; publishers reconnect on their own.
func (a *App) health(r *router.Request) (any, error) {
	checks := map[string]string{"http": "ok"}

	if a.cacheConn != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := a.cacheConn.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "health check redis failed", "error", err)
			return nil, goerror.NewServer(err)
		}
		checks["redis"] = "ok"
	}

	return healthResponse{Status: "ok", Checks: checks}, nil
}
