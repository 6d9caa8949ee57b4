package handlers

import (
	"context"
	"net/http"

	"github.com/stockpix/stockpix-backend/api/responses"
	"github.com/stockpix/stockpix-backend/pkg/config"
	"github.com/stockpix/stockpix-backend/pkg/logger"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func Healthz(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := logg.WithFields(r.Context(), map[string]any{
			"env":  cfg.App.Env,
			"path": r.URL.Path,
		})
		logg.Info(ctx, "health.check")

		status := map[string]string{"status": "ok"}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				status[name] = "down"
				healthy = false
				continue
			}
			status[name] = "up"
		}

		w.Header().Set("X-StockPix-Env", cfg.App.Env)
		if !healthy {
			status["status"] = "degraded"
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, "health degraded", status)
			return
		}
		responses.WriteSuccess(w, "healthy", status)
	}
}
