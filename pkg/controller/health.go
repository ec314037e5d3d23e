package controller

import (
	"context"
	"encoding/json"
	"linkfixer/pkg/logger"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz returns a handler that runs every check with the given timeout and
// answers 200 when all pass and 503 otherwise.
func Healthz(timeout time.Duration, checks map[string]HealthCheck) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		res := healthResponse{Status: "ok"}
		code := http.StatusOK
		for name, check := range checks {
			if res.Checks == nil {
				res.Checks = make(map[string]string, len(checks))
			}

			if err := check(ctx); err != nil {
				logger.Warn(ctx, "health check failed", zap.String("check", name), zap.Error(err))
				res.Checks[name] = err.Error()
				res.Status = "unavailable"
				code = http.StatusServiceUnavailable

				continue
			}
			res.Checks[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(res)
	})
}
