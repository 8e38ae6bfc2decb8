package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/targetdesk/pkg/logger"
)

// HealthCheckHandler answers liveness and readiness probes.
// Without checks it reports {"status":"alive"}. With checks it runs each
// one on the request context and reports {"status":"ready"}, or 503 with
// {"status":"not_ready"} on the first failure.
func HealthCheckHandler(log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "alive", http.StatusOK
		if len(checks) > 0 {
			status = "ready"
		}
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Component("httpserver"), logger.Error(err))
				status, code = "not_ready", http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
