package main

import (
	"context"
	"net/http"
	"time"

	"inkwell/pkg/platform/httputil"
)

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthHandler pings every configured backing service. Any failure turns
// the response into a 503.
func healthHandler(inf infra) http.HandlerFunc {
	checks := map[string]func(context.Context) error{}
	if inf.db != nil {
		checks["postgres"] = inf.db.PingContext
	}
	if inf.redis != nil {
		checks["redis"] = inf.redis.Health
	}
	if inf.producer != nil {
		checks["kafka"] = inf.producer.Health
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
