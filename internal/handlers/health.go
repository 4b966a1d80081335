package handlers

import (
	"context"
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/marquee/pkg/http"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler reports the reachability of the database and cache
type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health responds 200 when every check passes, 503 otherwise
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	results := make(map[string]string, len(h.checks))

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = "down"
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			continue
		}
		results[name] = "up"
	}

	pkghttp.WriteJSON(w, code, map[string]any{
		"status": status,
		"checks": results,
	})
}
