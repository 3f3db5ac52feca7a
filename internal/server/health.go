package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rickgao/terris/internal/registry"
	"github.com/rickgao/terris/internal/version"
)

// Pinger is a dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthConfig configures the health endpoint.
type HealthConfig struct {
	InstanceID string
	Storage    Pinger // Optional
}

// NewMux mounts the gateway and the health endpoint.
func NewMux(gw *Gateway, reg registry.Registry, healthPath string, hc HealthConfig, logger *slog.Logger) *http.ServeMux {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mount := strings.TrimSuffix(gw.cfg.WSPath, "/")
	if mount == "" {
		mux.Handle("/", gw)
	} else {
		mux.Handle(mount, gw)
		mux.Handle(mount+"/", gw)
	}
	mux.Handle(healthPath, healthHandler(gw, reg, hc, logger))
	return mux
}

// healthResponse is the /health body.
type healthResponse struct {
	Status     string         `json:"status"`
	Instance   string         `json:"instance"`
	Version    version.Info   `json:"version"`
	Components map[string]any `json:"components"`
}

func healthHandler(gw *Gateway, reg registry.Registry, hc HealthConfig, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := healthResponse{
			Status:     "healthy",
			Instance:   hc.InstanceID,
			Version:    version.Get(),
			Components: make(map[string]any),
		}

		// Check storage
		if hc.Storage != nil {
			if err := hc.Storage.Ping(ctx); err != nil {
				health.Status = "degraded"
				health.Components["storage"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["storage"] = "connected"
			}
		}

		// Check registry
		routes, err := reg.Routes(ctx)
		if err != nil {
			health.Status = "unhealthy"
			health.Components["registry"] = map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			}
		} else {
			stats := reg.Stats()
			health.Components["registry"] = map[string]any{
				"routes":    routes,
				"hits":      stats.Hits,
				"misses":    stats.Misses,
				"not_found": stats.NotFound,
				"panics":    stats.Panics,
			}
		}

		health.Components["connections"] = gw.Connections()

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(health); err != nil {
			logger.Debug("failed to write health response", "error", err)
		}
	}
}
