package handlers

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	version string
	started time.Time
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(version string, checks map[string]HealthCheck) *HealthHandlers {
	return &HealthHandlers{
		version: version,
		started: time.Now(),
		checks:  checks,
		timeout: 3 * time.Second,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Services   map[string]string `json:"services,omitempty"`
	Uptime     string            `json:"uptime"`
	Version    string            `json:"version"`
	Goroutines int               `json:"goroutines"`
}

func (h *HealthHandlers) status(state string) *HealthStatus {
	return &HealthStatus{
		Status:     state,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Version:    h.version,
		Goroutines: runtime.NumGoroutine(),
	}
}

// Liveness handles GET /health
func (h *HealthHandlers) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, h.status("healthy"))
}

// Readiness handles GET /health/ready. Every dependency is checked
// concurrently and any failure answers 503.
func (h *HealthHandlers) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, check HealthCheck) {
			defer wg.Done()
			if err := check(ctx); err != nil {
				results[i] = "unhealthy: " + err.Error()
				return
			}
			results[i] = "healthy"
		}(i, h.checks[name])
	}
	wg.Wait()

	health := h.status("healthy")
	health.Services = make(map[string]string, len(names))
	code := http.StatusOK
	for i, name := range names {
		health.Services[name] = results[i]
		if results[i] != "healthy" {
			health.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}
	return c.JSON(code, health)
}
