package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// APIVersion describes one mounted API version.
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"` // "active", "deprecated"
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
}

// VersionMiddleware stamps API and build versions on responses.
type VersionMiddleware struct {
	build    string
	versions map[string]APIVersion
}

func NewVersionMiddleware(build string) *VersionMiddleware {
	return &VersionMiddleware{
		build: build,
		versions: map[string]APIVersion{
			"v1": {Version: "v1", Status: "active"},
		},
	}
}

// VersionHeader adds version information to response headers
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", version)
			h.Set("X-App-Version", vm.build)
			if ver, ok := vm.versions[version]; ok && ver.Status == "deprecated" {
				h.Set("X-API-Deprecated", "true")
				if ver.SunsetDate != nil {
					h.Set("Sunset", ver.SunsetDate.UTC().Format(http.TimeFormat))
				}
			}
			return next(c)
		}
	}
}

// Deprecate marks version deprecated from now on.
func (vm *VersionMiddleware) Deprecate(version string, sunset *time.Time) {
	vm.versions[version] = APIVersion{Version: version, Status: "deprecated", SunsetDate: sunset}
}

// Versions returns the mounted versions.
func (vm *VersionMiddleware) Versions() map[string]APIVersion {
	return vm.versions
}
