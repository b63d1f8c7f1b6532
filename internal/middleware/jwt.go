package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/logger"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims are the claims issued by the identity provider.
type JWTCustomClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTOptions selects how tokens are verified. A JWKS URL takes precedence
// over the shared secret.
type JWTOptions struct {
	Secret  string
	JWKSURL string
}

// JWKS fetches and refreshes a remote key set.
func JWKS(url string) (*keyfunc.JWKS, error) {
	log := logger.WithComponent("auth")
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Str("url", url).Msg("failed to refresh JWKS")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("load jwks: %w", err)
	}
	return jwks, nil
}

// JWTMiddleware verifies bearer tokens and stores the caller on the request
// context.
func JWTMiddleware(opts JWTOptions, jwks *keyfunc.JWKS) echo.MiddlewareFunc {
	cfg := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return
			}
			ctx := common.WithActor(c.Request().Context(), common.Actor{
				ID:    claims.Subject,
				Name:  claims.Name,
				Email: claims.Email,
				Role:  claims.Role,
			})
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or missing token")
		},
	}
	if jwks != nil {
		cfg.KeyFunc = jwks.Keyfunc
	} else {
		cfg.SigningKey = []byte(opts.Secret)
	}
	return echojwt.WithConfig(cfg)
}

// RequireRole allows the request through only when the caller has one of
// roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := common.ActorFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			if !slices.Contains(roles, actor.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
