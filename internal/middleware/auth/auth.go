package auth

import (
	"net/http"
	"slices"

	"github.com/Skotchmaster/delivery_orders/internal/logging"
	"github.com/Skotchmaster/delivery_orders/internal/tokens"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	ctxClaims   = "claims"
	ctxIdentity = "identity"
)

// Bearer verifies the Authorization header and stores the caller identity
// on the context. Any failure is a 401.
func Bearer(issuer *tokens.Issuer) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ctxClaims,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (any, error) {
			return issuer.Parse(raw)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(ctxClaims).(*tokens.AccessClaims)
			if !ok {
				return
			}
			c.Set(ctxIdentity, claims.Identity())
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).With("middleware", "auth").
				Warn("auth_failed", "status", 401, "reason", "missing or invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		},
	})
}

// IdentityFrom returns the identity set by Bearer.
func IdentityFrom(c echo.Context) (tokens.Identity, bool) {
	id, ok := c.Get(ctxIdentity).(tokens.Identity)
	if !ok || id.UserID == "" {
		return tokens.Identity{}, false
	}
	return id, true
}

func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok || id.Role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			if !slices.Contains(roles, id.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
			}
			return next(c)
		}
	}
}
