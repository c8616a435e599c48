package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
	"github.com/omnibus/ticket-checkout/internal/core/service"
)

// SessionGuard is the pre-action credential check.
type SessionGuard interface {
	VerifyBeforeAction(ctx context.Context, label string) bool
}

// Session requires a stored, unexpired credential and injects its claims
// into the context. An expired credential raises the session prompt through
// the guard before the request is rejected.
func Session(store ports.KeyValueStore, guard SessionGuard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			token, err := store.Get(ctx, domain.KeyAuthToken)
			if errors.Is(err, ports.ErrKeyNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if err != nil {
				return err
			}

			if !guard.VerifyBeforeAction(ctx, c.Request().Method+" "+c.Path()) {
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}

			claims, err := service.ParseClaims(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("subject", claims.Subject)
			c.Set("role", claims.Rol)
			c.Set("authorities", claims.Authorities)

			return next(c)
		}
	}
}
