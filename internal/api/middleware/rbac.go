package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RBAC enforces role-based access control on the role claim or, failing
// that, on the ROLE_-prefixed authorities of the credential.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToUpper(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[strings.ToUpper(role)]; ok {
				return next(c)
			}
			authorities, _ := c.Get("authorities").([]string)
			for _, a := range authorities {
				if _, ok := allowed[strings.TrimPrefix(strings.ToUpper(a), "ROLE_")]; ok {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
