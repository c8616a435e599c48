package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Context keys set by the session middleware.
const (
	CtxSubject = "subject"
	CtxRole    = "role"
)

// ctxSession extracts what the session middleware injected and fails fast
// when it did not run: a non-empty subject proves a live credential was read.
func ctxSession(c echo.Context) (subject, role string, err error) {
	subject, _ = c.Get(CtxSubject).(string)
	if subject == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	role, _ = c.Get(CtxRole).(string)
	return subject, role, nil
}
