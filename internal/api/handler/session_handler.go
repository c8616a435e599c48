package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

// SessionHandler exposes the session monitor to the shell.
type SessionHandler struct {
	monitor ports.SessionMonitor
}

func NewSessionHandler(monitor ports.SessionMonitor) *SessionHandler {
	return &SessionHandler{monitor: monitor}
}

// Status handles GET /v1/session.
//
// @Summary      Describe the held credential
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.SessionStatus
// @Router       /v1/session [get]
func (h *SessionHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.monitor.Status(c.Request().Context()))
}

// Acknowledge handles POST /v1/session/acknowledge.
//
// @Summary      Acknowledge the session-expired prompt
// @Tags         session
// @Success      204
// @Router       /v1/session/acknowledge [post]
func (h *SessionHandler) Acknowledge(c echo.Context) error {
	h.monitor.Acknowledge(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
