package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

// TicketHandler serves the purchase history and the device push token.
type TicketHandler struct {
	tickets ports.TicketService
	push    ports.PushTokenService
}

func NewTicketHandler(tickets ports.TicketService, push ports.PushTokenService) *TicketHandler {
	return &TicketHandler{tickets: tickets, push: push}
}

type ticketsResponse struct {
	Tickets []domain.Ticket `json:"tickets"`
}

type pushTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// History handles GET /v1/tickets.
//
// @Summary      Purchase history of the logged-in customer
// @Tags         tickets
// @Produce      json
// @Success      200  {object}  ticketsResponse
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/tickets [get]
func (h *TicketHandler) History(c echo.Context) error {
	tickets, err := h.tickets.History(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ticketsResponse{Tickets: tickets})
}

// SyncPushToken handles PUT /v1/push-token.
//
// @Summary      Store and register the device push token
// @Tags         push
// @Accept       json
// @Param        body  body  pushTokenRequest  true  "Device token"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/push-token [put]
func (h *TicketHandler) SyncPushToken(c echo.Context) error {
	var req pushTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if err := h.push.Sync(c.Request().Context(), req.Token); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearPushToken handles DELETE /v1/push-token.
//
// @Summary      Unregister the device push token
// @Tags         push
// @Success      204
// @Router       /v1/push-token [delete]
func (h *TicketHandler) ClearPushToken(c echo.Context) error {
	if err := h.push.Clear(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
