package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
	"github.com/omnibus/ticket-checkout/internal/infrastructure/presenter"
)

// SurfaceReader exposes the checkout surfaces the shell must render.
type SurfaceReader interface {
	Surface(orderID string) (presenter.Surface, bool)
}

// CheckoutHandler handles HTTP requests for checkout operations.
type CheckoutHandler struct {
	service  ports.CheckoutService
	surfaces SurfaceReader
}

func NewCheckoutHandler(service ports.CheckoutService, surfaces SurfaceReader) *CheckoutHandler {
	return &CheckoutHandler{service: service, surfaces: surfaces}
}

// Start handles POST /v1/checkouts.
//
// @Summary      Start a checkout for a seat
// @Tags         checkouts
// @Accept       json
// @Produce      json
// @Param        body  body      startCheckoutRequest  true  "Trip, seat and base price"
// @Success      201   {object}  startCheckoutResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/checkouts [post]
func (h *CheckoutHandler) Start(c echo.Context) error {
	if _, _, err := ctxSession(c); err != nil {
		return err
	}

	var req startCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.service.Start(c.Request().Context(), ports.StartCheckoutInput{
		TripID:     req.TripID,
		SeatNumber: req.SeatNumber,
		BasePrice:  req.BasePrice,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toStartResponse(res))
}

// Get handles GET /v1/checkouts/:order_id.
//
// @Summary      Get a checkout by order id
// @Tags         checkouts
// @Produce      json
// @Param        order_id  path      string  true  "Provider order id"
// @Success      200       {object}  checkoutResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/checkouts/{order_id} [get]
func (h *CheckoutHandler) Get(c echo.Context) error {
	snap, err := h.service.Get(c.Request().Context(), c.Param("order_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCheckoutResponse(snap))
}

// Surface handles GET /v1/checkouts/:order_id/surface.
//
// @Summary      Get the checkout surface to render
// @Tags         checkouts
// @Produce      json
// @Param        order_id  path      string  true  "Provider order id"
// @Success      200       {object}  surfaceResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/checkouts/{order_id}/surface [get]
func (h *CheckoutHandler) Surface(c echo.Context) error {
	s, ok := h.surfaces.Surface(c.Param("order_id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no open surface for this order")
	}
	return c.JSON(http.StatusOK, surfaceResponse{
		OrderID:        s.OrderID,
		URL:            s.URL,
		InjectedScript: s.InjectedScript,
		OpenedAt:       s.OpenedAt.UTC(),
	})
}

// Verify handles POST /v1/checkouts/:order_id/verify.
//
// @Summary      Re-check a pending payment
// @Tags         checkouts
// @Produce      json
// @Param        order_id  path      string  true  "Provider order id"
// @Success      200       {object}  checkoutResponse
// @Failure      404       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Router       /v1/checkouts/{order_id}/verify [post]
func (h *CheckoutHandler) Verify(c echo.Context) error {
	snap, err := h.service.Verify(c.Request().Context(), c.Param("order_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCheckoutResponse(snap))
}

// RetryLoad handles POST /v1/checkouts/:order_id/retry-load.
//
// @Summary      Reload the checkout surface after a load error
// @Tags         checkouts
// @Param        order_id  path  string  true  "Provider order id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/checkouts/{order_id}/retry-load [post]
func (h *CheckoutHandler) RetryLoad(c echo.Context) error {
	if err := h.service.RetryLoad(c.Request().Context(), c.Param("order_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestLeave handles POST /v1/checkouts/:order_id/leave.
//
// @Summary      Ask which choices apply when the user tries to leave
// @Tags         checkouts
// @Produce      json
// @Param        order_id  path      string  true  "Provider order id"
// @Success      200       {object}  leaveOptionsResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/checkouts/{order_id}/leave [post]
func (h *CheckoutHandler) RequestLeave(c echo.Context) error {
	opts, err := h.service.RequestLeave(c.Request().Context(), c.Param("order_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLeaveResponse(opts))
}

// ResolveLeave handles POST /v1/checkouts/:order_id/leave/:choice.
//
// @Summary      Apply the user's answer to the leave prompt
// @Tags         checkouts
// @Produce      json
// @Param        order_id  path      string  true  "Provider order id"
// @Param        choice    path      string  true  "wait, continue, completed or cancel"
// @Success      200       {object}  checkoutResponse
// @Failure      404       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /v1/checkouts/{order_id}/leave/{choice} [post]
func (h *CheckoutHandler) ResolveLeave(c echo.Context) error {
	choice := domain.LeaveChoice(c.Param("choice"))
	snap, err := h.service.ResolveLeave(c.Request().Context(), c.Param("order_id"), choice)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCheckoutResponse(snap))
}

// Cancel handles DELETE /v1/checkouts/:order_id.
//
// @Summary      Cancel a checkout
// @Tags         checkouts
// @Param        order_id  path  string  true  "Provider order id"
// @Success      204
// @Success      202  {object}  acceptedResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/checkouts/{order_id} [delete]
func (h *CheckoutHandler) Cancel(c echo.Context) error {
	err := h.service.Cancel(c.Request().Context(), c.Param("order_id"))
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, domain.ErrCaptureInFlight):
		return c.JSON(http.StatusAccepted, acceptedResponse{Message: "cancel deferred until the capture resolves"})
	default:
		return err
	}
}
