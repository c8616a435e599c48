package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/infrastructure/queue"
)

// EventDispatcher is the interface the handler uses to enqueue surface events.
type EventDispatcher interface {
	Enqueue(ev domain.SurfaceEvent) error
}

// OrderLookup reports whether a checkout exists.
type OrderLookup interface {
	Get(ctx context.Context, orderID string) (*domain.CheckoutSnapshot, error)
}

// EventHandler relays what the checkout surface reports to the order's
// event loop.
type EventHandler struct {
	dispatcher EventDispatcher
	orders     OrderLookup
	now        func() time.Time
}

// NewEventHandler creates an EventHandler backed by the given dispatcher.
func NewEventHandler(dispatcher EventDispatcher, orders OrderLookup) *EventHandler {
	return &EventHandler{dispatcher: dispatcher, orders: orders, now: time.Now}
}

// Navigation handles POST /v1/checkouts/:order_id/navigation, returns 202.
//
// @Summary      Report a surface navigation
// @Tags         surface
// @Accept       json
// @Produce      json
// @Param        order_id  path      string             true  "Provider order id"
// @Param        body      body      navigationRequest  true  "Navigated URL"
// @Success      202       {object}  acceptedResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Failure      503       {object}  errorResponse
// @Router       /v1/checkouts/{order_id}/navigation [post]
func (h *EventHandler) Navigation(c echo.Context) error {
	var req navigationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	return h.enqueue(c, domain.SurfaceEvent{
		OrderID: c.Param("order_id"),
		Type:    domain.SurfaceNavigation,
		URL:     req.URL,
	})
}

// LoadError handles POST /v1/checkouts/:order_id/load-error, returns 202.
//
// @Summary      Report a surface load error
// @Tags         surface
// @Accept       json
// @Produce      json
// @Param        order_id  path      string            true  "Provider order id"
// @Param        body      body      loadErrorRequest  true  "Failed load"
// @Success      202       {object}  acceptedResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Failure      503       {object}  errorResponse
// @Router       /v1/checkouts/{order_id}/load-error [post]
func (h *EventHandler) LoadError(c echo.Context) error {
	var req loadErrorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	return h.enqueue(c, domain.SurfaceEvent{
		OrderID:     c.Param("order_id"),
		Type:        domain.SurfaceLoadError,
		URL:         req.URL,
		StatusCode:  req.StatusCode,
		Description: req.Description,
	})
}

// Message handles POST /v1/checkouts/:order_id/message, returns 202.
//
// @Summary      Relay a message posted by the injected script
// @Tags         surface
// @Accept       json
// @Produce      json
// @Param        order_id  path      string          true  "Provider order id"
// @Param        body      body      messageRequest  true  "Raw message"
// @Success      202       {object}  acceptedResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Failure      503       {object}  errorResponse
// @Router       /v1/checkouts/{order_id}/message [post]
func (h *EventHandler) Message(c echo.Context) error {
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	return h.enqueue(c, domain.SurfaceEvent{
		OrderID: c.Param("order_id"),
		Type:    domain.SurfaceMessage,
		Payload: []byte(req.Data),
	})
}

func (h *EventHandler) enqueue(c echo.Context, ev domain.SurfaceEvent) error {
	if _, err := h.orders.Get(c.Request().Context(), ev.OrderID); err != nil {
		return err
	}
	ev.ReceivedAt = h.now()
	if err := h.dispatcher.Enqueue(ev); err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "surface event queue full, retry later")
		}
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "event accepted"})
}
