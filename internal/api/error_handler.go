package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/infrastructure/presenter"
	"github.com/omnibus/ticket-checkout/internal/infrastructure/queue"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrCheckoutNotFound):
		return http.StatusNotFound, "checkout not found"
	case errors.Is(err, presenter.ErrPromptNotFound):
		return http.StatusNotFound, "prompt not found"
	case errors.Is(err, domain.ErrCheckoutInProgress):
		return http.StatusConflict, "a checkout is already in progress for this seat"
	case errors.Is(err, domain.ErrCaptureInFlight):
		return http.StatusConflict, "payment capture in progress"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, queue.ErrQueueFull):
		return http.StatusServiceUnavailable, "surface event queue full, retry later"
	case errors.Is(err, domain.ErrPurchaseRegistration):
		// carries the transaction id support needs
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusBadGateway, "unexpected response from the ticketing backend"
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway, "ticketing backend unreachable"
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode, apiErr.Message
		}
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend error")
		return http.StatusBadGateway, apiErr.Message
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
