package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
	"github.com/omnibus/ticket-checkout/internal/infrastructure/presenter"
)

// PromptInbox is the queue of prompts waiting for the shell.
type PromptInbox interface {
	Prompts() []domain.Prompt
	Take(id string) (domain.Prompt, error)
	Screen() domain.Screen
}

// PromptHandler lists pending prompts and routes answers back to the
// component that raised them.
type PromptHandler struct {
	inbox     PromptInbox
	session   ports.SessionMonitor
	checkouts ports.CheckoutService
}

func NewPromptHandler(inbox PromptInbox, session ports.SessionMonitor, checkouts ports.CheckoutService) *PromptHandler {
	return &PromptHandler{inbox: inbox, session: session, checkouts: checkouts}
}

// List handles GET /v1/prompts.
//
// @Summary      Pending prompts and the requested screen
// @Tags         prompts
// @Produce      json
// @Success      200  {object}  promptsResponse
// @Router       /v1/prompts [get]
func (h *PromptHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, promptsResponse{
		Prompts: h.inbox.Prompts(),
		Screen:  string(h.inbox.Screen()),
	})
}

// Answer handles POST /v1/prompts/:prompt_id/answer.
//
// @Summary      Answer a pending prompt
// @Tags         prompts
// @Accept       json
// @Param        prompt_id  path  string               true  "Prompt id"
// @Param        body       body  answerPromptRequest  true  "Chosen action"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/prompts/{prompt_id}/answer [post]
func (h *PromptHandler) Answer(c echo.Context) error {
	var req answerPromptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	id := c.Param("prompt_id")
	p, ok := h.pending(id)
	if !ok {
		return presenter.ErrPromptNotFound
	}
	if !offers(p, req.Action) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity,
			fmt.Sprintf("prompt %s does not offer action %q", p.Kind, req.Action))
	}
	// a concurrent answer may have taken it meanwhile
	if _, err := h.inbox.Take(id); err != nil {
		return err
	}

	if err := h.route(c, p, req.Action); err != nil && !errors.Is(err, domain.ErrCaptureInFlight) {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PromptHandler) route(c echo.Context, p domain.Prompt, action string) error {
	ctx := c.Request().Context()

	if p.Kind == domain.PromptSessionExpired {
		h.session.Acknowledge(ctx)
		return nil
	}

	switch action {
	case "verify":
		_, err := h.checkouts.Verify(ctx, p.OrderID)
		return err
	case "retry_load":
		return h.checkouts.RetryLoad(ctx, p.OrderID)
	case "cancel":
		return h.checkouts.Cancel(ctx, p.OrderID)
	case string(domain.LeaveWait), string(domain.LeaveContinue), string(domain.LeaveTreatComplete):
		_, err := h.checkouts.ResolveLeave(ctx, p.OrderID, domain.LeaveChoice(action))
		return err
	}
	// acknowledge, view_tickets: informational only.
	return nil
}

func (h *PromptHandler) pending(id string) (domain.Prompt, bool) {
	for _, p := range h.inbox.Prompts() {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Prompt{}, false
}

func offers(p domain.Prompt, action string) bool {
	for _, a := range p.Actions {
		if a.Action == action {
			return true
		}
	}
	return false
}
