package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
	"github.com/omnibus/ticket-checkout/internal/pkg/metrics"
)

// OrderDraft is what a coordinator needs to create the remote order.
type OrderDraft struct {
	TripID     int64
	CustomerID int64
	SeatNumber int
	Price      domain.PriceBreakdown
}

// CheckoutHooks are notified when a checkout settles. All are optional.
type CheckoutHooks struct {
	OnConfirmed func(ctx context.Context, receipt domain.PurchaseReceipt)
	OnCancelled func(ctx context.Context, orderID string)
	OnError     func(ctx context.Context, orderID string, err error)
}

// CoordinatorDeps groups the collaborators of a CheckoutCoordinator.
type CoordinatorDeps struct {
	Backend    ports.BackendAPI
	Surface    ports.CheckoutSurface
	Presenter  ports.Presenter
	Repo       ports.CheckoutRepository
	Guard      ports.PurchaseGuard
	Classifier *URLClassifier
	Script     string
}

// CheckoutCoordinator drives one hosted checkout from order creation to a
// registered purchase. State only changes through transition; side effects
// that leave the process run after the lock is released.
type CheckoutCoordinator struct {
	deps  CoordinatorDeps
	hooks CheckoutHooks
	log   zerolog.Logger
	now   func() time.Time

	mu              sync.Mutex
	state           domain.CheckoutState
	order           domain.PaymentOrder
	processed       *domain.ProcessedEventSet
	registered      map[string]struct{}
	captureAttempts int
	cancelRequested bool
	cancelNotified  bool
	lastErr         error
	later           []func(context.Context)
}

func NewCheckoutCoordinator(deps CoordinatorDeps, hooks CheckoutHooks, log zerolog.Logger) *CheckoutCoordinator {
	if deps.Classifier == nil {
		deps.Classifier = NewURLClassifier(DefaultPatternTable())
	}
	return &CheckoutCoordinator{
		deps:       deps,
		hooks:      hooks,
		log:        log.With().Str("component", "checkout").Logger(),
		now:        time.Now,
		state:      domain.CheckoutNone,
		processed:  domain.NewProcessedEventSet(),
		registered: make(map[string]struct{}),
	}
}

// --- Lifecycle ---

// CreateOrder asks the backend for a provider order worth the final price and
// extracts its approval link. No surface is opened here.
func (c *CheckoutCoordinator) CreateOrder(ctx context.Context, draft OrderDraft) (*domain.PaymentOrder, error) {
	c.mu.Lock()
	if c.state != domain.CheckoutNone {
		st := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("create order in state %s: %w", st, domain.ErrInvalidTransition)
	}
	c.order = domain.PaymentOrder{
		TripID:     draft.TripID,
		CustomerID: draft.CustomerID,
		SeatNumber: draft.SeatNumber,
		Price:      draft.Price,
	}
	c.mu.Unlock()

	created, err := c.deps.Backend.CreateOrder(ctx, draft.Price.FinalPrice)
	if err == nil && created.ID == "" {
		err = fmt.Errorf("order response without id: %w", domain.ErrConfiguration)
	}
	var approvalURL string
	if err == nil {
		var ok bool
		if approvalURL, ok = created.ApprovalLink(); !ok {
			err = fmt.Errorf("order %s has no %q link: %w", created.ID, domain.RelApprove, domain.ErrConfiguration)
		}
	}

	c.mu.Lock()
	if err != nil {
		c.lastErr = err
		c.transition(domain.CheckoutError, "create order failed")
		c.raise(c.errorPrompt(err))
		c.notifyError(err)
		c.mu.Unlock()
		c.flush(ctx)
		c.log.Error().Err(err).Int64("trip_id", draft.TripID).Msg("create order failed")
		return nil, err
	}

	now := c.now()
	c.order.OrderID = created.ID
	c.order.ApprovalURL = approvalURL
	c.order.Status = domain.OrderCreated
	c.order.CreatedAt = now
	c.order.UpdatedAt = now
	c.transition(domain.CheckoutOrderCreated, "order created")
	c.saveOrder()
	order := c.order
	c.mu.Unlock()
	c.flush(ctx)

	metrics.CheckoutsStartedTotal.WithLabelValues(fmt.Sprint(draft.Price.HasDiscount)).Inc()
	c.log.Info().
		Str("order_id", order.OrderID).
		Int64("trip_id", order.TripID).
		Int("seat", order.SeatNumber).
		Float64("amount", order.Price.FinalPrice).
		Msg("payment order created")
	return &order, nil
}

// OpenCheckout hands the approval URL to the surface and starts waiting for
// the provider's redirects.
func (c *CheckoutCoordinator) OpenCheckout(ctx context.Context) error {
	c.mu.Lock()
	if err := c.transition(domain.CheckoutAwaitingApproval, "surface opened"); err != nil {
		c.mu.Unlock()
		return err
	}
	c.setOrderStatus(domain.OrderPendingApproval)
	orderID, url := c.order.OrderID, c.order.ApprovalURL
	c.mu.Unlock()
	c.flush(ctx)

	if err := c.deps.Surface.Open(ctx, orderID, url, c.deps.Script); err != nil {
		c.mu.Lock()
		c.lastErr = fmt.Errorf("open checkout surface: %w", err)
		c.transition(domain.CheckoutError, "surface failed to open")
		c.setOrderStatus(domain.OrderFailed)
		c.raise(c.errorPrompt(c.lastErr))
		c.notifyError(c.lastErr)
		err = c.lastErr
		c.mu.Unlock()
		c.flush(ctx)
		return err
	}
	c.log.Info().Str("order_id", orderID).Msg("checkout surface opened")
	return nil
}

// --- Surface events ---

// HandleEvent dispatches one surface event.
func (c *CheckoutCoordinator) HandleEvent(ctx context.Context, ev domain.SurfaceEvent) {
	switch ev.Type {
	case domain.SurfaceNavigation:
		c.HandleNavigation(ctx, ev.URL)
	case domain.SurfaceLoadError:
		c.HandleLoadError(ctx, ev.StatusCode, ev.URL, ev.Description)
	case domain.SurfaceMessage:
		c.HandleMessage(ctx, ev.Payload)
	default:
		c.log.Warn().Str("type", string(ev.Type)).Msg("unknown surface event")
	}
}

// HandleNavigation classifies url once and acts on the verdict.
func (c *CheckoutCoordinator) HandleNavigation(ctx context.Context, url string) {
	c.mu.Lock()
	if !c.acceptLocked(url) {
		c.mu.Unlock()
		return
	}
	verdict := c.deps.Classifier.Classify(url)
	metrics.NavigationsClassifiedTotal.WithLabelValues(string(verdict.Kind)).Inc()

	capture := false
	switch verdict.Kind {
	case NavSuccess:
		c.log.Info().Str("order_id", c.order.OrderID).Str("pattern", verdict.Pattern).Msg("success navigation detected")
		capture = c.beginCaptureLocked("success navigation") == nil
	case NavCancel:
		c.log.Info().Str("order_id", c.order.OrderID).Str("pattern", verdict.Pattern).Msg("cancel navigation detected")
		c.cancelLocked("provider cancel")
	default:
		c.log.Debug().Str("order_id", c.order.OrderID).Str("url", url).Msg("intermediate navigation")
	}
	c.mu.Unlock()
	c.flush(ctx)

	if capture {
		c.capture(ctx)
	}
}

// HandleLoadError treats a failed load of the app's return route as success;
// any other load error asks the user to retry or cancel.
func (c *CheckoutCoordinator) HandleLoadError(ctx context.Context, status int, url, description string) {
	c.mu.Lock()
	if !c.deps.Classifier.IsDisguisedSuccess(url) {
		if c.state == domain.CheckoutAwaitingApproval {
			c.log.Warn().Str("order_id", c.order.OrderID).Int("status", status).Str("description", description).Msg("checkout surface load error")
			c.raise(domain.Prompt{
				Kind:    domain.PromptLoadError,
				Title:   "Connection error",
				Message: "The payment page could not be loaded. Check your connection and try again.",
				Actions: []domain.PromptAction{
					{Action: "retry_load", Label: "Retry"},
					{Action: "cancel", Label: "Cancel"},
				},
			})
		}
		c.mu.Unlock()
		c.flush(ctx)
		return
	}
	if !c.acceptLocked(url) {
		c.mu.Unlock()
		return
	}
	metrics.NavigationsClassifiedTotal.WithLabelValues(string(NavSuccess)).Inc()
	c.log.Info().Str("order_id", c.order.OrderID).Int("status", status).Msg("load error on return route, treating as success")
	capture := c.beginCaptureLocked("return route load error") == nil
	c.mu.Unlock()
	c.flush(ctx)

	if capture {
		c.capture(ctx)
	}
}

// HandleMessage logs what the injected script reports. Messages never change
// state.
func (c *CheckoutCoordinator) HandleMessage(_ context.Context, payload []byte) {
	var msg domain.SurfacePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.log.Debug().Err(err).Msg("unparseable surface message")
		return
	}
	c.log.Debug().
		Str("order_id", c.OrderID()).
		Str("type", msg.Type).
		Str("url", msg.URL).
		Str("title", msg.Title).
		Str("button", msg.ButtonText).
		Msg("surface message")
}

// acceptLocked records url in the processed set. Events arriving outside
// AWAITING_APPROVAL, or for a URL already seen, are dropped.
func (c *CheckoutCoordinator) acceptLocked(url string) bool {
	if c.state != domain.CheckoutAwaitingApproval {
		metrics.SurfaceEventsIgnoredTotal.WithLabelValues("busy").Inc()
		c.log.Debug().Str("order_id", c.order.OrderID).Str("state", string(c.state)).Msg("surface event ignored")
		return false
	}
	if !c.processed.Add(url) {
		metrics.SurfaceEventsIgnoredTotal.WithLabelValues("duplicate").Inc()
		c.log.Debug().Str("order_id", c.order.OrderID).Str("url", url).Msg("duplicate surface url ignored")
		return false
	}
	return true
}

// --- Capture and purchase ---

// Verify re-runs the capture on the user's request.
func (c *CheckoutCoordinator) Verify(ctx context.Context) error {
	c.mu.Lock()
	if c.state == domain.CheckoutCapturing {
		c.mu.Unlock()
		return domain.ErrCaptureInFlight
	}
	err := c.beginCaptureLocked("manual verification")
	c.mu.Unlock()
	c.flush(ctx)
	if err != nil {
		return err
	}
	c.capture(ctx)
	return nil
}

func (c *CheckoutCoordinator) beginCaptureLocked(note string) error {
	if err := c.transition(domain.CheckoutCapturing, note); err != nil {
		return err
	}
	c.captureAttempts++
	return nil
}

// capture calls the backend once. It must be entered in CAPTURING.
func (c *CheckoutCoordinator) capture(ctx context.Context) {
	orderID := c.OrderID()
	start := time.Now()
	res, err := c.deps.Backend.CaptureOrder(ctx, orderID)

	c.mu.Lock()
	var captureID string
	switch {
	case err != nil:
		metrics.CaptureDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		c.log.Warn().Err(err).Str("order_id", orderID).Msg("capture call failed")
		c.lastErr = err
		c.pendingLocked(err)
	case !res.Completed():
		metrics.CaptureDuration.WithLabelValues("pending").Observe(time.Since(start).Seconds())
		c.log.Info().Str("order_id", orderID).Str("status", res.Status).Msg("payment not completed yet")
		c.lastErr = fmt.Errorf("capture status %q: %w", res.Status, domain.ErrPaymentPending)
		c.pendingLocked(c.lastErr)
	default:
		metrics.CaptureDuration.WithLabelValues("completed").Observe(time.Since(start).Seconds())
		id, ok := res.CaptureID()
		if !ok {
			c.lastErr = fmt.Errorf("completed capture of order %s has no transaction id: %w", orderID, domain.ErrConfiguration)
			c.log.Error().Err(c.lastErr).Msg("capture cannot be finalized")
			c.failLocked(c.lastErr, "capture without transaction id")
			break
		}
		if c.cancelRequested {
			c.log.Warn().Str("order_id", orderID).Msg("cancel requested during capture but payment completed, registering purchase")
			c.cancelRequested = false
		}
		c.order.CaptureID = id
		c.setOrderStatus(domain.OrderCaptured)
		captureID = id
	}
	c.mu.Unlock()
	c.flush(ctx)

	if captureID != "" {
		c.registerPurchase(ctx, captureID)
	}
}

// pendingLocked parks the checkout in PENDING with a manual verification
// prompt. A cancel requested during the capture is applied only when the
// backend answered that the payment did not complete; after a failed call the
// outcome is unknown and the user is asked again.
func (c *CheckoutCoordinator) pendingLocked(cause error) {
	if c.cancelRequested {
		if errors.Is(cause, domain.ErrPaymentPending) {
			c.cancelLocked("cancel requested during capture")
			return
		}
		c.log.Warn().Err(cause).Str("order_id", c.order.OrderID).Msg("capture outcome unknown, cancel not applied")
		c.cancelRequested = false
	}
	c.transition(domain.CheckoutPending, cause.Error())
	metrics.CheckoutOutcomesTotal.WithLabelValues("pending").Inc()

	p := domain.Prompt{
		Kind:    domain.PromptPaymentPending,
		Title:   "Payment pending",
		Message: "The payment has not been confirmed yet. If you completed it, verify again in a moment.",
	}
	if errors.Is(cause, domain.ErrNetwork) {
		p.Kind = domain.PromptNetworkError
		p.Title = "Connection error"
		p.Message = "The payment could not be verified. Check your connection and verify again."
	}
	p.Actions = []domain.PromptAction{
		{Action: "verify", Label: "Verify payment"},
		{Action: "cancel", Label: "Cancel"},
	}
	c.raise(p)
}

// registerPurchase records the ticket at most once per capture id.
func (c *CheckoutCoordinator) registerPurchase(ctx context.Context, captureID string) {
	c.mu.Lock()
	if _, done := c.registered[captureID]; done {
		c.mu.Unlock()
		metrics.PurchaseRegistrationsTotal.WithLabelValues("duplicate").Inc()
		c.log.Warn().Str("capture_id", captureID).Msg("purchase already registered for capture")
		return
	}
	c.registered[captureID] = struct{}{}
	order := c.order
	c.mu.Unlock()

	if c.deps.Guard != nil {
		claimed, err := c.deps.Guard.Claim(ctx, captureID, order.OrderID)
		if err != nil {
			c.log.Warn().Err(err).Str("capture_id", captureID).Msg("purchase guard check failed, proceeding")
		} else if !claimed {
			metrics.PurchaseRegistrationsTotal.WithLabelValues("duplicate").Inc()
			err := &domain.PurchaseRegistrationError{
				OrderID:       order.OrderID,
				TransactionID: captureID,
				Err:           errors.New("registration already attempted for this transaction"),
			}
			c.log.Warn().Str("capture_id", captureID).Msg("purchase registration already claimed")
			c.mu.Lock()
			c.registrationFailedLocked(err)
			c.mu.Unlock()
			c.flush(ctx)
			return
		}
	}

	ticket, err := c.deps.Backend.RegisterPurchase(ctx, domain.PurchaseRequest{
		ViajeID:             order.TripID,
		ClienteID:           order.CustomerID,
		NumeroAsiento:       order.SeatNumber,
		PaypalTransactionID: captureID,
	})

	c.mu.Lock()
	if err != nil {
		metrics.PurchaseRegistrationsTotal.WithLabelValues("failed").Inc()
		c.log.Error().Err(err).Str("order_id", order.OrderID).Str("capture_id", captureID).Msg("purchase registration failed after capture")
		c.registrationFailedLocked(&domain.PurchaseRegistrationError{
			OrderID:       order.OrderID,
			TransactionID: captureID,
			Err:           err,
		})
		c.mu.Unlock()
		c.flush(ctx)
		return
	}

	metrics.PurchaseRegistrationsTotal.WithLabelValues("ok").Inc()
	metrics.CheckoutOutcomesTotal.WithLabelValues("confirmed").Inc()
	c.lastErr = nil
	c.transition(domain.CheckoutConfirmed, "purchase registered")
	receipt := domain.PurchaseReceipt{
		OrderID:       order.OrderID,
		TransactionID: captureID,
		TripID:        order.TripID,
		SeatNumber:    order.SeatNumber,
		Price:         order.Price,
	}
	c.raise(domain.Prompt{
		Kind:          domain.PromptPaymentConfirmed,
		Title:         "Purchase complete",
		Message:       fmt.Sprintf("Your ticket for seat %d was purchased. Transaction: %s", order.SeatNumber, captureID),
		Actions:       []domain.PromptAction{{Action: "view_tickets", Label: "View my tickets"}},
		TransactionID: captureID,
	})
	c.closeSurfaceLocked()
	c.later = append(c.later, func(ctx context.Context) {
		c.deps.Presenter.Navigate(ctx, domain.ScreenTickets)
		if c.hooks.OnConfirmed != nil {
			c.hooks.OnConfirmed(ctx, receipt)
		}
	})
	c.mu.Unlock()
	c.flush(ctx)

	ev := c.log.Info().Str("order_id", order.OrderID).Str("capture_id", captureID)
	if ticket != nil {
		ev = ev.Int64("ticket_id", ticket.ID)
	}
	ev.Msg("purchase registered")
}

func (c *CheckoutCoordinator) registrationFailedLocked(err *domain.PurchaseRegistrationError) {
	c.lastErr = err
	c.transition(domain.CheckoutError, "purchase registration failed")
	metrics.CheckoutOutcomesTotal.WithLabelValues("error").Inc()
	c.raise(domain.Prompt{
		Kind:  domain.PromptPurchaseFailed,
		Title: "Purchase not registered",
		Message: fmt.Sprintf("Your payment was processed but the ticket could not be registered. "+
			"Contact support with transaction id %s.", err.TransactionID),
		Actions:       []domain.PromptAction{{Action: "acknowledge", Label: "OK"}},
		TransactionID: err.TransactionID,
	})
	c.notifyError(err)
}

func (c *CheckoutCoordinator) failLocked(err error, note string) {
	c.transition(domain.CheckoutError, note)
	c.setOrderStatus(domain.OrderFailed)
	metrics.CheckoutOutcomesTotal.WithLabelValues("error").Inc()
	c.raise(c.errorPrompt(err))
	c.notifyError(err)
}

// --- Leaving and cancelling ---

// RetryLoad reloads the approval URL and forgets the URLs seen so far.
func (c *CheckoutCoordinator) RetryLoad(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.CheckoutAwaitingApproval {
		st := c.state
		c.mu.Unlock()
		return fmt.Errorf("retry load in state %s: %w", st, domain.ErrInvalidTransition)
	}
	c.processed.Clear()
	orderID, url := c.order.OrderID, c.order.ApprovalURL
	c.mu.Unlock()

	c.log.Info().Str("order_id", orderID).Msg("reloading checkout surface")
	return c.deps.Surface.Open(ctx, orderID, url, c.deps.Script)
}

// LeaveChoices lists what the user may do when closing the surface. While a
// capture is in flight or unresolved, cancelling is never the only option.
func (c *CheckoutCoordinator) LeaveChoices() (domain.CheckoutState, []domain.LeaveChoice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, leaveChoices(c.state)
}

func leaveChoices(s domain.CheckoutState) []domain.LeaveChoice {
	switch s {
	case domain.CheckoutCapturing, domain.CheckoutPending:
		return []domain.LeaveChoice{domain.LeaveWait, domain.LeaveTreatComplete, domain.LeaveCancel}
	case domain.CheckoutOrderCreated, domain.CheckoutAwaitingApproval:
		return []domain.LeaveChoice{domain.LeaveContinue, domain.LeaveCancel}
	}
	return nil
}

// RequestLeave raises the leave prompt and returns the offered choices.
func (c *CheckoutCoordinator) RequestLeave(ctx context.Context) (domain.CheckoutState, []domain.LeaveChoice) {
	c.mu.Lock()
	st, choices := c.state, leaveChoices(c.state)
	if len(choices) > 0 {
		p := domain.Prompt{
			Kind:    domain.PromptLeaveCheckout,
			Title:   "Leave payment?",
			Message: "Are you sure you want to cancel the payment?",
		}
		if len(choices) == 3 {
			p.Message = "A payment is being processed. If you already paid, choose \"Already paid\" to verify it."
		}
		for _, ch := range choices {
			p.Actions = append(p.Actions, domain.PromptAction{Action: string(ch), Label: leaveLabels[ch]})
		}
		c.raise(p)
	}
	c.mu.Unlock()
	c.flush(ctx)
	return st, choices
}

var leaveLabels = map[domain.LeaveChoice]string{
	domain.LeaveWait:          "Wait",
	domain.LeaveContinue:      "Continue paying",
	domain.LeaveTreatComplete: "Already paid",
	domain.LeaveCancel:        "Cancel payment",
}

// ResolveLeave applies the user's answer to the leave prompt.
func (c *CheckoutCoordinator) ResolveLeave(ctx context.Context, choice domain.LeaveChoice) error {
	switch choice {
	case domain.LeaveWait, domain.LeaveContinue:
		return nil
	case domain.LeaveTreatComplete:
		err := c.Verify(ctx)
		if errors.Is(err, domain.ErrCaptureInFlight) {
			return nil
		}
		return err
	case domain.LeaveCancel:
		err := c.Cancel(ctx)
		if errors.Is(err, domain.ErrCaptureInFlight) {
			return nil
		}
		return err
	}
	return fmt.Errorf("unknown leave choice %q: %w", choice, domain.ErrInvalidTransition)
}

// Cancel discards the checkout. During a capture the cancel is deferred until
// the capture resolves and ErrCaptureInFlight is returned.
func (c *CheckoutCoordinator) Cancel(ctx context.Context) error {
	c.mu.Lock()
	if c.state == domain.CheckoutCapturing {
		c.cancelRequested = true
		c.mu.Unlock()
		c.log.Info().Str("order_id", c.OrderID()).Msg("cancel deferred until capture resolves")
		return domain.ErrCaptureInFlight
	}
	if c.state.Terminal() {
		c.mu.Unlock()
		return nil
	}
	err := c.cancelLocked("cancelled by user")
	c.mu.Unlock()
	c.flush(ctx)
	return err
}

func (c *CheckoutCoordinator) cancelLocked(note string) error {
	if err := c.transition(domain.CheckoutCancelled, note); err != nil {
		return err
	}
	c.cancelRequested = false
	c.setOrderStatus(domain.OrderCancelled)
	c.processed.Clear()
	metrics.CheckoutOutcomesTotal.WithLabelValues("cancelled").Inc()
	c.log.Info().Str("order_id", c.order.OrderID).Str("reason", note).Msg("checkout cancelled")

	c.raise(domain.Prompt{
		Kind:    domain.PromptPaymentCancelled,
		Title:   "Payment cancelled",
		Message: "The payment was cancelled. No charge was made.",
		Actions: []domain.PromptAction{{Action: "acknowledge", Label: "OK"}},
	})
	c.closeSurfaceLocked()
	if !c.cancelNotified {
		c.cancelNotified = true
		orderID := c.order.OrderID
		if c.hooks.OnCancelled != nil {
			c.later = append(c.later, func(ctx context.Context) { c.hooks.OnCancelled(ctx, orderID) })
		}
	}
	return nil
}

// --- Views ---

func (c *CheckoutCoordinator) OrderID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.OrderID
}

func (c *CheckoutCoordinator) State() domain.CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *CheckoutCoordinator) Snapshot() domain.CheckoutSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := domain.CheckoutSnapshot{
		Order:           c.order,
		State:           c.state,
		ProcessedEvents: c.processed.Len(),
		CaptureAttempts: c.captureAttempts,
		CancelRequested: c.cancelRequested,
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// Err is the error that put the checkout in its current state, if any.
func (c *CheckoutCoordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// --- Internals ---

// transition is the only mutator of c.state. The audit entry is written after
// the lock is released.
func (c *CheckoutCoordinator) transition(to domain.CheckoutState, note string) error {
	from := c.state
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%s → %s: %w", from, to, domain.ErrInvalidTransition)
	}
	c.state = to
	c.log.Debug().Str("order_id", c.order.OrderID).Str("from", string(from)).Str("to", string(to)).Msg("checkout transition")

	orderID := c.order.OrderID
	if c.deps.Repo != nil && orderID != "" {
		c.later = append(c.later, func(ctx context.Context) {
			if err := c.deps.Repo.AppendTransition(ctx, orderID, from, to, note); err != nil {
				c.log.Warn().Err(err).Str("order_id", orderID).Msg("audit transition failed")
			}
		})
	}
	return nil
}

func (c *CheckoutCoordinator) setOrderStatus(s domain.OrderStatus) {
	if c.order.Status != "" && !c.order.Status.CanTransitionTo(s) {
		return
	}
	c.order.Status = s
	c.order.UpdatedAt = c.now()
	c.saveOrder()
}

func (c *CheckoutCoordinator) saveOrder() {
	if c.deps.Repo == nil || c.order.OrderID == "" {
		return
	}
	order := c.order
	c.later = append(c.later, func(ctx context.Context) {
		if err := c.deps.Repo.Save(ctx, &order); err != nil {
			c.log.Warn().Err(err).Str("order_id", order.OrderID).Msg("audit save failed")
		}
	})
}

func (c *CheckoutCoordinator) raise(p domain.Prompt) {
	if p.Kind == "" {
		return
	}
	p.ID = uuid.NewString()
	p.OrderID = c.order.OrderID
	p.CreatedAt = c.now()
	c.later = append(c.later, func(ctx context.Context) { c.deps.Presenter.Present(ctx, p) })
}

func (c *CheckoutCoordinator) closeSurfaceLocked() {
	orderID := c.order.OrderID
	if orderID == "" {
		return
	}
	c.later = append(c.later, func(ctx context.Context) { c.deps.Surface.Close(ctx, orderID) })
}

func (c *CheckoutCoordinator) notifyError(err error) {
	if c.hooks.OnError == nil {
		return
	}
	orderID := c.order.OrderID
	c.later = append(c.later, func(ctx context.Context) { c.hooks.OnError(ctx, orderID, err) })
}

func (c *CheckoutCoordinator) errorPrompt(err error) domain.Prompt {
	p := domain.Prompt{
		Kind:    domain.PromptConfiguration,
		Title:   "Payment error",
		Message: err.Error(),
		Actions: []domain.PromptAction{{Action: "acknowledge", Label: "OK"}},
	}
	switch {
	case errors.Is(err, domain.ErrNetwork):
		p.Kind = domain.PromptNetworkError
		p.Title = "Connection error"
		p.Message = "The payment service could not be reached. Try again."
	case errors.Is(err, domain.ErrSessionExpired):
		// the session monitor already prompts
		p.Kind = ""
	}
	return p
}

// flush runs the side effects queued while the lock was held.
func (c *CheckoutCoordinator) flush(ctx context.Context) {
	c.mu.Lock()
	fns := c.later
	c.later = nil
	c.mu.Unlock()
	for _, fn := range fns {
		fn(ctx)
	}
}
