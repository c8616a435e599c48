package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

// actionGuard is the pre-action credential check of the session monitor.
type actionGuard interface {
	VerifyBeforeAction(ctx context.Context, label string) bool
}

// CheckoutService keeps one coordinator per payment order and routes surface
// events and user answers to it.
type CheckoutService struct {
	deps    CoordinatorDeps
	users   *profileStore
	session actionGuard
	logger  zerolog.Logger

	mu        sync.RWMutex
	checkouts map[string]*CheckoutCoordinator
	seats     map[seatKey]string
	finished  map[string]time.Time
	retention time.Duration
	now       func() time.Time
}

// seatKey identifies the customer/trip/seat triple a checkout is for.
type seatKey struct {
	customerID int64
	tripID     int64
	seat       int
}

// reserving marks a seat whose order is still being created.
const reserving = ""

// finishedRetention is how long a finished checkout stays readable.
const finishedRetention = 10 * time.Minute

func NewCheckoutService(deps CoordinatorDeps, store ports.KeyValueStore, session actionGuard, logger zerolog.Logger) *CheckoutService {
	if deps.Classifier == nil {
		deps.Classifier = NewURLClassifier(DefaultPatternTable())
	}
	if deps.Script == "" {
		deps.Script = SurfaceLoggingScript
	}
	return &CheckoutService{
		deps:      deps,
		users:     &profileStore{store: store},
		session:   session,
		logger:    logger,
		checkouts: make(map[string]*CheckoutCoordinator),
		seats:     make(map[seatKey]string),
		finished:  make(map[string]time.Time),
		retention: finishedRetention,
		now:       time.Now,
	}
}

// Start prices the seat for the logged-in customer, creates the order and
// opens the checkout surface.
func (s *CheckoutService) Start(ctx context.Context, in ports.StartCheckoutInput) (*ports.StartCheckoutResult, error) {
	if s.session != nil && !s.session.VerifyBeforeAction(ctx, "checkout") {
		return nil, domain.ErrSessionExpired
	}
	user, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	key := seatKey{customerID: user.ID, tripID: in.TripID, seat: in.SeatNumber}
	if err := s.reserve(key); err != nil {
		return nil, err
	}

	price := domain.ComputePrice(in.BasePrice, user.TipoCliente)
	coord := NewCheckoutCoordinator(s.deps, CheckoutHooks{
		OnConfirmed: s.onConfirmed,
		OnCancelled: s.onCancelled,
		OnError:     s.onError,
	}, s.logger)

	order, err := coord.CreateOrder(ctx, OrderDraft{
		TripID:     in.TripID,
		CustomerID: user.ID,
		SeatNumber: in.SeatNumber,
		Price:      price,
	})
	if err != nil {
		s.release(key)
		return nil, err
	}
	s.register(key, coord)

	if err := coord.OpenCheckout(ctx); err != nil {
		return nil, err
	}
	return &ports.StartCheckoutResult{
		OrderID:        order.OrderID,
		ApprovalURL:    order.ApprovalURL,
		Price:          price,
		InjectedScript: s.deps.Script,
	}, nil
}

func (s *CheckoutService) reserve(key seatKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
	if orderID, ok := s.seats[key]; ok {
		if orderID == reserving {
			return domain.ErrCheckoutInProgress
		}
		if c := s.checkouts[orderID]; c != nil && !c.State().Terminal() {
			return fmt.Errorf("order %s: %w", orderID, domain.ErrCheckoutInProgress)
		}
	}
	s.seats[key] = reserving
	return nil
}

func (s *CheckoutService) release(key seatKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seats[key] == reserving {
		delete(s.seats, key)
	}
}

func (s *CheckoutService) register(key seatKey, c *CheckoutCoordinator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orderID := c.OrderID()
	s.checkouts[orderID] = c
	s.seats[key] = orderID
}

// markFinished starts the retention window of a checkout that reached a
// terminal state.
func (s *CheckoutService) markFinished(orderID string) {
	c, err := s.lookup(orderID)
	if err != nil || !c.State().Terminal() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.finished[orderID]; !ok {
		s.finished[orderID] = s.now()
	}
}

// pruneLocked forgets checkouts whose retention window has passed.
func (s *CheckoutService) pruneLocked(now time.Time) {
	for orderID, at := range s.finished {
		if now.Sub(at) < s.retention {
			continue
		}
		delete(s.finished, orderID)
		delete(s.checkouts, orderID)
		for key, id := range s.seats {
			if id == orderID {
				delete(s.seats, key)
			}
		}
		s.logger.Debug().Str("order_id", orderID).Msg("finished checkout pruned")
	}
}

func (s *CheckoutService) lookup(orderID string) (*CheckoutCoordinator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.checkouts[orderID]
	if !ok {
		return nil, domain.ErrCheckoutNotFound
	}
	return c, nil
}

func (s *CheckoutService) Get(_ context.Context, orderID string) (*domain.CheckoutSnapshot, error) {
	c, err := s.lookup(orderID)
	if err != nil {
		return nil, err
	}
	snap := c.Snapshot()
	return &snap, nil
}

// HandleEvent is called by the dispatcher workers; events for one order are
// always handled by the same worker, in order.
func (s *CheckoutService) HandleEvent(ctx context.Context, ev domain.SurfaceEvent) error {
	c, err := s.lookup(ev.OrderID)
	if err != nil {
		return err
	}
	c.HandleEvent(ctx, ev)
	return nil
}

func (s *CheckoutService) Verify(ctx context.Context, orderID string) (*domain.CheckoutSnapshot, error) {
	c, err := s.lookup(orderID)
	if err != nil {
		return nil, err
	}
	if err := c.Verify(ctx); err != nil {
		return nil, err
	}
	snap := c.Snapshot()
	return &snap, nil
}

func (s *CheckoutService) RetryLoad(ctx context.Context, orderID string) error {
	c, err := s.lookup(orderID)
	if err != nil {
		return err
	}
	return c.RetryLoad(ctx)
}

func (s *CheckoutService) RequestLeave(ctx context.Context, orderID string) (*ports.LeaveOptions, error) {
	c, err := s.lookup(orderID)
	if err != nil {
		return nil, err
	}
	st, choices := c.RequestLeave(ctx)
	return &ports.LeaveOptions{OrderID: orderID, State: st, Choices: choices}, nil
}

func (s *CheckoutService) ResolveLeave(ctx context.Context, orderID string, choice domain.LeaveChoice) (*domain.CheckoutSnapshot, error) {
	c, err := s.lookup(orderID)
	if err != nil {
		return nil, err
	}
	if err := c.ResolveLeave(ctx, choice); err != nil {
		return nil, err
	}
	snap := c.Snapshot()
	return &snap, nil
}

func (s *CheckoutService) Cancel(ctx context.Context, orderID string) error {
	c, err := s.lookup(orderID)
	if err != nil {
		return err
	}
	return c.Cancel(ctx)
}

func (s *CheckoutService) onConfirmed(_ context.Context, r domain.PurchaseReceipt) {
	s.logger.Info().
		Str("order_id", r.OrderID).
		Str("transaction_id", r.TransactionID).
		Int64("trip_id", r.TripID).
		Int("seat", r.SeatNumber).
		Msg("checkout confirmed")
	s.markFinished(r.OrderID)
}

func (s *CheckoutService) onCancelled(_ context.Context, orderID string) {
	s.logger.Info().Str("order_id", orderID).Msg("checkout cancelled")
	s.markFinished(orderID)
}

func (s *CheckoutService) onError(_ context.Context, orderID string, err error) {
	s.logger.Error().Err(err).Str("order_id", orderID).Msg("checkout failed")
	s.markFinished(orderID)
}
