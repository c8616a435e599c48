package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

type stubActionGuard struct {
	allow  bool
	labels []string
}

func (g *stubActionGuard) VerifyBeforeAction(_ context.Context, label string) bool {
	g.labels = append(g.labels, label)
	return g.allow
}

type checkoutSvcFixture struct {
	backend   *stubBackend
	surface   *stubSurface
	presenter *recordingPresenter
	store     *memStore
	guard     *stubActionGuard
	svc       *CheckoutService
}

func newCheckoutSvcFixture(t *testing.T, tipo domain.CustomerType) *checkoutSvcFixture {
	t.Helper()
	f := &checkoutSvcFixture{
		backend:   &stubBackend{created: approvedOrder("ORDER1"), capture: completedCapture("CAP1"), ticket: &domain.Ticket{ID: 1}},
		surface:   &stubSurface{},
		presenter: &recordingPresenter{},
		store:     newMemStore(),
		guard:     &stubActionGuard{allow: true},
	}
	storeProfile(t, f.store, domain.UserProfile{ID: 42, Email: "ana@example.com", TipoCliente: tipo})
	f.svc = NewCheckoutService(CoordinatorDeps{
		Backend:   f.backend,
		Surface:   f.surface,
		Presenter: f.presenter,
		Repo:      newStubCheckoutRepo(),
		Guard:     &stubGuard{},
	}, f.store, f.guard, zerolog.Nop())
	return f
}

func TestCheckoutService_Start_HappyPath(t *testing.T) {
	f := newCheckoutSvcFixture(t, domain.CustomerEstudiante)

	res, err := f.svc.Start(context.Background(), ports.StartCheckoutInput{TripID: 3, SeatNumber: 12, BasePrice: 100})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.OrderID != "ORDER1" || res.Price.FinalPrice != 80 || !res.Price.HasDiscount {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.InjectedScript != SurfaceLoggingScript {
		t.Error("expected the logging script to be handed to the surface")
	}
	if len(f.surface.opened) != 1 || f.surface.opened[0] != res.ApprovalURL {
		t.Fatalf("expected surface opened on approval url, got %v", f.surface.opened)
	}
	if len(f.guard.labels) != 1 || f.guard.labels[0] != "checkout" {
		t.Errorf("expected session check before checkout, got %v", f.guard.labels)
	}

	snap, err := f.svc.Get(context.Background(), "ORDER1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if snap.State != domain.CheckoutAwaitingApproval || snap.Order.CustomerID != 42 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestCheckoutService_Start_SessionExpired(t *testing.T) {
	f := newCheckoutSvcFixture(t, domain.CustomerComun)
	f.guard.allow = false

	_, err := f.svc.Start(context.Background(), ports.StartCheckoutInput{TripID: 3, SeatNumber: 12, BasePrice: 100})

	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if len(f.backend.createCalls) != 0 {
		t.Fatal("no order may be created with an expired session")
	}
}

func TestCheckoutService_Start_NotLoggedIn(t *testing.T) {
	f := newCheckoutSvcFixture(t, domain.CustomerComun)
	delete(f.store.data, domain.KeyUserData)

	_, err := f.svc.Start(context.Background(), ports.StartCheckoutInput{TripID: 3, SeatNumber: 12, BasePrice: 100})

	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestCheckoutService_Start_OneActiveOrderPerSeat(t *testing.T) {
	f := newCheckoutSvcFixture(t, domain.CustomerComun)
	ctx := context.Background()
	in := ports.StartCheckoutInput{TripID: 3, SeatNumber: 12, BasePrice: 100}

	if _, err := f.svc.Start(ctx, in); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if _, err := f.svc.Start(ctx, in); !errors.Is(err, domain.ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}

	other := in
	other.SeatNumber = 13
	f.backend.created = approvedOrder("ORDER2")
	if _, err := f.svc.Start(ctx, other); err != nil {
		t.Fatalf("another seat must be allowed: %v", err)
	}

	if err := f.svc.Cancel(ctx, "ORDER1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	f.backend.created = approvedOrder("ORDER3")
	if _, err := f.svc.Start(ctx, in); err != nil {
		t.Fatalf("expected a new checkout after cancel, got %v", err)
	}
}

func TestCheckoutService_Start_FailedOrderReleasesSeat(t *testing.T) {
	f := newCheckoutSvcFixture(t, domain.CustomerComun)
	ctx := context.Background()
	in := ports.StartCheckoutInput{TripID: 3, SeatNumber: 12, BasePrice: 100}

	f.backend.createErr = domain.ErrNetwork
	if _, err := f.svc.Start(ctx, in); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}

	f.backend.createErr = nil
	if _, err := f.svc.Start(ctx, in); err != nil {
		t.Fatalf("expected retry to be allowed, got %v", err)
	}
}

func TestCheckoutService_HandleEvent_RoutesToCoordinator(t *testing.T) {
	f := newCheckoutSvcFixture(t, domain.CustomerComun)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, ports.StartCheckoutInput{TripID: 3, SeatNumber: 12, BasePrice: 100}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	err := f.svc.HandleEvent(ctx, domain.SurfaceEvent{OrderID: "ORDER1", Type: domain.SurfaceNavigation, URL: successURL})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	snap, _ := f.svc.Get(ctx, "ORDER1")
	if snap.State != domain.CheckoutConfirmed || snap.Order.CaptureID != "CAP1" {
		t.Fatalf("expected CONFIRMED with CAP1, got %+v", snap)
	}
}

func TestCheckoutService_UnknownOrder(t *testing.T) {
	f := newCheckoutSvcFixture(t, domain.CustomerComun)
	ctx := context.Background()

	if err := f.svc.HandleEvent(ctx, domain.SurfaceEvent{OrderID: "NOPE", Type: domain.SurfaceNavigation}); !errors.Is(err, domain.ErrCheckoutNotFound) {
		t.Errorf("HandleEvent: expected ErrCheckoutNotFound, got %v", err)
	}
	if _, err := f.svc.Verify(ctx, "NOPE"); !errors.Is(err, domain.ErrCheckoutNotFound) {
		t.Errorf("Verify: expected ErrCheckoutNotFound, got %v", err)
	}
	if _, err := f.svc.RequestLeave(ctx, "NOPE"); !errors.Is(err, domain.ErrCheckoutNotFound) {
		t.Errorf("RequestLeave: expected ErrCheckoutNotFound, got %v", err)
	}
}

func TestCheckoutService_LeaveFlow(t *testing.T) {
	f := newCheckoutSvcFixture(t, domain.CustomerComun)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, ports.StartCheckoutInput{TripID: 3, SeatNumber: 12, BasePrice: 100}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	opts, err := f.svc.RequestLeave(ctx, "ORDER1")
	if err != nil {
		t.Fatalf("RequestLeave: %v", err)
	}
	if opts.State != domain.CheckoutAwaitingApproval || len(opts.Choices) != 2 {
		t.Fatalf("unexpected leave options: %+v", opts)
	}

	snap, err := f.svc.ResolveLeave(ctx, "ORDER1", domain.LeaveCancel)
	if err != nil {
		t.Fatalf("ResolveLeave: %v", err)
	}
	if snap.State != domain.CheckoutCancelled {
		t.Fatalf("expected CANCELLED, got %s", snap.State)
	}
	if _, err := f.svc.ResolveLeave(ctx, "ORDER1", domain.LeaveChoice("later")); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected unknown choice to be rejected, got %v", err)
	}
}

func TestCheckoutService_PrunesFinishedCheckouts(t *testing.T) {
	f := newCheckoutSvcFixture(t, domain.CustomerComun)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	in := ports.StartCheckoutInput{TripID: 3, SeatNumber: 12, BasePrice: 100}
	if _, err := f.svc.Start(ctx, in); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := f.svc.Cancel(ctx, "ORDER1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	other := in
	other.SeatNumber = 13
	f.backend.created = approvedOrder("ORDER2")
	if _, err := f.svc.Start(ctx, other); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if snap, err := f.svc.Get(ctx, "ORDER1"); err != nil || snap.State != domain.CheckoutCancelled {
		t.Fatalf("finished checkout must stay readable during retention, got %+v (%v)", snap, err)
	}

	now = now.Add(finishedRetention)
	other.SeatNumber = 14
	f.backend.created = approvedOrder("ORDER3")
	if _, err := f.svc.Start(ctx, other); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := f.svc.Get(ctx, "ORDER1"); !errors.Is(err, domain.ErrCheckoutNotFound) {
		t.Fatalf("expected ORDER1 pruned, got %v", err)
	}
	if _, err := f.svc.Get(ctx, "ORDER2"); err != nil {
		t.Fatalf("active checkout must survive pruning: %v", err)
	}
	f.svc.mu.RLock()
	defer f.svc.mu.RUnlock()
	for key, id := range f.svc.seats {
		if id == "ORDER1" {
			t.Errorf("seat %+v still points at a pruned order", key)
		}
	}
}
