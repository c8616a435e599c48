package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
	"github.com/omnibus/ticket-checkout/internal/infrastructure/presenter"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newJSONContext builds a context for method/path with a JSON body and the
// given path params (name, value, name, value...).
func newJSONContext(e *echo.Echo, method, path, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

type stubAuthService struct {
	loginFn    func(ctx context.Context, email, password string) (*domain.UserProfile, error)
	registerFn func(ctx context.Context, req domain.RegisterRequest) (*domain.UserProfile, error)
	user       *domain.UserProfile
	updated    []domain.UserProfile
	logouts    int
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.UserProfile, error) {
	return s.registerFn(ctx, req)
}

func (s *stubAuthService) Logout(context.Context) error {
	s.logouts++
	return nil
}

func (s *stubAuthService) CurrentUser(context.Context) (*domain.UserProfile, error) {
	if s.user == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return s.user, nil
}

func (s *stubAuthService) UpdateProfile(_ context.Context, p domain.UserProfile) error {
	s.updated = append(s.updated, p)
	return nil
}

type stubCheckoutService struct {
	startFn   func(ctx context.Context, in ports.StartCheckoutInput) (*ports.StartCheckoutResult, error)
	snapshots map[string]*domain.CheckoutSnapshot
	cancelErr error

	verified  []string
	retried   []string
	cancelled []string
	resolved  []domain.LeaveChoice
}

func (s *stubCheckoutService) Start(ctx context.Context, in ports.StartCheckoutInput) (*ports.StartCheckoutResult, error) {
	return s.startFn(ctx, in)
}

func (s *stubCheckoutService) Get(_ context.Context, orderID string) (*domain.CheckoutSnapshot, error) {
	snap, ok := s.snapshots[orderID]
	if !ok {
		return nil, domain.ErrCheckoutNotFound
	}
	return snap, nil
}

func (s *stubCheckoutService) HandleEvent(context.Context, domain.SurfaceEvent) error { return nil }

func (s *stubCheckoutService) Verify(ctx context.Context, orderID string) (*domain.CheckoutSnapshot, error) {
	s.verified = append(s.verified, orderID)
	return s.Get(ctx, orderID)
}

func (s *stubCheckoutService) RetryLoad(ctx context.Context, orderID string) error {
	s.retried = append(s.retried, orderID)
	_, err := s.Get(ctx, orderID)
	return err
}

func (s *stubCheckoutService) RequestLeave(ctx context.Context, orderID string) (*ports.LeaveOptions, error) {
	snap, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &ports.LeaveOptions{OrderID: orderID, State: snap.State, Choices: []domain.LeaveChoice{domain.LeaveContinue, domain.LeaveCancel}}, nil
}

func (s *stubCheckoutService) ResolveLeave(ctx context.Context, orderID string, choice domain.LeaveChoice) (*domain.CheckoutSnapshot, error) {
	s.resolved = append(s.resolved, choice)
	return s.Get(ctx, orderID)
}

func (s *stubCheckoutService) Cancel(_ context.Context, orderID string) error {
	s.cancelled = append(s.cancelled, orderID)
	return s.cancelErr
}

type stubMonitor struct {
	acks int
}

func (m *stubMonitor) Start(context.Context) {}
func (m *stubMonitor) Stop() {}
func (m *stubMonitor) State() domain.SessionState { return domain.SessionAlerting }
func (m *stubMonitor) Acknowledge(context.Context) { m.acks++ }
func (m *stubMonitor) VerifyBeforeAction(context.Context, string) bool { return true }
func (m *stubMonitor) Status(context.Context) domain.SessionStatus {
	return domain.SessionStatus{State: domain.SessionAlerting, HasToken: true, Expired: true, Subject: "ana@example.com"}
}

type stubDispatcher struct {
	events []domain.SurfaceEvent
	err    error
}

func (d *stubDispatcher) Enqueue(ev domain.SurfaceEvent) error {
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, ev)
	return nil
}

type stubSurfaces map[string]presenter.Surface

func (s stubSurfaces) Surface(orderID string) (presenter.Surface, bool) {
	v, ok := s[orderID]
	return v, ok
}
