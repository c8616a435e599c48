package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs shared by the service tests
// ---------------------------------------------------------------------------

type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
		s.deleted = append(s.deleted, k)
	}
	return nil
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

type recordingPresenter struct {
	mu      sync.Mutex
	prompts []domain.Prompt
	screens []domain.Screen
}

func (p *recordingPresenter) Present(_ context.Context, prompt domain.Prompt) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
}

func (p *recordingPresenter) Navigate(_ context.Context, screen domain.Screen) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.screens = append(p.screens, screen)
}

func (p *recordingPresenter) count(kind domain.PromptKind) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, pr := range p.prompts {
		if pr.Kind == kind {
			n++
		}
	}
	return n
}

func (p *recordingPresenter) last() domain.Prompt {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.prompts) == 0 {
		return domain.Prompt{}
	}
	return p.prompts[len(p.prompts)-1]
}

type stubSurface struct {
	opened  []string
	closed  []string
	openErr error
}

func (s *stubSurface) Open(_ context.Context, orderID, url, _ string) error {
	if s.openErr != nil {
		return s.openErr
	}
	s.opened = append(s.opened, url)
	return nil
}

func (s *stubSurface) Close(_ context.Context, orderID string) {
	s.closed = append(s.closed, orderID)
}

type stubBackend struct {
	mu sync.Mutex

	created    *domain.CreatedOrder
	createErr  error
	capture    *domain.CaptureResult
	captureErr error
	// captureHook runs inside CaptureOrder before it returns.
	captureHook func()
	ticket      *domain.Ticket
	purchaseErr error

	authResp    *domain.AuthResponse
	loginErr    error
	registerErr error
	tickets     []domain.Ticket
	pushErr     error

	createCalls   []float64
	captureCalls  []string
	purchaseCalls []domain.PurchaseRequest
	registered    []domain.RegisterRequest
	pushTokens    []string
	pushCleared   int
	historyFor    []int64
}

func (b *stubBackend) CreateOrder(_ context.Context, amount float64) (*domain.CreatedOrder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createCalls = append(b.createCalls, amount)
	return b.created, b.createErr
}

func (b *stubBackend) CaptureOrder(_ context.Context, orderID string) (*domain.CaptureResult, error) {
	b.mu.Lock()
	b.captureCalls = append(b.captureCalls, orderID)
	hook := b.captureHook
	res, err := b.capture, b.captureErr
	b.mu.Unlock()
	if hook != nil {
		hook()
	}
	return res, err
}

func (b *stubBackend) RegisterPurchase(_ context.Context, req domain.PurchaseRequest) (*domain.Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.purchaseCalls = append(b.purchaseCalls, req)
	if b.purchaseErr != nil {
		return nil, b.purchaseErr
	}
	return b.ticket, nil
}

func (b *stubBackend) Login(_ context.Context, _ domain.LoginRequest) (*domain.AuthResponse, error) {
	return b.authResp, b.loginErr
}

func (b *stubBackend) Register(_ context.Context, req domain.RegisterRequest) error {
	b.registered = append(b.registered, req)
	return b.registerErr
}

func (b *stubBackend) TicketHistory(_ context.Context, customerID int64) ([]domain.Ticket, error) {
	b.historyFor = append(b.historyFor, customerID)
	return b.tickets, nil
}

func (b *stubBackend) UpdatePushToken(_ context.Context, token string) error {
	b.pushTokens = append(b.pushTokens, token)
	return b.pushErr
}

func (b *stubBackend) ClearPushToken(_ context.Context) error {
	b.pushCleared++
	return b.pushErr
}

func (b *stubBackend) captures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.captureCalls)
}

func (b *stubBackend) purchases() []domain.PurchaseRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.PurchaseRequest(nil), b.purchaseCalls...)
}

type stubCheckoutRepo struct {
	mu          sync.Mutex
	saved       map[string]domain.PaymentOrder
	transitions []string
}

func newStubCheckoutRepo() *stubCheckoutRepo {
	return &stubCheckoutRepo{saved: make(map[string]domain.PaymentOrder)}
}

func (r *stubCheckoutRepo) Save(_ context.Context, order *domain.PaymentOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved[order.OrderID] = *order
	return nil
}

func (r *stubCheckoutRepo) AppendTransition(_ context.Context, _ string, from, to domain.CheckoutState, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, string(from)+"->"+string(to))
	return nil
}

func (r *stubCheckoutRepo) FindByOrderID(_ context.Context, orderID string) (*domain.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.saved[orderID]
	if !ok {
		return nil, domain.ErrCheckoutNotFound
	}
	return &o, nil
}

func (r *stubCheckoutRepo) FindByCaptureID(_ context.Context, captureID string) (*domain.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.saved {
		if o.CaptureID == captureID {
			return &o, nil
		}
	}
	return nil, domain.ErrCheckoutNotFound
}

type stubGuard struct {
	claimed map[string]bool
	err     error
}

func (g *stubGuard) Claim(_ context.Context, captureID, _ string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.claimed == nil {
		g.claimed = make(map[string]bool)
	}
	if g.claimed[captureID] {
		return false, nil
	}
	g.claimed[captureID] = true
	return true, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// signToken builds a backend-shaped JWT. The signature is never checked.
func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":         "ana@example.com",
		"nombre":      "Ana",
		"userId":      42,
		"rol":         domain.RoleCliente,
		"authorities": []map[string]string{{"authority": "ROLE_CLIENTE"}},
		"iat":         exp.Add(-time.Hour).Unix(),
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func storeProfile(t *testing.T, store *memStore, u domain.UserProfile) {
	t.Helper()
	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal profile: %v", err)
	}
	store.data[domain.KeyUserData] = string(raw)
}

func approvedOrder(id string) *domain.CreatedOrder {
	return &domain.CreatedOrder{
		ID:     id,
		Status: "CREATED",
		Links: []domain.OrderLink{
			{Rel: "self", Href: "https://api.sandbox.paypal.com/v2/checkout/orders/" + id},
			{Rel: domain.RelApprove, Href: "https://www.sandbox.paypal.com/checkoutnow?token=" + id},
		},
	}
}

func completedCapture(captureID string) *domain.CaptureResult {
	return &domain.CaptureResult{
		Status: domain.CaptureStatusCompleted,
		PurchaseUnits: []domain.PurchaseUnit{
			{Payments: &domain.UnitPayments{Captures: []domain.PaymentCapture{{ID: captureID, Status: "COMPLETED"}}}},
		},
	}
}
