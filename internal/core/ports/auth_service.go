package ports

import (
	"context"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
)

// AuthService owns the credential and the profile on the client.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.UserProfile, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.UserProfile, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, profile domain.UserProfile) error
}

// SessionMonitor watches the credential expiry and forces a single logout.
type SessionMonitor interface {
	Start(ctx context.Context)
	Stop()
	State() domain.SessionState
	Acknowledge(ctx context.Context)
	VerifyBeforeAction(ctx context.Context, label string) bool
	Status(ctx context.Context) domain.SessionStatus
}

// TicketService lists the current customer's purchases.
type TicketService interface {
	History(ctx context.Context) ([]domain.Ticket, error)
}

// PushTokenService keeps the backend informed of the device push token.
type PushTokenService interface {
	Sync(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
