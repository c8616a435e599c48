package ports

import (
	"context"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
)

// BackendAPI is the subset of the ticketing REST surface the client consumes.
// Every authenticated call attaches the stored bearer credential.
type BackendAPI interface {
	CreateOrder(ctx context.Context, amount float64) (*domain.CreatedOrder, error)
	CaptureOrder(ctx context.Context, orderID string) (*domain.CaptureResult, error)
	RegisterPurchase(ctx context.Context, req domain.PurchaseRequest) (*domain.Ticket, error)

	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) error
	TicketHistory(ctx context.Context, customerID int64) ([]domain.Ticket, error)

	UpdatePushToken(ctx context.Context, token string) error
	ClearPushToken(ctx context.Context) error
}

// UnauthorizedHandler is notified by the HTTP client when a request fails
// with an authorization status. It returns the error the caller should see.
type UnauthorizedHandler interface {
	HandleUnauthorizedResponse(ctx context.Context, status int, body []byte, err error) error
}
