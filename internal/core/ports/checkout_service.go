package ports

import (
	"context"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
)

// StartCheckoutInput carries what the caller knows when the user confirms a seat.
type StartCheckoutInput struct {
	TripID     int64
	SeatNumber int
	BasePrice  float64
}

// StartCheckoutResult is returned once the order exists and the surface is open.
type StartCheckoutResult struct {
	OrderID        string
	ApprovalURL    string
	Price          domain.PriceBreakdown
	InjectedScript string
}

// LeaveOptions describes the choices offered when the user tries to leave.
type LeaveOptions struct {
	OrderID string
	State   domain.CheckoutState
	Choices []domain.LeaveChoice
}

// CheckoutService owns every active payment confirmation coordinator.
type CheckoutService interface {
	Start(ctx context.Context, in StartCheckoutInput) (*StartCheckoutResult, error)
	Get(ctx context.Context, orderID string) (*domain.CheckoutSnapshot, error)
	HandleEvent(ctx context.Context, ev domain.SurfaceEvent) error
	Verify(ctx context.Context, orderID string) (*domain.CheckoutSnapshot, error)
	RetryLoad(ctx context.Context, orderID string) error
	RequestLeave(ctx context.Context, orderID string) (*LeaveOptions, error)
	ResolveLeave(ctx context.Context, orderID string, choice domain.LeaveChoice) (*domain.CheckoutSnapshot, error)
	Cancel(ctx context.Context, orderID string) error
}
