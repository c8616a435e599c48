package ports

import (
	"context"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
)

// CheckoutRepository keeps an audit trail of payment orders and their
// transitions, so support can look up a transaction id after the fact.
type CheckoutRepository interface {
	Save(ctx context.Context, order *domain.PaymentOrder) error
	AppendTransition(ctx context.Context, orderID string, from, to domain.CheckoutState, note string) error
	FindByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	FindByCaptureID(ctx context.Context, captureID string) (*domain.PaymentOrder, error)
}

// PurchaseGuard enforces at-most-once purchase registration per capture id
// across process restarts.
type PurchaseGuard interface {
	// Claim reports true the first time captureID is claimed.
	Claim(ctx context.Context, captureID, orderID string) (bool, error)
}
