package ports

import (
	"context"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
)

// Presenter is the presentation layer: blocking prompts and screen changes.
// Answers come back through the component that raised the prompt.
type Presenter interface {
	Present(ctx context.Context, prompt domain.Prompt)
	Navigate(ctx context.Context, screen domain.Screen)
}

// CheckoutSurface is the embedded browsing context hosting the provider pages.
type CheckoutSurface interface {
	Open(ctx context.Context, orderID, url, injectedScript string) error
	Close(ctx context.Context, orderID string)
}
