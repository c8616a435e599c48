package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const purchaseClaimTTL = 30 * 24 * time.Hour

// PurchaseGuard enforces at-most-once purchase registration per capture id.
// Key format: <prefix>:purchase:<capture_id>, value is the order id.
type PurchaseGuard struct {
	client redis.Cmdable
	prefix string
}

// NewPurchaseGuard creates a PurchaseGuard wrapping the given Redis client.
func NewPurchaseGuard(client redis.Cmdable, prefix string) *PurchaseGuard {
	if prefix == "" {
		prefix = "checkout"
	}
	return &PurchaseGuard{client: client, prefix: prefix}
}

// Claim atomically records captureID and reports whether this call was first.
func (g *PurchaseGuard) Claim(ctx context.Context, captureID, orderID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(captureID), orderID, purchaseClaimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("purchase claim: %w", err)
	}
	return ok, nil
}

func (g *PurchaseGuard) key(captureID string) string {
	return fmt.Sprintf("%s:purchase:%s", g.prefix, captureID)
}
