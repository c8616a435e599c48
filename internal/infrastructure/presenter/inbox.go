// Package presenter holds what the presentation layer has not yet picked up:
// pending prompts, the current screen and the open checkout surfaces. The
// mobile shell polls it through the local API.
package presenter

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
)

// ErrPromptNotFound is returned when answering a prompt that is not pending.
var ErrPromptNotFound = errors.New("prompt not found")

// Surface is an open checkout surface the shell must render.
type Surface struct {
	OrderID        string    `json:"order_id"`
	URL            string    `json:"url"`
	InjectedScript string    `json:"injected_script"`
	OpenedAt       time.Time `json:"opened_at"`
}

// Inbox implements ports.Presenter and ports.CheckoutSurface in memory.
type Inbox struct {
	mu       sync.Mutex
	prompts  []domain.Prompt
	screen   domain.Screen
	surfaces map[string]Surface
	log      zerolog.Logger
	now      func() time.Time
}

func NewInbox(log zerolog.Logger) *Inbox {
	return &Inbox{
		surfaces: make(map[string]Surface),
		log:      log,
		now:      time.Now,
	}
}

// Present queues a prompt. Prompts without an id get one.
func (b *Inbox) Present(_ context.Context, p domain.Prompt) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = b.now()
	}

	b.mu.Lock()
	b.prompts = append(b.prompts, p)
	b.mu.Unlock()

	b.log.Info().
		Str("prompt_id", p.ID).
		Str("kind", string(p.Kind)).
		Str("order_id", p.OrderID).
		Msg("prompt queued")
}

// Navigate records the screen the shell should show next.
func (b *Inbox) Navigate(_ context.Context, screen domain.Screen) {
	b.mu.Lock()
	b.screen = screen
	b.mu.Unlock()
	b.log.Info().Str("screen", string(screen)).Msg("navigate")
}

func (b *Inbox) Open(_ context.Context, orderID, url, injectedScript string) error {
	if orderID == "" || url == "" {
		return errors.New("open surface: order id and url are required")
	}
	b.mu.Lock()
	b.surfaces[orderID] = Surface{OrderID: orderID, URL: url, InjectedScript: injectedScript, OpenedAt: b.now()}
	b.mu.Unlock()
	return nil
}

func (b *Inbox) Close(_ context.Context, orderID string) {
	b.mu.Lock()
	delete(b.surfaces, orderID)
	b.mu.Unlock()
}

// Prompts returns the pending prompts, oldest first.
func (b *Inbox) Prompts() []domain.Prompt {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Prompt, len(b.prompts))
	copy(out, b.prompts)
	return out
}

// Take removes a pending prompt and returns it.
func (b *Inbox) Take(id string) (domain.Prompt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.prompts {
		if p.ID == id {
			b.prompts = append(b.prompts[:i], b.prompts[i+1:]...)
			return p, nil
		}
	}
	return domain.Prompt{}, ErrPromptNotFound
}

// Screen returns the last requested screen, empty if none.
func (b *Inbox) Screen() domain.Screen {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.screen
}

// Surface returns the open surface for orderID.
func (b *Inbox) Surface(orderID string) (Surface, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfaces[orderID]
	return s, ok
}

// Drain returns and forgets all pending prompts.
func (b *Inbox) Drain() []domain.Prompt {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.prompts
	b.prompts = nil
	return out
}
