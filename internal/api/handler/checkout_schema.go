package handler

import (
	"time"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type startCheckoutRequest struct {
	TripID     int64   `json:"trip_id"     validate:"required,gt=0"`
	SeatNumber int     `json:"seat_number" validate:"required,gt=0"`
	BasePrice  float64 `json:"base_price"  validate:"required,gt=0"`
}

type checkoutLinks struct {
	Self    string `json:"self"`
	Surface string `json:"surface"`
	Events  string `json:"events"`
}

type priceResponse struct {
	BasePrice   float64 `json:"base_price"`
	Discount    float64 `json:"discount"`
	FinalPrice  float64 `json:"final_price"`
	HasDiscount bool    `json:"has_discount"`
}

type startCheckoutResponse struct {
	OrderID        string        `json:"order_id"`
	ApprovalURL    string        `json:"approval_url"`
	Price          priceResponse `json:"price"`
	InjectedScript string        `json:"injected_script"`
	Links          checkoutLinks `json:"_links"`
}

// Response-only types owned by the transport layer, kept apart from the
// domain snapshot so the JSON contract does not follow internal changes.

type checkoutResponse struct {
	OrderID         string        `json:"order_id"`
	State           string        `json:"state"`
	OrderStatus     string        `json:"order_status"`
	TripID          int64         `json:"trip_id"`
	SeatNumber      int           `json:"seat_number"`
	Price           priceResponse `json:"price"`
	CaptureID       string        `json:"capture_id,omitempty"`
	ProcessedEvents int           `json:"processed_events"`
	CaptureAttempts int           `json:"capture_attempts"`
	CancelRequested bool          `json:"cancel_requested"`
	LastError       string        `json:"last_error,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Links           checkoutLinks `json:"_links"`
}

type leaveOptionsResponse struct {
	OrderID string   `json:"order_id"`
	State   string   `json:"state"`
	Choices []string `json:"choices"`
}

type surfaceResponse struct {
	OrderID        string    `json:"order_id"`
	URL            string    `json:"url"`
	InjectedScript string    `json:"injected_script"`
	OpenedAt       time.Time `json:"opened_at"`
}

type promptsResponse struct {
	Prompts []domain.Prompt `json:"prompts"`
	Screen  string          `json:"screen,omitempty"`
}

type answerPromptRequest struct {
	Action string `json:"action" validate:"required"`
}
