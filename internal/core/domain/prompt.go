package domain

import "time"

// PromptKind identifies a blocking prompt the presentation layer must show.
type PromptKind string

const (
	PromptSessionExpired   PromptKind = "session_expired"
	PromptPaymentConfirmed PromptKind = "payment_confirmed"
	PromptPaymentPending   PromptKind = "payment_pending"
	PromptPaymentCancelled PromptKind = "payment_cancelled"
	PromptPurchaseFailed   PromptKind = "purchase_failed"
	PromptConfiguration    PromptKind = "configuration_error"
	PromptNetworkError     PromptKind = "network_error"
	PromptLoadError        PromptKind = "load_error"
	PromptLeaveCheckout    PromptKind = "leave_checkout"
)

// PromptAction is one button of a prompt. Action names are what the
// presentation layer sends back (e.g. "verify", "cancel", "acknowledge").
type PromptAction struct {
	Action string `json:"action"`
	Label  string `json:"label"`
}

// Prompt is a user-facing confirmation raised by the session monitor or a
// checkout coordinator.
type Prompt struct {
	ID            string         `json:"id"`
	Kind          PromptKind     `json:"kind"`
	Title         string         `json:"title"`
	Message       string         `json:"message"`
	Actions       []PromptAction `json:"actions"`
	OrderID       string         `json:"order_id,omitempty"`
	TransactionID string         `json:"transaction_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Screen is a named destination in the presentation layer.
type Screen string

const (
	ScreenLogin   Screen = "Login"
	ScreenTickets Screen = "Mis Pasajes"
	ScreenTrips   Screen = "Viajes"
)
