package domain

import "time"

// CheckoutState is the state of a payment confirmation coordinator.
type CheckoutState string

const (
	CheckoutNone             CheckoutState = "NONE"
	CheckoutOrderCreated     CheckoutState = "ORDER_CREATED"
	CheckoutAwaitingApproval CheckoutState = "AWAITING_APPROVAL"
	CheckoutCapturing        CheckoutState = "CAPTURING"
	CheckoutPending          CheckoutState = "PENDING"
	CheckoutConfirmed        CheckoutState = "CONFIRMED"
	CheckoutCancelled        CheckoutState = "CANCELLED"
	CheckoutError            CheckoutState = "ERROR"
)

var validCheckoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutNone:             {CheckoutOrderCreated, CheckoutError},
	CheckoutOrderCreated:     {CheckoutAwaitingApproval, CheckoutCancelled, CheckoutError},
	CheckoutAwaitingApproval: {CheckoutCapturing, CheckoutCancelled, CheckoutError},
	CheckoutCapturing:        {CheckoutConfirmed, CheckoutPending, CheckoutCancelled, CheckoutError},
	CheckoutPending:          {CheckoutCapturing, CheckoutCancelled, CheckoutError},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, allowed := range validCheckoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the checkout has finished.
func (s CheckoutState) Terminal() bool {
	return len(validCheckoutTransitions[s]) == 0
}

// ProcessedEventSet holds the surface URLs already classified for one order.
// The zero value is not usable; use NewProcessedEventSet.
type ProcessedEventSet struct {
	seen map[string]struct{}
}

func NewProcessedEventSet() *ProcessedEventSet {
	return &ProcessedEventSet{seen: make(map[string]struct{})}
}

// Add records key and reports whether it was new.
func (p *ProcessedEventSet) Add(key string) bool {
	if _, ok := p.seen[key]; ok {
		return false
	}
	p.seen[key] = struct{}{}
	return true
}

func (p *ProcessedEventSet) Has(key string) bool {
	_, ok := p.seen[key]
	return ok
}

func (p *ProcessedEventSet) Len() int { return len(p.seen) }

func (p *ProcessedEventSet) Clear() {
	p.seen = make(map[string]struct{})
}

// SurfaceEventType enumerates what the embedded checkout surface reports.
type SurfaceEventType string

const (
	SurfaceNavigation SurfaceEventType = "navigation"
	SurfaceMessage    SurfaceEventType = "message"
	SurfaceLoadError  SurfaceEventType = "load_error"
)

// SurfaceEvent is a single event emitted by the checkout surface.
type SurfaceEvent struct {
	OrderID     string
	Type        SurfaceEventType
	URL         string
	StatusCode  int
	Description string
	Payload     []byte
	ReceivedAt  time.Time
}

// SurfacePayload is the JSON posted by the injected logging script.
type SurfacePayload struct {
	Type       string `json:"type"`
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	ButtonText string `json:"buttonText,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`
}

const (
	MessageURLChangeLog      = "URL_CHANGE_LOG"
	MessageReturnButtonFound = "RETURN_BUTTON_FOUND"
)

// LeaveChoice is the user's answer when trying to close the checkout surface.
type LeaveChoice string

const (
	LeaveWait          LeaveChoice = "wait"
	LeaveContinue      LeaveChoice = "continue"
	LeaveTreatComplete LeaveChoice = "completed"
	LeaveCancel        LeaveChoice = "cancel"
)

// CheckoutSnapshot is a read-only view of a coordinator.
type CheckoutSnapshot struct {
	Order           PaymentOrder  `json:"order"`
	State           CheckoutState `json:"state"`
	ProcessedEvents int           `json:"processed_events"`
	CaptureAttempts int           `json:"capture_attempts"`
	CancelRequested bool          `json:"cancel_requested"`
	LastError       string        `json:"last_error,omitempty"`
}

// PurchaseReceipt is produced when a checkout reaches CONFIRMED.
type PurchaseReceipt struct {
	OrderID       string         `json:"order_id"`
	TransactionID string         `json:"transaction_id"`
	TripID        int64          `json:"trip_id"`
	SeatNumber    int            `json:"seat_number"`
	Price         PriceBreakdown `json:"price"`
}
