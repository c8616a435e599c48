package domain

import "time"

// OrderStatus is the lifecycle of a provider-hosted payment order as seen by
// this client.
type OrderStatus string

const (
	OrderCreated         OrderStatus = "CREATED"
	OrderPendingApproval OrderStatus = "PENDING_APPROVAL"
	OrderCaptured        OrderStatus = "CAPTURED"
	OrderCancelled       OrderStatus = "CANCELLED"
	OrderFailed          OrderStatus = "FAILED"
)

var validOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderCreated:         {OrderPendingApproval, OrderCancelled, OrderFailed},
	OrderPendingApproval: {OrderCaptured, OrderCancelled, OrderFailed},
}

// CanTransitionTo reports whether a transition from s to next is valid.
// CAPTURED, CANCELLED and FAILED are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return len(validOrderTransitions[s]) == 0
}

// Capture status values returned by the provider through the backend.
const CaptureStatusCompleted = "COMPLETED"

// PaymentOrder is one checkout attempt for a single seat.
type PaymentOrder struct {
	OrderID     string         `json:"order_id" bson:"order_id"`
	ApprovalURL string         `json:"approval_url" bson:"approval_url"`
	TripID      int64          `json:"trip_id" bson:"trip_id"`
	CustomerID  int64          `json:"customer_id" bson:"customer_id"`
	SeatNumber  int            `json:"seat_number" bson:"seat_number"`
	Price       PriceBreakdown `json:"price" bson:"price"`
	Status      OrderStatus    `json:"status" bson:"status"`
	CaptureID   string         `json:"capture_id,omitempty" bson:"capture_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" bson:"updated_at"`
}

// OrderLink is a hypermedia link in the order creation response.
type OrderLink struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

// RelApprove marks the provider checkout page link.
const RelApprove = "approve"

// CreatedOrder is the backend response to an order creation request.
type CreatedOrder struct {
	ID     string      `json:"id"`
	Status string      `json:"status,omitempty"`
	Links  []OrderLink `json:"links"`
}

// ApprovalLink returns the href of the approve link, if any.
func (o CreatedOrder) ApprovalLink() (string, bool) {
	for _, l := range o.Links {
		if l.Rel == RelApprove && l.Href != "" {
			return l.Href, true
		}
	}
	return "", false
}

// CaptureResult is the backend response to a capture request.
type CaptureResult struct {
	ID            string         `json:"id,omitempty"`
	Status        string         `json:"status"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units,omitempty"`
}

type PurchaseUnit struct {
	Payments *UnitPayments `json:"payments,omitempty"`
}

type UnitPayments struct {
	Captures []PaymentCapture `json:"captures,omitempty"`
}

type PaymentCapture struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}

// Completed reports whether the provider finished the payment.
func (r CaptureResult) Completed() bool {
	return r.Status == CaptureStatusCompleted
}

// CaptureID returns the first capture id nested under purchase_units.
func (r CaptureResult) CaptureID() (string, bool) {
	if len(r.PurchaseUnits) == 0 || r.PurchaseUnits[0].Payments == nil {
		return "", false
	}
	caps := r.PurchaseUnits[0].Payments.Captures
	if len(caps) == 0 || caps[0].ID == "" {
		return "", false
	}
	return caps[0].ID, true
}

// PurchaseRequest registers a ticket after a captured payment.
type PurchaseRequest struct {
	ViajeID             int64  `json:"viajeId"`
	ClienteID           int64  `json:"clienteId"`
	NumeroAsiento       int    `json:"numeroAsiento"`
	PaypalTransactionID string `json:"paypalTransactionId"`
}

// Ticket is a purchased ticket as returned by the backend.
type Ticket struct {
	ID               int64   `json:"id"`
	ClienteID        int64   `json:"clienteId"`
	ViajeID          int64   `json:"viajeId"`
	OrigenViaje      string  `json:"origenViaje,omitempty"`
	DestinoViaje     string  `json:"destinoViaje,omitempty"`
	FechaViaje       string  `json:"fechaViaje,omitempty"`
	HoraSalidaViaje  string  `json:"horaSalidaViaje,omitempty"`
	OmnibusMatricula string  `json:"omnibusMatricula,omitempty"`
	Precio           float64 `json:"precio"`
	Estado           string  `json:"estado"`
	NumeroAsiento    int     `json:"numeroAsiento"`
	FechaReserva     string  `json:"fechaReserva,omitempty"`
}
