package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration means a trusted response is missing data the flow cannot
	// continue without (no approval link, no capture id).
	ErrConfiguration = errors.New("configuration error")
	// ErrSessionExpired means the stored credential is missing, invalid or expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrNetwork is a transport-level failure reaching the backend.
	ErrNetwork = errors.New("network error")
	// ErrPaymentPending means the provider has not completed the payment yet.
	ErrPaymentPending = errors.New("payment pending")
	// ErrPurchaseRegistration means the capture succeeded but the backend did
	// not record the ticket.
	ErrPurchaseRegistration = errors.New("purchase registration failed")

	ErrInvalidTransition  = errors.New("invalid checkout transition")
	ErrCheckoutNotFound   = errors.New("checkout not found")
	ErrCheckoutInProgress = errors.New("checkout already in progress for this seat")
	ErrCaptureInFlight    = errors.New("capture already in flight")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s (status %d)", e.Message, e.StatusCode)
}

// PurchaseRegistrationError carries the provider transaction id of a payment
// that was captured but could not be registered as a ticket.
type PurchaseRegistrationError struct {
	OrderID       string
	TransactionID string
	Err           error
}

func (e *PurchaseRegistrationError) Error() string {
	return fmt.Sprintf("purchase registration failed for transaction %s: %v", e.TransactionID, e.Err)
}

func (e *PurchaseRegistrationError) Unwrap() error { return e.Err }

func (e *PurchaseRegistrationError) Is(target error) bool {
	return target == ErrPurchaseRegistration
}
