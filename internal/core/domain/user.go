package domain

import (
	"math"
	"time"
)

const (
	RoleCliente  = "CLIENTE"
	RoleVendedor = "VENDEDOR"
	RoleAdmin    = "ADMINISTRADOR"
)

// CustomerType affects ticket pricing.
type CustomerType string

const (
	CustomerComun      CustomerType = "COMUN"
	CustomerJubilado   CustomerType = "JUBILADO"
	CustomerEstudiante CustomerType = "ESTUDIANTE"
)

// discountRate is applied to the base fare of eligible customer types.
const discountRate = 0.20

// UserProfile is the logged-in customer, persisted under the user_data key.
type UserProfile struct {
	ID          int64        `json:"id"`
	Email       string       `json:"email"`
	Nombre      string       `json:"nombre"`
	Apellido    string       `json:"apellido"`
	CI          string       `json:"ci"`
	Telefono    string       `json:"telefono"`
	FechaNac    string       `json:"fechaNac"`
	Rol         string       `json:"rol"`
	TipoCliente CustomerType `json:"tipoCliente"`
}

// Claims are the fields the client reads from the backend-issued JWT.
type Claims struct {
	Subject     string
	Nombre      string
	UserID      int64
	Rol         string
	Authorities []string
	ExpiresAt   time.Time
	IssuedAt    time.Time
}

// Expired reports whether the credential is expired at now. A zero expiry is
// treated as expired.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(c.ExpiresAt)
}

// PriceBreakdown is the fare shown before checkout.
type PriceBreakdown struct {
	BasePrice   float64 `json:"base_price"`
	Discount    float64 `json:"discount"`
	FinalPrice  float64 `json:"final_price"`
	HasDiscount bool    `json:"has_discount"`
}

// EligibleForDiscount reports whether the customer type gets the reduced fare.
func (t CustomerType) EligibleForDiscount() bool {
	return t == CustomerJubilado || t == CustomerEstudiante
}

// ComputePrice applies the customer-type discount to base.
func ComputePrice(base float64, t CustomerType) PriceBreakdown {
	if !t.EligibleForDiscount() {
		return PriceBreakdown{BasePrice: base, FinalPrice: base}
	}
	discount := roundCents(base * discountRate)
	return PriceBreakdown{
		BasePrice:   base,
		Discount:    discount,
		FinalPrice:  roundCents(base - discount),
		HasDiscount: true,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
