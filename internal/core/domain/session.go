package domain

import "time"

// Keys of the persisted key-value store.
const (
	KeyAuthToken = "auth_token"
	KeyUserData  = "user_data"
	KeyFCMToken  = "fcm_token"
)

// SessionState is the state of the session monitor.
type SessionState string

const (
	SessionIdle       SessionState = "IDLE"
	SessionMonitoring SessionState = "MONITORING"
	SessionAlerting   SessionState = "ALERTING"
	SessionLoggingOut SessionState = "LOGGING_OUT"
)

// SessionStatus is a diagnostic view of the held credential.
type SessionStatus struct {
	State      SessionState  `json:"state"`
	HasToken   bool          `json:"has_token"`
	Expired    bool          `json:"expired"`
	Subject    string        `json:"subject,omitempty"`
	Nombre     string        `json:"nombre,omitempty"`
	ExpiresAt  time.Time     `json:"expires_at,omitempty"`
	Remaining  time.Duration `json:"remaining_ns"`
	AlertShown bool          `json:"alert_shown"`
}

// AuthResponse is the backend login payload: the token plus the profile.
type AuthResponse struct {
	Token       string       `json:"token"`
	ID          int64        `json:"id"`
	Email       string       `json:"email"`
	Rol         string       `json:"rol"`
	Nombre      string       `json:"nombre"`
	Apellido    string       `json:"apellido"`
	CI          string       `json:"ci"`
	Telefono    string       `json:"telefono"`
	FechaNac    string       `json:"fechaNac"`
	TipoCliente CustomerType `json:"tipoCliente"`
}

// Profile extracts the user profile from the login payload.
func (r AuthResponse) Profile() UserProfile {
	return UserProfile{
		ID:          r.ID,
		Email:       r.Email,
		Nombre:      r.Nombre,
		Apellido:    r.Apellido,
		CI:          r.CI,
		Telefono:    r.Telefono,
		FechaNac:    r.FechaNac,
		Rol:         r.Rol,
		TipoCliente: r.TipoCliente,
	}
}

// LoginRequest is forwarded to the backend as-is.
type LoginRequest struct {
	Email      string `json:"email"`
	Contrasena string `json:"contrasenia"`
}

// RegisterRequest creates a customer account.
type RegisterRequest struct {
	Nombre      string       `json:"nombre"`
	Apellido    string       `json:"apellido"`
	CI          string       `json:"ci"`
	Email       string       `json:"email"`
	Contrasena  string       `json:"contrasenia"`
	Telefono    string       `json:"telefono"`
	FechaNac    string       `json:"fechaNac"`
	TipoCliente CustomerType `json:"tipoCliente,omitempty"`
}
