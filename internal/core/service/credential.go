package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
)

var errEmptyToken = errors.New("empty token")

// ParseClaims decodes the backend JWT without verifying its signature: the
// client never holds the signing key and only needs the expiry and identity.
func ParseClaims(token string) (domain.Claims, error) {
	if token == "" {
		return domain.Claims{}, errEmptyToken
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return domain.Claims{}, fmt.Errorf("parse token: %w", err)
	}

	var c domain.Claims
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	exp, err := mc.GetExpirationTime()
	if err != nil {
		return domain.Claims{}, fmt.Errorf("parse token exp: %w", err)
	}
	if exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}

	c.Nombre, _ = mc["nombre"].(string)
	c.Rol, _ = mc["rol"].(string)
	if id, ok := mc["userId"].(float64); ok {
		c.UserID = int64(id)
	}
	c.Authorities = authorities(mc["authorities"])

	return c, nil
}

// authorities accepts both ["ROLE_X"] and [{"authority":"ROLE_X"}].
func authorities(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch a := item.(type) {
		case string:
			out = append(out, a)
		case map[string]any:
			if s, ok := a["authority"].(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// remaining is how long until exp; negative when already past.
func remaining(c domain.Claims, now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
