package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestParseClaims(t *testing.T) {
	exp := time.Unix(1_900_000_000, 0)

	c, err := ParseClaims(signToken(t, exp))
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if c.Subject != "ana@example.com" || c.Nombre != "Ana" || c.UserID != 42 || c.Rol != "CLIENTE" {
		t.Errorf("unexpected claims: %+v", c)
	}
	if !c.ExpiresAt.Equal(exp) {
		t.Errorf("expected exp %v, got %v", exp, c.ExpiresAt)
	}
	if len(c.Authorities) != 1 || c.Authorities[0] != "ROLE_CLIENTE" {
		t.Errorf("unexpected authorities: %v", c.Authorities)
	}
}

func TestParseClaims_StringAuthorities(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         "x@example.com",
		"exp":         time.Now().Add(time.Hour).Unix(),
		"authorities": []string{"ROLE_VENDEDOR", "ROLE_CLIENTE"},
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	c, err := ParseClaims(token)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if len(c.Authorities) != 2 {
		t.Errorf("expected 2 authorities, got %v", c.Authorities)
	}
}

func TestParseClaims_Invalid(t *testing.T) {
	for _, token := range []string{"", "abc", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig"} {
		if _, err := ParseClaims(token); err == nil {
			t.Errorf("expected error for %q", token)
		}
	}
}
