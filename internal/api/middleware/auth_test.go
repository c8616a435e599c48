package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

type mapStore map[string]string

func (m mapStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return v, nil
}

func (m mapStore) Set(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

func (m mapStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m, k)
	}
	return nil
}

type stubGuard struct {
	allow  bool
	labels []string
}

func (g *stubGuard) VerifyBeforeAction(_ context.Context, label string) bool {
	g.labels = append(g.labels, label)
	return g.allow
}

func signedToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         "ana@example.com",
		"rol":         "CLIENTE",
		"userId":      42,
		"exp":         time.Now().Add(time.Hour).Unix(),
		"authorities": []map[string]string{{"authority": "ROLE_CLIENTE"}},
	})
	signed, err := token.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestSessionMiddleware_ValidCredential(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/checkouts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/checkouts")

	store := mapStore{domain.KeyAuthToken: signedToken(t)}
	guard := &stubGuard{allow: true}

	called := false
	mw := Session(store, guard)
	handler := mw(func(c echo.Context) error {
		called = true
		if c.Get("subject") != "ana@example.com" {
			t.Fatalf("subject not set")
		}
		if c.Get("role") != "CLIENTE" {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if len(guard.labels) != 1 || guard.labels[0] != "POST /v1/checkouts" {
		t.Fatalf("expected guard consulted with route label, got %v", guard.labels)
	}
}

func TestSessionMiddleware_NoCredential(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	guard := &stubGuard{allow: true}
	mw := Session(mapStore{}, guard)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(guard.labels) != 0 {
		t.Fatalf("no session prompt without a credential")
	}
}

func TestSessionMiddleware_Expired(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Session(mapStore{domain.KeyAuthToken: signedToken(t)}, &stubGuard{allow: false})
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_MalformedToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Session(mapStore{domain.KeyAuthToken: "not-a-token"}, &stubGuard{allow: true})
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
