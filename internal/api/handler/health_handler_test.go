package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	e := newEcho()
	c, rec := newJSONContext(e, http.MethodGet, "/health", "")

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthDependenciesHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		checks   map[string]HealthCheck
		wantCode int
		wantDown string
	}{
		{"all up", map[string]HealthCheck{"redis": ok, "mongodb": ok}, http.StatusOK, ""},
		{"redis down", map[string]HealthCheck{"redis": down, "mongodb": ok}, http.StatusServiceUnavailable, "redis"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			c, rec := newJSONContext(e, http.MethodGet, "/health/ready", "")

			if err := NewHealthDependenciesHandler(tc.checks).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}

			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if tc.wantDown != "" && resp.Dependencies[tc.wantDown].Status != "unhealthy" {
				t.Fatalf("expected %s unhealthy, got %+v", tc.wantDown, resp.Dependencies)
			}
		})
	}
}
