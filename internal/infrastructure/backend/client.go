// Package backend is the authenticated JSON client of the ticketing REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
	defaultMessage = "request failed"
)

// Config holds the backend connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements ports.BackendAPI. Authenticated calls carry the stored
// bearer credential; a 401 on such a call purges it.
type Client struct {
	baseURL      string
	http         *http.Client
	store        ports.KeyValueStore
	unauthorized ports.UnauthorizedHandler
	log          zerolog.Logger
}

func New(cfg Config, store ports.KeyValueStore, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		store:   store,
		log:     log.With().Str("component", "backend").Logger(),
	}
}

// SetUnauthorizedHandler routes 401/403 responses of authenticated calls to h.
func (c *Client) SetUnauthorizedHandler(h ports.UnauthorizedHandler) {
	c.unauthorized = h
}

// --- Payments ---

func (c *Client) CreateOrder(ctx context.Context, amount float64) (*domain.CreatedOrder, error) {
	var out domain.CreatedOrder
	body := map[string]float64{"amount": amount}
	if err := c.do(ctx, http.MethodPost, "/api/paypal/orders", body, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*domain.CaptureResult, error) {
	var out domain.CaptureResult
	path := "/api/paypal/orders/" + url.PathEscape(orderID) + "/capture"
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterPurchase(ctx context.Context, req domain.PurchaseRequest) (*domain.Ticket, error) {
	var out domain.Ticket
	if err := c.do(ctx, http.MethodPost, "/api/vendedor/pasajes/comprar", req, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Accounts ---

func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", req, false, nil)
}

func (c *Client) TicketHistory(ctx context.Context, customerID int64) ([]domain.Ticket, error) {
	var out []domain.Ticket
	path := fmt.Sprintf("/api/cliente/%d/historial-pasajes", customerID)
	if err := c.do(ctx, http.MethodGet, path, nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdatePushToken(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPut, "/api/cliente/fcm-token", map[string]string{"token": token}, true, nil)
}

func (c *Client) ClearPushToken(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/cliente/fcm-token", nil, true, nil)
}

// --- Transport ---

func (c *Client) do(ctx context.Context, method, path string, in any, auth bool, out any) error {
	var reader io.Reader
	if in != nil && (method == http.MethodPost || method == http.MethodPut) {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if auth {
		token, err := c.store.Get(ctx, domain.KeyAuthToken)
		switch {
		case err == nil:
			req.Header.Set("Authorization", "Bearer "+token)
		case !errors.Is(err, ports.ErrKeyNotFound):
			return fmt.Errorf("read credential: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend unreachable")
		return fmt.Errorf("%s %s: %w: %v", method, path, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w: %v", method, path, domain.ErrNetwork, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode >= http.StatusBadRequest {
		return c.handleErrorResponse(ctx, resp.StatusCode, body, auth)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) handleErrorResponse(ctx context.Context, status int, body []byte, auth bool) error {
	apiErr := &domain.APIError{StatusCode: status, Message: errorMessage(body)}
	if !auth {
		return apiErr
	}

	if status == http.StatusUnauthorized {
		if err := c.store.Delete(ctx, domain.KeyAuthToken, domain.KeyUserData); err != nil {
			c.log.Error().Err(err).Msg("purge credential after 401 failed")
		}
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		if c.unauthorized != nil {
			return c.unauthorized.HandleUnauthorizedResponse(ctx, status, body, apiErr)
		}
		if status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", domain.ErrSessionExpired, apiErr)
		}
	}
	return apiErr
}

// errorMessage extracts {"message"} or {"error"} from a JSON error body, or
// falls back to the raw text.
func errorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return defaultMessage
}
