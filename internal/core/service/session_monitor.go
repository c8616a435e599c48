package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
	"github.com/omnibus/ticket-checkout/internal/pkg/metrics"
)

const defaultCheckInterval = 15 * time.Second

// expiryMarkers in a 401/403 body identify a token-expiry failure.
var expiryMarkers = []string{"TOKEN_EXPIRED", "expired", "expirado"}

// LogoutFunc is the authentication layer's logout, registered on the monitor.
type LogoutFunc func(ctx context.Context) error

// SessionMonitorConfig tunes the monitor.
type SessionMonitorConfig struct {
	CheckInterval time.Duration
	// ForbiddenIsExpiry treats every 403 as an expired session. The backend
	// does not distinguish permission failures from expired tokens on 403.
	ForbiddenIsExpiry bool
}

// SessionMonitor detects an expired credential and forces a single logout.
// States: IDLE → MONITORING → ALERTING → LOGGING_OUT → IDLE.
type SessionMonitor struct {
	store     ports.KeyValueStore
	presenter ports.Presenter
	log       zerolog.Logger

	interval          time.Duration
	forbiddenIsExpiry bool
	now               func() time.Time

	mu          sync.Mutex
	state       domain.SessionState
	alertShown  bool
	cancelTimer context.CancelFunc
	onLogout    LogoutFunc

	timers atomic.Int32
}

// NewSessionMonitor returns a monitor in IDLE.
func NewSessionMonitor(store ports.KeyValueStore, presenter ports.Presenter, cfg SessionMonitorConfig, log zerolog.Logger) *SessionMonitor {
	interval := cfg.CheckInterval
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	return &SessionMonitor{
		store:             store,
		presenter:         presenter,
		log:               log.With().Str("component", "session_monitor").Logger(),
		interval:          interval,
		forbiddenIsExpiry: cfg.ForbiddenIsExpiry,
		now:               time.Now,
		state:             domain.SessionIdle,
	}
}

// SetLogoutCallback registers the authentication layer's logout.
func (m *SessionMonitor) SetLogoutCallback(fn LogoutFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = fn
}

func (m *SessionMonitor) State() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start begins periodic expiry checks. It is a no-op while a timer is already
// running. One check runs before Start returns.
func (m *SessionMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancelTimer != nil {
		m.mu.Unlock()
		m.log.Debug().Msg("session check already running")
		return
	}
	timerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancelTimer = cancel
	if m.state == domain.SessionIdle {
		m.state = domain.SessionMonitoring
	}
	m.timers.Add(1)
	m.mu.Unlock()

	m.log.Info().Dur("interval", m.interval).Msg("session check started")

	m.Check(timerCtx)
	go m.run(timerCtx)
}

func (m *SessionMonitor) run(ctx context.Context) {
	defer m.timers.Add(-1)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			m.Check(ctx)
		}
	}
}

// Stop cancels the timer, returns to IDLE and clears the alerted flag.
func (m *SessionMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopTimerLocked() {
		m.log.Info().Msg("session check stopped")
	}
	m.state = domain.SessionIdle
	m.alertShown = false
}

func (m *SessionMonitor) stopTimerLocked() bool {
	if m.cancelTimer == nil {
		return false
	}
	m.cancelTimer()
	m.cancelTimer = nil
	return true
}

// Check evaluates the stored credential once and alerts if it has expired.
// The alert is dropped when monitoring stopped while the check was running.
func (m *SessionMonitor) Check(ctx context.Context) bool {
	expired, _ := m.expired(ctx)
	if !expired {
		metrics.SessionChecksTotal.WithLabelValues("valid").Inc()
		return false
	}
	metrics.SessionChecksTotal.WithLabelValues("expired").Inc()
	m.log.Info().Msg("expired credential detected by periodic check")
	m.alert(ctx, "timer")
	return true
}

// IsExpired reports whether the stored credential is expired. Missing or
// undecodable credentials are expired.
func (m *SessionMonitor) IsExpired(ctx context.Context) bool {
	expired, _ := m.expired(ctx)
	return expired
}

func (m *SessionMonitor) expired(ctx context.Context) (bool, domain.Claims) {
	token, err := m.store.Get(ctx, domain.KeyAuthToken)
	if err != nil {
		if !errors.Is(err, ports.ErrKeyNotFound) {
			m.log.Warn().Err(err).Msg("read credential failed, treating as expired")
		}
		return true, domain.Claims{}
	}
	claims, err := ParseClaims(token)
	if err != nil {
		m.log.Warn().Err(err).Msg("decode credential failed, treating as expired")
		return true, domain.Claims{}
	}
	return claims.Expired(m.now()), claims
}

// alert shows the session-expired prompt at most once per expiry episode.
func (m *SessionMonitor) alert(ctx context.Context, source string) {
	m.mu.Lock()
	if m.alertShown || m.state == domain.SessionLoggingOut {
		m.mu.Unlock()
		return
	}
	if source == "timer" && (ctx.Err() != nil || m.state == domain.SessionIdle) {
		m.mu.Unlock()
		m.log.Debug().Msg("session check finished after monitoring stopped, no prompt")
		return
	}
	m.alertShown = true
	m.state = domain.SessionAlerting
	m.mu.Unlock()

	metrics.SessionExpiryPromptsTotal.WithLabelValues(source).Inc()
	m.log.Warn().Str("source", source).Msg("session expired, prompting user")

	m.presenter.Present(ctx, domain.Prompt{
		ID:      uuid.NewString(),
		Kind:    domain.PromptSessionExpired,
		Title:   "Session expired",
		Message: "Your session has expired. Please sign in again.",
		Actions: []domain.PromptAction{
			{Action: "acknowledge", Label: "Sign in"},
		},
		CreatedAt: m.now(),
	})
}

// Acknowledge is the user's answer to the session-expired prompt.
func (m *SessionMonitor) Acknowledge(ctx context.Context) {
	if m.State() != domain.SessionAlerting {
		m.log.Debug().Msg("acknowledge without pending session prompt, ignoring")
		return
	}
	m.PerformLogout(ctx)
}

// PerformLogout stops monitoring and runs the registered logout callback, or
// purges the stored credential and returns to the login screen.
func (m *SessionMonitor) PerformLogout(ctx context.Context) {
	m.mu.Lock()
	m.state = domain.SessionLoggingOut
	m.alertShown = false
	m.stopTimerLocked()
	onLogout := m.onLogout
	m.mu.Unlock()

	m.log.Info().Msg("logging out after session expiry")

	fallback := onLogout == nil
	if onLogout != nil {
		if err := onLogout(ctx); err != nil {
			m.log.Error().Err(err).Msg("logout callback failed, purging credential directly")
			fallback = true
		}
	}
	if fallback {
		metrics.SessionLogoutsTotal.WithLabelValues("fallback").Inc()
		if err := m.store.Delete(ctx, domain.KeyAuthToken, domain.KeyUserData); err != nil {
			m.log.Error().Err(err).Msg("purge credential failed")
		}
		m.presenter.Navigate(ctx, domain.ScreenLogin)
	} else {
		metrics.SessionLogoutsTotal.WithLabelValues("callback").Inc()
	}

	m.mu.Lock()
	m.state = domain.SessionIdle
	m.mu.Unlock()
}

// HandleUnauthorizedResponse routes 401, and 403 when configured, to the
// single-prompt expiry path. Other statuses return err untouched.
func (m *SessionMonitor) HandleUnauthorizedResponse(ctx context.Context, status int, body []byte, err error) error {
	if !m.isExpiryResponse(status, body) {
		return err
	}
	m.log.Info().Int("status", status).Msg("expired credential detected in backend response")
	m.alert(ctx, "api")
	return fmt.Errorf("backend status %d: %w", status, domain.ErrSessionExpired)
}

func (m *SessionMonitor) isExpiryResponse(status int, body []byte) bool {
	switch status {
	case 401:
		return true
	case 403:
		if m.forbiddenIsExpiry {
			return true
		}
		text := string(body)
		for _, marker := range expiryMarkers {
			if strings.Contains(text, marker) {
				return true
			}
		}
	}
	return false
}

// VerifyBeforeAction returns false, and alerts, when the credential has
// expired. Callers abort the action on false.
func (m *SessionMonitor) VerifyBeforeAction(ctx context.Context, label string) bool {
	if !m.IsExpired(ctx) {
		return true
	}
	m.log.Info().Str("action", label).Msg("expired credential before action")
	m.alert(ctx, "action")
	return false
}

// Status describes the held credential for diagnostics.
func (m *SessionMonitor) Status(ctx context.Context) domain.SessionStatus {
	expired, claims := m.expired(ctx)

	m.mu.Lock()
	st := domain.SessionStatus{
		State:      m.state,
		AlertShown: m.alertShown,
	}
	m.mu.Unlock()

	st.HasToken = !claims.ExpiresAt.IsZero() || claims.Subject != ""
	st.Expired = expired
	st.Subject = claims.Subject
	st.Nombre = claims.Nombre
	st.ExpiresAt = claims.ExpiresAt
	st.Remaining = remaining(claims, m.now())
	return st
}

// activeTimers is the number of running check loops.
func (m *SessionMonitor) activeTimers() int {
	return int(m.timers.Load())
}
