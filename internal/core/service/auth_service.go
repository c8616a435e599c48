package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

// profileStore reads and writes the cached user profile.
type profileStore struct {
	store ports.KeyValueStore
}

func (p *profileStore) Load(ctx context.Context) (*domain.UserProfile, error) {
	raw, err := p.store.Get(ctx, domain.KeyUserData)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	var u domain.UserProfile
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode %s: %w", domain.KeyUserData, err)
	}
	return &u, nil
}

func (p *profileStore) Save(ctx context.Context, u domain.UserProfile) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, domain.KeyUserData, string(raw))
}

// AuthService implements login, registration and logout for the client. It
// owns the stored credential and starts and stops the session monitor.
type AuthService struct {
	backend   ports.BackendAPI
	store     ports.KeyValueStore
	users     *profileStore
	monitor   ports.SessionMonitor
	push      ports.PushTokenService
	presenter ports.Presenter
	logger    zerolog.Logger
}

func NewAuthService(backend ports.BackendAPI, store ports.KeyValueStore, monitor ports.SessionMonitor, push ports.PushTokenService, presenter ports.Presenter, logger zerolog.Logger) *AuthService {
	return &AuthService{
		backend:   backend,
		store:     store,
		users:     &profileStore{store: store},
		monitor:   monitor,
		push:      push,
		presenter: presenter,
		logger:    logger,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	resp, err := s.backend.Login(ctx, domain.LoginRequest{Email: email, Contrasena: password})
	if err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == 400 || apiErr.StatusCode == 401) {
			return nil, fmt.Errorf("%s: %w", apiErr.Message, domain.ErrInvalidCredentials)
		}
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login response without token: %w", domain.ErrConfiguration)
	}
	if _, err := ParseClaims(resp.Token); err != nil {
		return nil, fmt.Errorf("login token: %w", domain.ErrConfiguration)
	}

	profile := resp.Profile()
	if err := s.store.Set(ctx, domain.KeyAuthToken, resp.Token); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, profile); err != nil {
		return nil, err
	}

	s.monitor.Start(ctx)
	if s.push != nil {
		if err := s.push.Sync(ctx, ""); err != nil {
			s.logger.Warn().Err(err).Msg("push token sync after login failed")
		}
	}

	s.logger.Info().Int64("user_id", profile.ID).Str("rol", profile.Rol).Msg("user logged in")
	return &profile, nil
}

// Register creates the account and logs in with the same credentials.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.UserProfile, error) {
	if strings.TrimSpace(req.Email) == "" || req.Contrasena == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if req.TipoCliente == "" {
		req.TipoCliente = domain.CustomerComun
	}
	if err := s.backend.Register(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info().Str("tipo_cliente", string(req.TipoCliente)).Msg("user registered")
	return s.Login(ctx, req.Email, req.Contrasena)
}

// Logout clears the device registration and the stored credential, stops the
// session monitor and returns to the login screen. It is also the monitor's
// logout callback.
func (s *AuthService) Logout(ctx context.Context) error {
	if s.push != nil {
		if err := s.push.Clear(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("push token clear on logout failed")
		}
	}
	s.monitor.Stop()
	if err := s.store.Delete(ctx, domain.KeyAuthToken, domain.KeyUserData); err != nil {
		return err
	}
	s.presenter.Navigate(ctx, domain.ScreenLogin)
	s.logger.Info().Msg("user logged out")
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context) (*domain.UserProfile, error) {
	return s.users.Load(ctx)
}

// UpdateProfile overwrites the editable fields of the cached profile. The
// identity fields (id, email, role) are kept from the stored copy.
func (s *AuthService) UpdateProfile(ctx context.Context, profile domain.UserProfile) error {
	current, err := s.users.Load(ctx)
	if err != nil {
		return err
	}
	profile.ID = current.ID
	profile.Email = current.Email
	profile.Rol = current.Rol
	if profile.TipoCliente == "" {
		profile.TipoCliente = current.TipoCliente
	}
	return s.users.Save(ctx, profile)
}
