package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

// PushTokenService keeps the device push token in the store and, while a
// user is logged in, registered with the backend.
type PushTokenService struct {
	backend ports.BackendAPI
	store   ports.KeyValueStore
	logger  zerolog.Logger
}

func NewPushTokenService(backend ports.BackendAPI, store ports.KeyValueStore, logger zerolog.Logger) *PushTokenService {
	return &PushTokenService{backend: backend, store: store, logger: logger}
}

// Sync stores token and registers it with the backend. An empty token
// re-registers the stored one. Without a credential the token is only stored.
func (s *PushTokenService) Sync(ctx context.Context, token string) error {
	if token == "" {
		stored, err := s.store.Get(ctx, domain.KeyFCMToken)
		if errors.Is(err, ports.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		token = stored
	} else if err := s.store.Set(ctx, domain.KeyFCMToken, token); err != nil {
		return err
	}

	if _, err := s.store.Get(ctx, domain.KeyAuthToken); err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			s.logger.Debug().Msg("push token stored, registration deferred until login")
			return nil
		}
		return err
	}
	if err := s.backend.UpdatePushToken(ctx, token); err != nil {
		return err
	}
	s.logger.Info().Msg("push token registered")
	return nil
}

// Clear unregisters the device from the backend. The stored token is kept
// for the next login.
func (s *PushTokenService) Clear(ctx context.Context) error {
	if _, err := s.store.Get(ctx, domain.KeyAuthToken); errors.Is(err, ports.ErrKeyNotFound) {
		return nil
	}
	if err := s.backend.ClearPushToken(ctx); err != nil {
		return err
	}
	s.logger.Info().Msg("push token unregistered")
	return nil
}
