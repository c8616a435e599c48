package service

import (
	"context"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

// TicketService lists the purchases of the logged-in customer.
type TicketService struct {
	backend ports.BackendAPI
	users   *profileStore
}

func NewTicketService(backend ports.BackendAPI, store ports.KeyValueStore) *TicketService {
	return &TicketService{backend: backend, users: &profileStore{store: store}}
}

func (s *TicketService) History(ctx context.Context) ([]domain.Ticket, error) {
	user, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	tickets, err := s.backend.TicketHistory(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}
