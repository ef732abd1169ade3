// Package linktoken issues the one-time tokens that prove a logged-in
// user's intent to bind a new provider identity to their contact.
package linktoken

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

// Service creates link-account tokens. Tokens are random UUIDs stored on
// the contact; the resolver consumes them on a successful link.
type Service struct {
	store repository.ContactStore
}

func NewService(store repository.ContactStore) *Service {
	return &Service{store: store}
}

// Create generates a fresh token for the contact and persists it,
// replacing any previous unconsumed token.
func (s *Service) Create(ctx context.Context, contactID string) (uuid.UUID, error) {
	contact, err := s.store.FindByID(ctx, contactID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load contact: %w", err)
	}

	token := uuid.New()
	contact.LinkAccountToken = &token
	if err := s.store.Save(ctx, contact); err != nil {
		return uuid.Nil, fmt.Errorf("store link token: %w", err)
	}

	logger.From(ctx).Info("link token created",
		logger.Component("linktoken"),
		logger.ContactID(contactID),
	)
	return token, nil
}
