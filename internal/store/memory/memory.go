// Package memory is an in-process ContactStore used in dev mode and
// tests. Lookups return deep copies: like the real backend, mutations
// only become visible through Save.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
)

type Store struct {
	mu       sync.RWMutex
	contacts map[string]*repository.Contact
	order    []string // insertion order keeps lookups deterministic
}

func New() *Store {
	return &Store{contacts: map[string]*repository.Contact{}}
}

func (s *Store) FindByID(ctx context.Context, id string) (*repository.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(c), nil
}

func (s *Store) FindBySubject(ctx context.Context, subject uuid.UUID) ([]*repository.Contact, error) {
	return s.filter(func(c *repository.Contact) bool {
		return c.LinkedSubject != nil && *c.LinkedSubject == subject
	}), nil
}

func (s *Store) FindByLinkToken(ctx context.Context, token uuid.UUID) ([]*repository.Contact, error) {
	return s.filter(func(c *repository.Contact) bool {
		return c.LinkAccountToken != nil && *c.LinkAccountToken == token
	}), nil
}

func (s *Store) FindByEmailOrPhone(ctx context.Context, email, phone string) ([]*repository.Contact, error) {
	return s.filter(func(c *repository.Contact) bool {
		if email != "" && strings.EqualFold(c.Email, email) {
			return true
		}
		if phone == "" {
			return false
		}
		for _, a := range c.Addresses {
			if a.DaytimePhone == phone || a.EveningPhone == phone {
				return true
			}
		}
		return false
	}), nil
}

func (s *Store) Save(ctx context.Context, contact *repository.Contact) error {
	if contact == nil {
		return repository.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}

	// Mirror the backend's uniqueness guard on the linked subject.
	if contact.LinkedSubject != nil {
		for _, id := range s.order {
			other := s.contacts[id]
			if other.ID != contact.ID &&
				other.LinkedSubject != nil &&
				*other.LinkedSubject == *contact.LinkedSubject {
				return repository.ErrConflict
			}
		}
	}

	now := time.Now()
	if _, exists := s.contacts[contact.ID]; !exists {
		contact.CreatedAt = now
		s.order = append(s.order, contact.ID)
	}
	contact.UpdatedAt = now
	s.contacts[contact.ID] = clone(contact)
	return nil
}

func (s *Store) filter(match func(*repository.Contact) bool) []*repository.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*repository.Contact
	for _, id := range s.order {
		if c := s.contacts[id]; match(c) {
			out = append(out, clone(c))
		}
	}
	return out
}

func clone(c *repository.Contact) *repository.Contact {
	cp := *c
	if c.LinkedSubject != nil {
		v := *c.LinkedSubject
		cp.LinkedSubject = &v
	}
	if c.LinkAccountToken != nil {
		v := *c.LinkAccountToken
		cp.LinkAccountToken = &v
	}
	if c.BirthDate != nil {
		v := *c.BirthDate
		cp.BirthDate = &v
	}
	cp.Addresses = make([]*repository.ContactAddress, len(c.Addresses))
	for i, a := range c.Addresses {
		ac := *a
		if a.ProviderType != nil {
			t := *a.ProviderType
			ac.ProviderType = &t
		}
		cp.Addresses[i] = &ac
	}
	return &cp
}
