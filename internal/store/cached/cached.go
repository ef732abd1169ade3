// Package cached decorates a ContactStore with a subject-to-contact
// lookup cache. Subject lookups dominate: every returning user hits one
// per login. Only that path is cached; everything else passes through.
package cached

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/idlink/internal/cache"
	"github.com/dropDatabas3/idlink/internal/domain/repository"
)

const subjectKeyPrefix = "subject:"

type Store struct {
	inner repository.ContactStore
	cache cache.Cache
	ttl   time.Duration

	// sf collapses concurrent lookups for the same subject into one
	// backend query.
	sf singleflight.Group
}

func New(inner repository.ContactStore, c cache.Cache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Store{inner: inner, cache: c, ttl: ttl}
}

func (s *Store) FindByID(ctx context.Context, id string) (*repository.Contact, error) {
	return s.inner.FindByID(ctx, id)
}

func (s *Store) FindBySubject(ctx context.Context, subject uuid.UUID) ([]*repository.Contact, error) {
	key := subjectKeyPrefix + subject.String()

	if id, ok := s.cache.Get(key); ok {
		contact, err := s.inner.FindByID(ctx, string(id))
		if err == nil {
			return []*repository.Contact{contact}, nil
		}
		// stale entry: the contact may have been unlinked or removed
		s.cache.Delete(key)
		if !repository.IsNotFound(err) {
			return nil, err
		}
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		contacts, err := s.inner.FindBySubject(ctx, subject)
		if err != nil {
			return nil, err
		}
		// only an unambiguous binding is worth caching
		if len(contacts) == 1 {
			s.cache.Set(key, []byte(contacts[0].ID), s.ttl)
		}
		return contacts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*repository.Contact), nil
}

func (s *Store) FindByLinkToken(ctx context.Context, token uuid.UUID) ([]*repository.Contact, error) {
	return s.inner.FindByLinkToken(ctx, token)
}

func (s *Store) FindByEmailOrPhone(ctx context.Context, email, phone string) ([]*repository.Contact, error) {
	return s.inner.FindByEmailOrPhone(ctx, email, phone)
}

func (s *Store) Save(ctx context.Context, contact *repository.Contact) error {
	if err := s.inner.Save(ctx, contact); err != nil {
		return err
	}
	if contact.LinkedSubject != nil {
		s.cache.Delete(subjectKeyPrefix + contact.LinkedSubject.String())
	}
	return nil
}
