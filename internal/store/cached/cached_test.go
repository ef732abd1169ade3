package cached

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	memcache "github.com/dropDatabas3/idlink/internal/cache/memory"
	"github.com/dropDatabas3/idlink/internal/domain/repository"
	memstore "github.com/dropDatabas3/idlink/internal/store/memory"
)

// countingStore tracks how often the backend is asked for a subject.
type countingStore struct {
	repository.ContactStore
	subjectCalls int
}

func (s *countingStore) FindBySubject(ctx context.Context, subject uuid.UUID) ([]*repository.Contact, error) {
	s.subjectCalls++
	return s.ContactStore.FindBySubject(ctx, subject)
}

func newFixture(t *testing.T) (*Store, *countingStore, uuid.UUID) {
	t.Helper()
	inner := &countingStore{ContactStore: memstore.New()}
	sub := uuid.New()
	if err := inner.Save(context.Background(), &repository.Contact{
		ID:            "c-1",
		LinkedSubject: &sub,
		Email:         "ola@example.com",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return New(inner, memcache.New(time.Minute), time.Minute), inner, sub
}

func TestFindBySubject_CachesSecondLookup(t *testing.T) {
	s, inner, sub := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := s.FindBySubject(ctx, sub)
		if err != nil {
			t.Fatalf("FindBySubject #%d: %v", i, err)
		}
		if len(got) != 1 || got[0].ID != "c-1" {
			t.Fatalf("FindBySubject #%d = %v", i, got)
		}
	}
	if inner.subjectCalls != 1 {
		t.Fatalf("backend subject lookups = %d, want 1", inner.subjectCalls)
	}
}

func TestSave_InvalidatesSubjectEntry(t *testing.T) {
	s, inner, sub := newFixture(t)
	ctx := context.Background()

	if _, err := s.FindBySubject(ctx, sub); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	c, _ := s.FindByID(ctx, "c-1")
	c.Email = "new@example.com"
	if err := s.Save(ctx, c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.FindBySubject(ctx, sub)
	if err != nil {
		t.Fatalf("FindBySubject: %v", err)
	}
	if got[0].Email != "new@example.com" {
		t.Fatalf("email = %q, want the fresh value", got[0].Email)
	}
	// The cache entry was dropped on Save, so the lookup above had to go
	// back to the backend.
	if inner.subjectCalls != 2 {
		t.Fatalf("backend subject lookups = %d, want 2", inner.subjectCalls)
	}
}

func TestFindBySubject_Miss(t *testing.T) {
	s, _, _ := newFixture(t)

	got, err := s.FindBySubject(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("FindBySubject: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unknown subject matched %d contacts", len(got))
	}
}
