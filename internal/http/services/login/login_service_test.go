package login

import (
	"context"
	"sync"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/email"
	dto "github.com/dropDatabas3/idlink/internal/http/dto/login"
	"github.com/dropDatabas3/idlink/internal/resolver"
	"github.com/dropDatabas3/idlink/internal/store/memory"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string // recipient addresses
}

func (f *fakeSender) Send(to, subject, htmlBody, textBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return raw
}

func newService(store repository.ContactStore, sender email.Sender) Service {
	return NewService(Deps{
		Store:    store,
		Notifier: email.NewNotifier(sender),
		Sync:     resolver.DefaultSyncOptions(),
	})
}

func TestResolve_NewAccount(t *testing.T) {
	svc := newService(memory.New(), nil)

	token := signToken(t, jwt.MapClaims{
		"sub":   uuid.NewString(),
		"email": "fresh@example.com",
	})
	resp, err := svc.Resolve(context.Background(), dto.ResolveRequest{IDToken: token})
	require.NoError(t, err)
	require.Equal(t, string(resolver.BranchNew), resp.Branch)
	require.Equal(t, "fresh@example.com", resp.NewAccountEmail)
	require.Empty(t, resp.ContactID)
}

func TestResolve_SubjectBranchSyncsContact(t *testing.T) {
	store := memory.New()
	sub := uuid.New()
	require.NoError(t, store.Save(context.Background(), &repository.Contact{
		ID:            "c-1",
		LinkedSubject: &sub,
		Email:         "old@example.com",
	}))

	svc := newService(store, nil)
	token := signToken(t, jwt.MapClaims{
		"sub":         sub.String(),
		"email":       "new@example.com",
		"given_name":  "Ola",
		"family_name": "Nordmann",
	})

	resp, err := svc.Resolve(context.Background(), dto.ResolveRequest{IDToken: token})
	require.NoError(t, err)
	require.Equal(t, string(resolver.BranchSubject), resp.Branch)
	require.Equal(t, "c-1", resp.ContactID)

	saved, err := store.FindByID(context.Background(), "c-1")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", saved.Email)
	require.Equal(t, "Ola", saved.FirstName)
}

func TestResolve_LinkConsumesTokenAndNotifies(t *testing.T) {
	store := memory.New()
	linkToken := uuid.New()
	require.NoError(t, store.Save(context.Background(), &repository.Contact{
		ID:               "c-1",
		LinkAccountToken: &linkToken,
		Email:            "kari@example.com",
		FirstName:        "Kari",
	}))

	sender := &fakeSender{}
	svc := newService(store, sender)
	sub := uuid.New()
	token := signToken(t, jwt.MapClaims{"sub": sub.String()})

	resp, err := svc.Resolve(context.Background(), dto.ResolveRequest{
		IDToken:   token,
		LinkToken: linkToken.String(),
	})
	require.NoError(t, err)
	require.Equal(t, string(resolver.BranchLink), resp.Branch)
	require.Equal(t, "c-1", resp.ContactID)

	saved, err := store.FindByID(context.Background(), "c-1")
	require.NoError(t, err)
	require.Nil(t, saved.LinkAccountToken, "consumed token must be cleared")
	require.NotNil(t, saved.LinkedSubject)
	require.Equal(t, sub, *saved.LinkedSubject)
	require.Equal(t, []string{"kari@example.com"}, sender.sent)

	// The token is gone: replaying the same link fails. The subject is
	// now bound, so the attempt dies on the already-linked guard.
	_, err = svc.Resolve(context.Background(), dto.ResolveRequest{
		IDToken:   token,
		LinkToken: linkToken.String(),
	})
	require.ErrorIs(t, err, ErrAlreadyLinked)
}

func TestResolve_ErrorMapping(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Save(context.Background(), &repository.Contact{
		ID:        "c-1",
		Email:     "shared@example.com",
		FirstName: "Kari",
		LastName:  "Hansen",
	}))

	svc := newService(store, nil)
	token := signToken(t, jwt.MapClaims{
		"sub":         uuid.NewString(),
		"email":       "shared@example.com",
		"given_name":  "Ola",
		"family_name": "Nordmann",
	})

	_, err := svc.Resolve(context.Background(), dto.ResolveRequest{IDToken: token})
	require.ErrorIs(t, err, ErrSanityCheckFailed)

	_, err = svc.Resolve(context.Background(), dto.ResolveRequest{
		IDToken:   token,
		LinkToken: uuid.NewString(),
	})
	require.ErrorIs(t, err, ErrLinkTargetNotFound)
}

func TestResolve_BadInput(t *testing.T) {
	svc := newService(memory.New(), nil)

	_, err := svc.Resolve(context.Background(), dto.ResolveRequest{})
	require.ErrorIs(t, err, ErrMissingIDToken)

	_, err = svc.Resolve(context.Background(), dto.ResolveRequest{IDToken: "garbage"})
	require.ErrorIs(t, err, ErrMalformedIDToken)

	_, err = svc.Resolve(context.Background(), dto.ResolveRequest{
		IDToken: signToken(t, jwt.MapClaims{"sub": "not-a-uuid"}),
	})
	require.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestCreateLinkToken(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Save(context.Background(), &repository.Contact{ID: "c-1"}))

	svc := newService(store, nil)

	resp, err := svc.CreateLinkToken(context.Background(), "c-1")
	require.NoError(t, err)
	parsed, err := uuid.Parse(resp.LinkToken)
	require.NoError(t, err)

	saved, err := store.FindByID(context.Background(), "c-1")
	require.NoError(t, err)
	require.NotNil(t, saved.LinkAccountToken)
	require.Equal(t, parsed, *saved.LinkAccountToken)

	_, err = svc.CreateLinkToken(context.Background(), "missing")
	require.ErrorIs(t, err, ErrContactNotFound)
}
