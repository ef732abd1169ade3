// Package resolver decides which local contact a freshly authenticated
// provider identity belongs to, and synchronizes profile data onto it.
package resolver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/identity"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

// Branch names the resolution branch that produced the result.
type Branch string

const (
	BranchLink    Branch = "link"
	BranchSubject Branch = "subject"
	BranchFuzzy   Branch = "fuzzy"
	BranchNew     Branch = "new"
)

// Resolution is the outcome of a successful resolve call.
type Resolution struct {
	Branch Branch

	// Contact is the resolved local account. Nil when Branch is
	// BranchNew: provisioning happens outside this core, keyed by
	// NewAccountEmail.
	Contact *repository.Contact

	// NewAccountEmail is the identifying key for new-account
	// provisioning. Set only when Branch is BranchNew.
	NewAccountEmail string
}

// Resolver implements the account-resolution decision procedure.
type Resolver struct {
	store   repository.ContactStore
	checker SanityChecker
}

func New(store repository.ContactStore, checker SanityChecker) *Resolver {
	if checker == nil {
		checker = NameChecker{}
	}
	return &Resolver{store: store, checker: checker}
}

// Resolve runs the ordered decision procedure. The order is load-bearing:
//
//  1. explicit link-account intent (linkToken)
//  2. contact already bound to the subject
//  3. fuzzy match by email/phone, guarded by the sanity check
//  4. new account, keyed by the provider email
//
// current is the contact of the already-authenticated local session, if
// any; it is only consulted for consistency logging on the link branch.
func (r *Resolver) Resolve(
	ctx context.Context,
	ident *identity.ProviderIdentity,
	linkToken string,
	current *repository.Contact,
) (*Resolution, error) {
	if ident == nil {
		return nil, fmt.Errorf("%w: nil identity", repository.ErrInvalidInput)
	}
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("resolver"),
		logger.Subject(ident.Subject.String()),
	)

	// 1. Explicit link-account intent. A token that does not parse is
	// treated as absent, not as an error.
	if token, err := uuid.Parse(linkToken); linkToken != "" && err == nil {
		res, err := r.byLinkToken(ctx, log, ident, token, current)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}

	// 2. Known subject.
	contact, err := r.bySubject(ctx, log, ident.Subject)
	if err != nil {
		return nil, err
	}
	if contact != nil {
		return &Resolution{Branch: BranchSubject, Contact: contact}, nil
	}

	// 3. Fuzzy match by contact info.
	contact, err = r.byEmailOrPhone(ctx, log, ident)
	if err != nil {
		return nil, err
	}
	if contact != nil {
		return &Resolution{Branch: BranchFuzzy, Contact: contact}, nil
	}

	// 4. New account: provisioning is owned by the caller, keyed by the
	// provider email.
	log.Info("no matching contact, resolving to new account")
	return &Resolution{Branch: BranchNew, NewAccountEmail: ident.Email}, nil
}

// byLinkToken handles the explicit link-account intent. Returns a nil
// resolution only when the intent should fall through (never happens
// today: a parsed token either links or fails).
func (r *Resolver) byLinkToken(
	ctx context.Context,
	log *zap.Logger,
	ident *identity.ProviderIdentity,
	token uuid.UUID,
	current *repository.Contact,
) (*Resolution, error) {
	// Do not allow one provider identity to be silently re-bound to a
	// second local account.
	bound, err := r.bySubject(ctx, log, ident.Subject)
	if err != nil {
		return nil, err
	}
	if bound != nil {
		log.Warn("link intent rejected, subject already bound",
			logger.ContactID(bound.ID))
		return nil, ErrAlreadyLinked
	}

	targets, err := r.store.FindByLinkToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("find by link token: %w", err)
	}
	if len(targets) == 0 {
		return nil, ErrLinkTargetNotFound
	}
	if len(targets) > 1 {
		log.Warn("data integrity: multiple contacts share a link token",
			logger.Count(len(targets)))
	}
	target := targets[0]

	if current != nil && current.ID != target.ID {
		// The store is authoritative; this should only happen if the
		// session changed between token creation and callback.
		log.Warn("link target differs from authenticated contact",
			logger.ContactID(target.ID),
			logger.String("session_contact_id", current.ID))
	}

	return &Resolution{Branch: BranchLink, Contact: target}, nil
}

// bySubject returns the contact bound to the subject, or nil. More than
// one binding is a data-integrity problem, not a login failure: log and
// pick the first.
func (r *Resolver) bySubject(ctx context.Context, log *zap.Logger, subject uuid.UUID) (*repository.Contact, error) {
	contacts, err := r.store.FindBySubject(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("find by subject: %w", err)
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	if len(contacts) > 1 {
		log.Warn("data integrity: multiple contacts bound to one subject",
			logger.Count(len(contacts)))
	}
	return contacts[0], nil
}

func (r *Resolver) byEmailOrPhone(ctx context.Context, log *zap.Logger, ident *identity.ProviderIdentity) (*repository.Contact, error) {
	contacts, err := r.store.FindByEmailOrPhone(ctx, ident.Email, ident.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("find by email or phone: %w", err)
	}
	switch len(contacts) {
	case 0:
		return nil, nil
	case 1:
		if !r.checker.IsValidMatch(contacts[0], ident) {
			log.Warn("fuzzy match failed sanity check",
				logger.ContactID(contacts[0].ID))
			return nil, ErrSanityCheckFailed
		}
		return contacts[0], nil
	default:
		log.Warn("ambiguous fuzzy match", logger.Count(len(contacts)))
		return nil, ErrDuplicateAccount
	}
}
