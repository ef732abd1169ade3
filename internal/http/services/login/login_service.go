package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/email"
	dto "github.com/dropDatabas3/idlink/internal/http/dto/login"
	"github.com/dropDatabas3/idlink/internal/identity"
	"github.com/dropDatabas3/idlink/internal/linktoken"
	"github.com/dropDatabas3/idlink/internal/metrics"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
	"github.com/dropDatabas3/idlink/internal/resolver"
)

// Deps contains the dependencies of the login service.
type Deps struct {
	Store      repository.ContactStore
	Resolver   *resolver.Resolver
	LinkTokens *linktoken.Service
	Notifier   *email.Notifier // nil = no notifications
	Sync       resolver.SyncOptions
}

type service struct {
	deps Deps
}

// NewService builds the login service. Resolver and LinkTokens are
// derived from the store when not provided.
func NewService(deps Deps) Service {
	if deps.Resolver == nil {
		deps.Resolver = resolver.New(deps.Store, nil)
	}
	if deps.LinkTokens == nil {
		deps.LinkTokens = linktoken.NewService(deps.Store)
	}
	return &service{deps: deps}
}

// Service errors
var (
	ErrMissingIDToken     = fmt.Errorf("missing id_token")
	ErrMalformedIDToken   = fmt.Errorf("malformed id_token")
	ErrInvalidIdentity    = fmt.Errorf("id_token carries no usable identity")
	ErrAlreadyLinked      = fmt.Errorf("identity already linked to another account")
	ErrLinkTargetNotFound = fmt.Errorf("link token does not match any account")
	ErrSanityCheckFailed  = fmt.Errorf("matched account failed the name check")
	ErrDuplicateAccount   = fmt.Errorf("contact info matches more than one account")
	ErrContactNotFound    = fmt.Errorf("contact not found")
)

func (s *service) Resolve(ctx context.Context, in dto.ResolveRequest) (*dto.ResolveResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("login"),
		logger.Op("Resolve"),
	)

	if in.IDToken == "" {
		return nil, ErrMissingIDToken
	}

	// Step 1: decode the (already verified) id_token payload.
	claims, err := identity.DecodeToken(in.IDToken)
	if err != nil {
		log.Debug("id_token decode failed", logger.Err(err))
		return nil, ErrMalformedIDToken
	}

	// Step 2: extract the provider identity.
	ident, err := identity.Extract(ctx, claims)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidIdentity) {
			return nil, ErrInvalidIdentity
		}
		return nil, fmt.Errorf("extract identity: %w", err)
	}
	log = log.With(logger.Subject(ident.Subject.String()))

	// Step 3: load the current session's contact, if the caller has one.
	// A stale id is tolerated; the resolver treats it as absent.
	var current *repository.Contact
	if in.CurrentContactID != "" {
		current, err = s.deps.Store.FindByID(ctx, in.CurrentContactID)
		if err != nil && !repository.IsNotFound(err) {
			return nil, fmt.Errorf("load current contact: %w", err)
		}
		if current == nil {
			log.Warn("current contact id did not resolve",
				logger.ContactID(in.CurrentContactID))
		}
	}

	// Step 4: run the decision procedure.
	res, err := s.deps.Resolver.Resolve(ctx, ident, in.LinkToken, current)
	if err != nil {
		return nil, s.mapResolveError(err)
	}

	// Step 5: new accounts are provisioned by the caller.
	if res.Branch == resolver.BranchNew {
		metrics.RecordResolution(string(res.Branch), "ok")
		return &dto.ResolveResponse{
			Branch:          string(res.Branch),
			NewAccountEmail: res.NewAccountEmail,
		}, nil
	}

	// Step 6: a consumed link token is single-use.
	linked := res.Branch == resolver.BranchLink
	if linked {
		res.Contact.LinkAccountToken = nil
	}

	// Step 7: bind and synchronize, one save.
	if err := s.deps.Resolver.Sync(ctx, res.Contact, ident, s.deps.Sync); err != nil {
		metrics.RecordResolution(string(res.Branch), "sync_error")
		return nil, fmt.Errorf("sync contact: %w", err)
	}
	metrics.RecordResolution(string(res.Branch), "ok")

	if linked {
		s.deps.Notifier.AccountLinked(ctx, res.Contact.Email, res.Contact.FirstName)
	}

	log.Info("login resolved",
		logger.Branch(string(res.Branch)),
		logger.ContactID(res.Contact.ID),
	)
	return &dto.ResolveResponse{
		Branch:    string(res.Branch),
		ContactID: res.Contact.ID,
	}, nil
}

func (s *service) CreateLinkToken(ctx context.Context, contactID string) (*dto.LinkTokenResponse, error) {
	if contactID == "" {
		return nil, ErrContactNotFound
	}
	token, err := s.deps.LinkTokens.Create(ctx, contactID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("create link token: %w", err)
	}
	return &dto.LinkTokenResponse{LinkToken: token.String()}, nil
}

// mapResolveError translates resolver outcomes into service errors and
// records the metric for the failed resolution.
func (s *service) mapResolveError(err error) error {
	switch {
	case errors.Is(err, resolver.ErrAlreadyLinked):
		metrics.RecordResolution("link", "already_linked")
		return ErrAlreadyLinked
	case errors.Is(err, resolver.ErrLinkTargetNotFound):
		metrics.RecordResolution("link", "target_not_found")
		return ErrLinkTargetNotFound
	case errors.Is(err, resolver.ErrSanityCheckFailed):
		metrics.RecordResolution("fuzzy", "sanity_check_failed")
		return ErrSanityCheckFailed
	case errors.Is(err, resolver.ErrDuplicateAccount):
		metrics.RecordResolution("fuzzy", "duplicate_account")
		return ErrDuplicateAccount
	default:
		metrics.RecordResolution("", "error")
		return fmt.Errorf("resolve: %w", err)
	}
}
