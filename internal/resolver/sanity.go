package resolver

import (
	"strings"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/identity"
)

// SanityChecker guards the fuzzy-match branch: a contact that merely
// shares an email or phone number with the identity is only accepted
// when it also passes this check.
type SanityChecker interface {
	IsValidMatch(contact *repository.Contact, ident *identity.ProviderIdentity) bool
}

// NameChecker accepts a match only when both stored names equal the
// identity's names, case-insensitively. An identity with a missing given
// or family name never matches.
type NameChecker struct{}

func (NameChecker) IsValidMatch(contact *repository.Contact, ident *identity.ProviderIdentity) bool {
	if contact == nil || ident == nil {
		return false
	}
	if ident.GivenName == "" || ident.FamilyName == "" {
		return false
	}
	return strings.EqualFold(ident.GivenName, contact.FirstName) &&
		strings.EqualFold(ident.FamilyName, contact.LastName)
}
