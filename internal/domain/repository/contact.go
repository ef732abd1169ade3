package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/idlink/internal/identity"
)

// AddressClass is the local classification of a contact address.
// Newly created addresses get the classes configured in the sync options.
type AddressClass uint8

const (
	AddressClassShipping AddressClass = 1 << iota
	AddressClassBilling
)

// Has reports whether the class set contains c.
func (a AddressClass) Has(c AddressClass) bool { return a&c != 0 }

func (a AddressClass) String() string {
	switch {
	case a.Has(AddressClassShipping) && a.Has(AddressClassBilling):
		return "shipping|billing"
	case a.Has(AddressClassBilling):
		return "billing"
	case a.Has(AddressClassShipping):
		return "shipping"
	default:
		return "none"
	}
}

// ContactAddress is a postal address on a contact. Addresses synced from
// the provider carry a ProviderType tag so later logins update the same
// row instead of accumulating duplicates.
type ContactAddress struct {
	ID           string
	Name         string
	Line1        string
	City         string
	PostalCode   string
	CountryCode  string
	DaytimePhone string
	EveningPhone string
	Class        AddressClass

	// ProviderType is set only on addresses that were created or updated
	// from a provider address of that type.
	ProviderType *identity.AddressType
}

// Contact is the local customer record. The store owns its lifecycle;
// the resolver only mutates it through the synchronization step.
type Contact struct {
	ID string

	// LinkedSubject is the provider subject bound to this contact.
	// At most one contact may carry a given subject.
	LinkedSubject *uuid.UUID

	// LinkAccountToken proves a logged-in user's intent to bind a new
	// provider identity to this contact. Cleared once consumed.
	LinkAccountToken *uuid.UUID

	Email     string
	FirstName string
	LastName  string
	FullName  string
	BirthDate *time.Time

	Addresses []*ContactAddress

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddressByProviderType returns the first address tagged with the given
// provider address type, or nil.
func (c *Contact) AddressByProviderType(t identity.AddressType) *ContactAddress {
	for _, a := range c.Addresses {
		if a.ProviderType != nil && *a.ProviderType == t {
			return a
		}
	}
	return nil
}

// ContactStore is the persistence boundary for customer contacts.
//
// Lookups return slices: the backing store cannot always enforce
// uniqueness, and the resolver decides how to treat multiples.
type ContactStore interface {
	// FindByID returns the contact with the given local id, or
	// ErrNotFound.
	FindByID(ctx context.Context, id string) (*Contact, error)

	// FindBySubject returns contacts bound to the given provider subject.
	FindBySubject(ctx context.Context, subject uuid.UUID) ([]*Contact, error)

	// FindByLinkToken returns contacts carrying the given link-account token.
	FindByLinkToken(ctx context.Context, token uuid.UUID) ([]*Contact, error)

	// FindByEmailOrPhone returns the union of contacts matching the email
	// and contacts whose addresses match the phone number, deduplicated by
	// contact id. Either parameter may be empty. A failing sub-query
	// degrades to an empty result with a logged error; it must not abort
	// the other sub-query.
	FindByEmailOrPhone(ctx context.Context, email, phone string) ([]*Contact, error)

	// Save persists the contact and its addresses in a single write.
	Save(ctx context.Context, contact *Contact) error
}
