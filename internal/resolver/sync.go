package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/identity"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

// Sync writes the provider identity onto the resolved contact. It always
// binds the subject; profile fields and addresses follow the options.
// The whole sync is one logical write: Save runs once at the end.
//
// A profile field is only overwritten when the provider value is
// non-empty; absent provider data never blanks out local data.
func (r *Resolver) Sync(
	ctx context.Context,
	contact *repository.Contact,
	ident *identity.ProviderIdentity,
	opts SyncOptions,
) error {
	if contact == nil || ident == nil {
		return fmt.Errorf("%w: nil contact or identity", repository.ErrInvalidInput)
	}
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("resolver.sync"),
		logger.Subject(ident.Subject.String()),
		logger.ContactID(contact.ID),
	)

	// Idempotent: re-binding the same subject is a no-op for the store.
	sub := ident.Subject
	contact.LinkedSubject = &sub

	if opts.SyncContactInfo {
		syncContactFields(contact, ident)
	}

	if opts.SyncAddresses {
		syncAddresses(contact, ident, opts.AddressClasses)
	}

	if opts.ShouldSaveContact {
		if err := r.store.Save(ctx, contact); err != nil {
			return fmt.Errorf("save contact: %w", err)
		}
		log.Debug("contact synchronized")
	}
	return nil
}

func syncContactFields(contact *repository.Contact, ident *identity.ProviderIdentity) {
	if ident.Email != "" {
		contact.Email = ident.Email
	}
	if ident.GivenName != "" {
		contact.FirstName = ident.GivenName
	}
	if ident.FamilyName != "" {
		contact.LastName = ident.FamilyName
	}
	if ident.FullName != "" {
		contact.FullName = ident.FullName
	}
	if ident.BirthDate != nil {
		bd := *ident.BirthDate
		contact.BirthDate = &bd
	}
}

// syncAddresses upserts provider addresses by their address-type tag:
// an existing tagged address is updated in place (keeping its local
// identity and classification), otherwise a new one is created with the
// configured classes.
func syncAddresses(contact *repository.Contact, ident *identity.ProviderIdentity, classes repository.AddressClass) {
	for i := range ident.Addresses {
		src := ident.Addresses[i]

		addr := contact.AddressByProviderType(src.AddressType)
		if addr == nil {
			t := src.AddressType
			addr = &repository.ContactAddress{
				ID:           uuid.NewString(),
				Class:        classes,
				ProviderType: &t,
			}
			contact.Addresses = append(contact.Addresses, addr)
		}

		addr.Name = "Vipps - " + string(src.AddressType)
		addr.Line1 = src.StreetAddress
		addr.City = src.Region
		addr.PostalCode = src.PostalCode
		addr.CountryCode = MapCountryCode(src.Country)

		if ident.PhoneNumber != "" {
			addr.DaytimePhone = ident.PhoneNumber
			addr.EveningPhone = ident.PhoneNumber
		}
	}
}

// MapCountryCode translates the provider's 2-letter country code into
// the 3-letter ISO code the contact store expects. Only Norwegian
// addresses are natively supported; anything else passes through
// unchanged.
func MapCountryCode(code string) string {
	if strings.EqualFold(code, "no") {
		return "NOR"
	}
	return code
}
