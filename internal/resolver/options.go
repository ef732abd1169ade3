package resolver

import "github.com/dropDatabas3/idlink/internal/domain/repository"

// SyncOptions controls what the synchronization step writes.
type SyncOptions struct {
	// SyncContactInfo overwrites profile fields (email, names, birth
	// date) with non-empty provider values.
	SyncContactInfo bool

	// SyncAddresses upserts provider addresses onto the contact.
	SyncAddresses bool

	// ShouldSaveContact persists the contact once at the end of Sync.
	ShouldSaveContact bool

	// AddressClasses is assigned to newly created addresses.
	AddressClasses repository.AddressClass
}

// DefaultSyncOptions mirrors the defaults of the commerce platform:
// everything on, new addresses usable for both shipping and billing.
func DefaultSyncOptions() SyncOptions {
	return SyncOptions{
		SyncContactInfo:   true,
		SyncAddresses:     true,
		ShouldSaveContact: true,
		AddressClasses:    repository.AddressClassShipping | repository.AddressClassBilling,
	}
}
