package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/identity"
	"github.com/dropDatabas3/idlink/internal/store/memory"
)

func TestSync_BindsSubjectAndOverwritesFields(t *testing.T) {
	store := memory.New()
	r := New(store, nil)

	bd := time.Date(1985, 5, 17, 0, 0, 0, 0, time.UTC)
	ident := testIdentity(t)
	ident.FullName = "Ola Nordmann"
	ident.BirthDate = &bd

	contact := seed(t, store, &repository.Contact{
		ID:        "c-1",
		Email:     "stale@example.com",
		FirstName: "Stale",
	})

	if err := r.Sync(context.Background(), contact, ident, DefaultSyncOptions()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	saved, err := store.FindByID(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if saved.LinkedSubject == nil || *saved.LinkedSubject != ident.Subject {
		t.Fatalf("subject not bound: %v", saved.LinkedSubject)
	}
	if saved.Email != ident.Email || saved.FirstName != ident.GivenName ||
		saved.LastName != ident.FamilyName || saved.FullName != ident.FullName {
		t.Fatalf("fields not synced: %+v", saved)
	}
	if saved.BirthDate == nil || !saved.BirthDate.Equal(bd) {
		t.Fatalf("birth date = %v, want %v", saved.BirthDate, bd)
	}
}

func TestSync_EmptyProviderFieldsKeepLocalValues(t *testing.T) {
	store := memory.New()
	r := New(store, nil)

	ident := &identity.ProviderIdentity{Subject: uuid.New()}
	contact := seed(t, store, &repository.Contact{
		ID:        "c-1",
		Email:     "keep@example.com",
		FirstName: "Keep",
		LastName:  "Me",
		FullName:  "Keep Me",
	})

	if err := r.Sync(context.Background(), contact, ident, DefaultSyncOptions()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	saved, _ := store.FindByID(context.Background(), "c-1")
	if saved.Email != "keep@example.com" || saved.FirstName != "Keep" ||
		saved.LastName != "Me" || saved.FullName != "Keep Me" {
		t.Fatalf("empty provider values blanked local data: %+v", saved)
	}
}

func TestSync_AddressUpsertByProviderType(t *testing.T) {
	store := memory.New()
	r := New(store, nil)

	homeType := identity.AddressTypeHome
	ident := testIdentity(t)
	ident.Addresses = []identity.Address{{
		StreetAddress: "Karl Johans gate 1",
		PostalCode:    "0154",
		Region:        "Oslo",
		Country:       "NO",
		AddressType:   identity.AddressTypeHome,
	}}

	contact := seed(t, store, &repository.Contact{
		ID: "c-1",
		Addresses: []*repository.ContactAddress{
			{
				ID:           "a-existing",
				Name:         "Vipps - home",
				Line1:        "Old Street 9",
				Class:        repository.AddressClassBilling,
				ProviderType: &homeType,
			},
			{ID: "a-manual", Name: "Cabin", Line1: "Fjellveien 2"},
		},
	})

	if err := r.Sync(context.Background(), contact, ident, DefaultSyncOptions()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	saved, _ := store.FindByID(context.Background(), "c-1")
	if len(saved.Addresses) != 2 {
		t.Fatalf("address count = %d, want 2 (update in place)", len(saved.Addresses))
	}

	upd := saved.AddressByProviderType(identity.AddressTypeHome)
	if upd == nil || upd.ID != "a-existing" {
		t.Fatalf("tagged address not updated in place: %+v", upd)
	}
	if upd.Line1 != "Karl Johans gate 1" || upd.City != "Oslo" || upd.PostalCode != "0154" {
		t.Fatalf("address fields not synced: %+v", upd)
	}
	if upd.CountryCode != "NOR" {
		t.Fatalf("country = %q, want NOR", upd.CountryCode)
	}
	if upd.Class != repository.AddressClassBilling {
		t.Fatalf("existing classification changed: %v", upd.Class)
	}
	if upd.DaytimePhone != ident.PhoneNumber || upd.EveningPhone != ident.PhoneNumber {
		t.Fatalf("phones not written: %+v", upd)
	}

	// The manually entered address is untouched.
	for _, a := range saved.Addresses {
		if a.ID == "a-manual" && a.Line1 != "Fjellveien 2" {
			t.Fatalf("manual address modified: %+v", a)
		}
	}
}

func TestSync_NewAddressGetsConfiguredClassesAndName(t *testing.T) {
	store := memory.New()
	r := New(store, nil)

	ident := testIdentity(t)
	ident.Addresses = []identity.Address{
		{StreetAddress: "Jobbgata 4", AddressType: identity.AddressTypeWork, Country: "SE"},
	}

	contact := seed(t, store, &repository.Contact{ID: "c-1"})

	opts := DefaultSyncOptions()
	opts.AddressClasses = repository.AddressClassShipping
	if err := r.Sync(context.Background(), contact, ident, opts); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	saved, _ := store.FindByID(context.Background(), "c-1")
	if len(saved.Addresses) != 1 {
		t.Fatalf("address count = %d, want 1", len(saved.Addresses))
	}
	a := saved.Addresses[0]
	if a.Name != "Vipps - work" {
		t.Fatalf("name = %q, want %q", a.Name, "Vipps - work")
	}
	if a.Class != repository.AddressClassShipping {
		t.Fatalf("class = %v, want shipping only", a.Class)
	}
	if a.CountryCode != "SE" {
		t.Fatalf("non-Norwegian country must pass through, got %q", a.CountryCode)
	}
	if a.ID == "" {
		t.Fatal("new address must get an id")
	}
}

func TestSync_OptionsDisableParts(t *testing.T) {
	store := memory.New()
	r := New(store, nil)

	ident := testIdentity(t)
	ident.Addresses = []identity.Address{
		{StreetAddress: "Gate 1", AddressType: identity.AddressTypeHome},
	}
	contact := seed(t, store, &repository.Contact{ID: "c-1", Email: "keep@example.com"})

	opts := SyncOptions{SyncContactInfo: false, SyncAddresses: false, ShouldSaveContact: true}
	if err := r.Sync(context.Background(), contact, ident, opts); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	saved, _ := store.FindByID(context.Background(), "c-1")
	if saved.Email != "keep@example.com" {
		t.Fatalf("contact info synced despite being disabled: %+v", saved)
	}
	if len(saved.Addresses) != 0 {
		t.Fatalf("addresses synced despite being disabled: %+v", saved.Addresses)
	}
	// The subject binding always happens.
	if saved.LinkedSubject == nil || *saved.LinkedSubject != ident.Subject {
		t.Fatalf("subject not bound: %v", saved.LinkedSubject)
	}
}

func TestSync_NoSaveWhenDisabled(t *testing.T) {
	store := memory.New()
	r := New(store, nil)

	ident := testIdentity(t)
	contact := seed(t, store, &repository.Contact{ID: "c-1", Email: "keep@example.com"})

	opts := DefaultSyncOptions()
	opts.ShouldSaveContact = false
	if err := r.Sync(context.Background(), contact, ident, opts); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	// In-memory struct is mutated, the store is not.
	if contact.Email != ident.Email {
		t.Fatalf("contact struct not updated: %q", contact.Email)
	}
	saved, _ := store.FindByID(context.Background(), "c-1")
	if saved.Email != "keep@example.com" {
		t.Fatalf("store written despite ShouldSaveContact=false: %+v", saved)
	}
}

func TestMapCountryCode(t *testing.T) {
	cases := map[string]string{
		"no": "NOR",
		"NO": "NOR",
		"se": "se",
		"":   "",
	}
	for in, want := range cases {
		if got := MapCountryCode(in); got != want {
			t.Errorf("MapCountryCode(%q) = %q, want %q", in, got, want)
		}
	}
}
