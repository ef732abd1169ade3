// Package identity maps verified mobile-login (OIDC) claims into a
// normalized ProviderIdentity consumed by the account resolver.
package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AddressType classifies a provider address. The provider only ever
// issues the three values below.
type AddressType string

const (
	AddressTypeHome  AddressType = "home"
	AddressTypeWork  AddressType = "work"
	AddressTypeOther AddressType = "other"
)

// ParseAddressType normalizes a raw address_type claim value. Unknown
// values map to AddressTypeOther.
func ParseAddressType(s string) AddressType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home":
		return AddressTypeHome
	case "work":
		return AddressTypeWork
	default:
		return AddressTypeOther
	}
}

// Address is a postal address as delivered by the provider. Provider
// addresses carry no identifier; the address type is the only stable key.
type Address struct {
	StreetAddress string      `json:"street_address"`
	PostalCode    string      `json:"postal_code"`
	Region        string      `json:"region"`
	Country       string      `json:"country"`
	Formatted     string      `json:"formatted"`
	AddressType   AddressType `json:"address_type"`

	// IsPreferred marks the address coming from the standard `address`
	// claim rather than the other_addresses list.
	IsPreferred bool `json:"-"`
}

// ProviderIdentity is the immutable result of claim extraction for one
// login event.
type ProviderIdentity struct {
	Subject       uuid.UUID
	Email         string
	EmailVerified bool
	PhoneNumber   string
	GivenName     string
	FamilyName    string
	FullName      string
	BirthDate     *time.Time
	Addresses     []Address
}
