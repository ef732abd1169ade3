package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

// ErrInvalidIdentity indicates the claims carry no usable subject; the
// login attempt cannot proceed.
var ErrInvalidIdentity = errors.New("invalid identity: no usable subject claim")

// Birth dates arrive either in the standard ISO layout or, from older
// provider responses, in the Norwegian day-first layout.
const (
	birthDateISO       = "2006-01-02"
	birthDateNorwegian = "2.1.2006"
)

// Extract normalizes a verified claims payload into a ProviderIdentity.
//
// The subject claim is mandatory and must be a UUID; everything else is
// optional. Malformed address claims are dropped with a warning rather
// than failing the extraction.
func Extract(ctx context.Context, claims map[string]any) (*ProviderIdentity, error) {
	log := logger.From(ctx).With(logger.Component("identity.extractor"))

	raw := firstString(claims, ClaimSubject, LegacyNameIdentifier)
	sub, err := uuid.Parse(raw)
	if err != nil || raw == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentity, raw)
	}

	ident := &ProviderIdentity{
		Subject:       sub,
		Email:         firstString(claims, ClaimEmail, LegacyEmail),
		EmailVerified: boolClaim(claims[ClaimEmailVerified]),
		GivenName:     firstString(claims, ClaimGivenName, LegacyGivenName),
		FamilyName:    firstString(claims, ClaimFamilyName, LegacySurname),
		FullName:      firstString(claims, ClaimName, LegacyName),
		PhoneNumber: firstString(claims,
			ClaimPhoneNumber, LegacyHomePhone, LegacyMobilePhone, LegacyOtherPhone),
		BirthDate: parseBirthDate(firstString(claims, ClaimBirthDate, LegacyDateOfBirth)),
	}

	if addr, ok := decodeAddress(claims[ClaimAddress]); ok {
		addr.IsPreferred = true
		ident.Addresses = append(ident.Addresses, *addr)
	} else if _, present := claims[ClaimAddress]; present {
		log.Warn("dropping malformed address claim", logger.Subject(sub.String()))
	}

	for i, v := range listClaim(claims[ClaimOtherAddresses]) {
		addr, ok := decodeAddress(v)
		if !ok {
			log.Warn("dropping malformed address claim",
				logger.Subject(sub.String()), logger.Int("index", i))
			continue
		}
		ident.Addresses = append(ident.Addresses, *addr)
	}

	return ident, nil
}

// parseBirthDate tries the ISO layout first and falls back to the
// Norwegian day-first layout. Unparsable values yield nil, not an error.
func parseBirthDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{birthDateISO, birthDateNorwegian} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// decodeAddress accepts an address claim in any of the shapes we have
// seen in the wild: a JSON object, or a string holding encoded JSON.
func decodeAddress(v any) (*Address, bool) {
	var raw []byte
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		raw = []byte(val)
	case map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, false
		}
		raw = b
	default:
		return nil, false
	}

	var addr Address
	if err := json.Unmarshal(raw, &addr); err != nil {
		return nil, false
	}
	addr.AddressType = ParseAddressType(string(addr.AddressType))
	return &addr, true
}

func listClaim(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case nil:
		return nil
	default:
		// a single repeated claim may arrive unwrapped
		return []any{val}
	}
}

func firstString(claims map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func boolClaim(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(val)
		return err == nil && b
	default:
		return false
	}
}
