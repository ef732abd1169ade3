package identity

// Standard OIDC claim types as issued by the provider's userinfo
// endpoint and ID token.
const (
	ClaimSubject        = "sub"
	ClaimEmail          = "email"
	ClaimEmailVerified  = "email_verified"
	ClaimGivenName      = "given_name"
	ClaimFamilyName     = "family_name"
	ClaimName           = "name"
	ClaimBirthDate      = "birthdate"
	ClaimPhoneNumber    = "phone_number"
	ClaimAddress        = "address"
	ClaimOtherAddresses = "other_addresses"
)

// Legacy claim-type namespace. Older middleware stacks re-emit the same
// logical fields under these types; the standard namespace always takes
// precedence when both are present.
const (
	legacyNS = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/"

	LegacyNameIdentifier = legacyNS + "nameidentifier"
	LegacyEmail          = legacyNS + "emailaddress"
	LegacyGivenName      = legacyNS + "givenname"
	LegacySurname        = legacyNS + "surname"
	LegacyName           = legacyNS + "name"
	LegacyDateOfBirth    = legacyNS + "dateofbirth"
	LegacyHomePhone      = legacyNS + "homephone"
	LegacyMobilePhone    = legacyNS + "mobilephone"
	LegacyOtherPhone     = legacyNS + "otherphone"
)
