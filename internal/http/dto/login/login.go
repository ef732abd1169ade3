// Package login contains DTOs for the login-resolution endpoints.
package login

// ResolveRequest carries a verified provider callback into the engine.
// The id_token signature must already be verified by the OIDC middleware
// in front of this service.
type ResolveRequest struct {
	IDToken string `json:"id_token"`

	// LinkToken is the one-time link-account token, if the login was
	// started from a "connect your account" flow.
	LinkToken string `json:"link_token,omitempty"`

	// CurrentContactID identifies the already-authenticated local
	// session, if any. Used for consistency checks on the link branch.
	CurrentContactID string `json:"current_contact_id,omitempty"`
}

// ResolveResponse is the outcome of a successful resolution.
type ResolveResponse struct {
	Branch    string `json:"branch"`
	ContactID string `json:"contact_id,omitempty"`

	// NewAccountEmail is set only when branch is "new": the caller owns
	// provisioning and should key the new account by this email.
	NewAccountEmail string `json:"new_account_email,omitempty"`
}

// LinkTokenRequest asks for a fresh link-account token.
type LinkTokenRequest struct {
	ContactID string `json:"contact_id"`
}

// LinkTokenResponse returns the token to embed in the provider
// authorization request.
type LinkTokenResponse struct {
	LinkToken string `json:"link_token"`
}
