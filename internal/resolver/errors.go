package resolver

import "errors"

// Resolution failures. All of them abort the login attempt; the hosting
// layer picks user messaging per error.
var (
	// ErrAlreadyLinked: the provider identity is already bound to a
	// different contact. User-correctable: unlink first.
	ErrAlreadyLinked = errors.New("provider identity is already linked to an account")

	// ErrLinkTargetNotFound: the link-account token matched no contact
	// (invalid or expired).
	ErrLinkTargetNotFound = errors.New("could not find account to link to")

	// ErrSanityCheckFailed: the single fuzzy match did not pass name
	// verification; refusing to merge into a seemingly unrelated account.
	ErrSanityCheckFailed = errors.New("existing contact does not pass verification")

	// ErrDuplicateAccount: more than one contact matched by email/phone;
	// ambiguity is never auto-resolved.
	ErrDuplicateAccount = errors.New("multiple accounts match this identity")
)
