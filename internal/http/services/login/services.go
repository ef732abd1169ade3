// Package login orchestrates the full callback flow: decode the token,
// extract the identity, resolve the contact, synchronize and notify.
package login

import (
	"context"

	dto "github.com/dropDatabas3/idlink/internal/http/dto/login"
)

// Service is the application service behind the login endpoints.
type Service interface {
	// Resolve runs the decision procedure for a verified provider
	// callback and synchronizes the resolved contact.
	Resolve(ctx context.Context, in dto.ResolveRequest) (*dto.ResolveResponse, error)

	// CreateLinkToken issues a one-time token proving link intent for
	// the given contact.
	CreateLinkToken(ctx context.Context, contactID string) (*dto.LinkTokenResponse, error)
}
