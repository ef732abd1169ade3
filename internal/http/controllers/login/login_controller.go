// Package login exposes the resolution engine over HTTP.
package login

import (
	"encoding/json"
	"net/http"

	dto "github.com/dropDatabas3/idlink/internal/http/dto/login"
	httperrors "github.com/dropDatabas3/idlink/internal/http/errors"
	svc "github.com/dropDatabas3/idlink/internal/http/services/login"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
	"go.uber.org/zap"
)

// Controller handles POST /v1/login/resolve and POST /v1/login/link-token.
type Controller struct {
	service svc.Service
}

func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// Resolve handles the provider callback.
// POST /v1/login/resolve
func (c *Controller) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Controller.Resolve"))

	var req dto.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid JSON body"))
		return
	}

	resp, err := c.service.Resolve(ctx, req)
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, resp)
	log.Debug("resolution returned", logger.Branch(resp.Branch))
}

// CreateLinkToken issues a one-time link token for the authenticated
// contact.
// POST /v1/login/link-token
func (c *Controller) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Controller.CreateLinkToken"))

	var req dto.LinkTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid JSON body"))
		return
	}
	if req.ContactID == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("contact_id is required"))
		return
	}

	resp, err := c.service.CreateLinkToken(ctx, req.ContactID)
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	httperrors.WriteJSON(w, http.StatusCreated, resp)
	log.Debug("link token issued", logger.ContactID(req.ContactID))
}

// handleError maps service errors to HTTP responses.
func (c *Controller) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	switch err {
	case svc.ErrMissingIDToken:
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("id_token is required"))
	case svc.ErrMalformedIDToken:
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("id_token is not a valid JWT"))
	case svc.ErrInvalidIdentity:
		httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("token carries no usable identity"))
	case svc.ErrAlreadyLinked:
		httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("identity is already linked to another account"))
	case svc.ErrLinkTargetNotFound:
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("link token does not match any account"))
	case svc.ErrSanityCheckFailed:
		httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("account match failed verification, log in with your existing credentials to link"))
	case svc.ErrDuplicateAccount:
		httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("contact information matches more than one account, contact support"))
	case svc.ErrContactNotFound:
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("contact not found"))
	default:
		log.Error("unexpected login error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
