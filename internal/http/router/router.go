// Package router wires controllers, middlewares and operational
// endpoints into the HTTP handler served by cmd/service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	loginctrl "github.com/dropDatabas3/idlink/internal/http/controllers/login"
	"github.com/dropDatabas3/idlink/internal/http/errors"
	mw "github.com/dropDatabas3/idlink/internal/http/middlewares"
	"github.com/dropDatabas3/idlink/internal/metrics"
)

// Deps contains everything the router mounts.
type Deps struct {
	Login *loginctrl.Controller

	// MetricsHandler serves /metrics. Nil disables the endpoint.
	MetricsHandler http.Handler

	// Ready reports whether the backing store is reachable. Nil means
	// always ready.
	Ready func(r *http.Request) error
}

// New builds the service handler.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestLogger())
	r.Use(mw.WithRecover())
	r.Use(metrics.WithMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if deps.Ready != nil {
			if err := deps.Ready(req); err != nil {
				errors.WriteError(w, errors.ErrInternalServerError.WithDetail("store not ready").WithCause(err))
				return
			}
		}
		errors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/v1/login", func(r chi.Router) {
		r.Post("/resolve", deps.Login.Resolve)
		r.Post("/link-token", deps.Login.CreateLinkToken)
	})

	return r
}
