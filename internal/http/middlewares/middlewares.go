// Package middlewares holds the HTTP middleware chain.
package middlewares

import "net/http"

// Middleware transforms a handler.
type Middleware func(http.Handler) http.Handler
