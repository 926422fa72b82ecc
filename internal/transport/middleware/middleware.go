// Package middleware holds the HTTP middleware shared by the health,
// metrics, webhook and admin routes.
package middleware

import "net/http"

// Middleware wraps an http.Handler. Values plug straight into chi's Use.
type Middleware func(http.Handler) http.Handler
