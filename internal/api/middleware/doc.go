// Package middleware provides the gin middleware shared by the REST and
// stream routes: request IDs with access logging, CORS, and per-client
// rate limiting.
package middleware
