// Package middleware provides the HTTP middleware chain: access
// logging, Prometheus request metrics, and gzip compression for API
// responses.
package middleware
