// Package types defines the interfaces shared between the rate limiter core
// and its host wiring.
package types

// Admitter is the admission surface consumed by host code such as the HTTP
// middleware. A string-keyed tokenbucket.Limiter satisfies it.
type Admitter interface {
	// Request reports whether the next request for key is admitted.
	Request(key string) bool
}
