package crawler

import "errors"

var (
	// ErrInvalidStartURL is returned when the start URL lacks a scheme or a host.
	ErrInvalidStartURL = errors.New("invalid starting URL")

	// ErrNoDomain is returned when no host can be derived from the start URL.
	ErrNoDomain = errors.New("could not determine domain for URL")
)
