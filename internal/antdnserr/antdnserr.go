// Package antdnserr defines the sentinel error kinds shared across the
// resolver, register adapter, cache, and proxy, per the error propagation
// rules: each kind has a fixed meaning for whether it is cached and
// whether it is surfaced to the caller.
package antdnserr

import "errors"

var (
	// ErrBadName means the name does not match *.ant with a single
	// label. Surfaced to the user, never cached.
	ErrBadName = errors.New("antdns: bad name")

	// ErrNotRegistered means the register is empty for the name.
	// Cached briefly; surfaces as 404 at the proxy.
	ErrNotRegistered = errors.New("antdns: not registered")

	// ErrCorrupt means the owner document is malformed, the public key
	// is malformed, or the register's index-0 chunk is unreadable.
	// Surfaced, never cached — a systemic failure of the domain, not of
	// one entry.
	ErrCorrupt = errors.New("antdns: corrupt owner document")

	// ErrUnavailable means a CAS timeout or transport failure occurred.
	// Surfaced, never cached; callers may retry.
	ErrUnavailable = errors.New("antdns: cas unavailable")

	// ErrAlreadyRegistered means the register already has a non-empty
	// history at registration time. Terminal for that attempt.
	ErrAlreadyRegistered = errors.New("antdns: already registered")

	// ErrNotOwner means an update was requested with no local private
	// key for the name. Terminal.
	ErrNotOwner = errors.New("antdns: not owner")

	// ErrPaymentFailed is surfaced from the CAS layer and passed through
	// unchanged.
	ErrPaymentFailed = errors.New("antdns: payment failed")
)
