package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, local persistence and the
// remote API client return these (optionally wrapped) so services can translate
// them into domain errors or fallback behavior.
//
// - ErrNotFound: record or key does not exist
// - ErrUnauthorized: remote call made without an authenticated session
// - ErrUnavailable: dependency failed or is temporarily unreachable
// - ErrCircuitOpen: call short-circuited because the dependency keeps failing
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
	ErrCircuitOpen  = errors.New("circuit open")
)
