package domain

import "errors"

// Sentinel errors for errors.Is() checks. Every failure the library reports
// wraps exactly one of these, so callers can distinguish "wrong key" from
// "not authorized" without string matching.
var (
	// ErrValidation indicates malformed input: an empty key, an invalid
	// public-key encoding, a group already at MaxMembers.
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication indicates an AEAD tag failed to verify: wrong key,
	// tampered ciphertext, nonce or metadata, or a corrupted wrapped share.
	// Never retried internally.
	ErrAuthentication = errors.New("authentication failed")

	// ErrPermission indicates the caller lacks the required role or
	// permission bit for the requested operation.
	ErrPermission = errors.New("permission denied")

	// ErrMembership indicates the caller is not a current member or holder
	// of the target group, shared key or context.
	ErrMembership = errors.New("not a member")

	// ErrConcurrencyConflict indicates a mutation was attempted against a
	// stale version of group or shared-key state.
	ErrConcurrencyConflict = errors.New("stale version")
)
