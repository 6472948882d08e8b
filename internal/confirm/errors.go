package confirm

import "errors"

// Verification failures.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, confirm.ErrExpiredCode) {
//	    // ask the client to request a new code
//	}
var (
	// ErrMissingCode is returned when no code was submitted. Broker state is untouched.
	ErrMissingCode = errors.New("confirm: confirmation code is required")

	// ErrNoActiveCode is returned when no code is live for the gadget: never
	// issued, already consumed, or swept.
	ErrNoActiveCode = errors.New("confirm: no active confirmation code")

	// ErrExpiredCode is returned when the live code has passed its expiry.
	// The stale code is deleted before returning.
	ErrExpiredCode = errors.New("confirm: confirmation code has expired")

	// ErrCodeMismatch is returned when the submitted code differs from the live code.
	ErrCodeMismatch = errors.New("confirm: invalid confirmation code")
)
