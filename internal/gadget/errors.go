package gadget

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for the gadget package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, gadget.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a gadget ID does not exist.
	ErrNotFound = errors.New("gadget: not found")

	// ErrCodenameTaken is returned when inserting a gadget whose codename is already used.
	ErrCodenameTaken = errors.New("gadget: codename already exists")

	// ErrInvalidDescription is returned when a description fails validation.
	ErrInvalidDescription = errors.New("gadget: invalid description")

	// ErrInvalidStatus is returned for a status outside the four known values.
	ErrInvalidStatus = errors.New("gadget: invalid status")

	// ErrTerminalState is returned when changing the status of a destroyed or decommissioned gadget.
	ErrTerminalState = errors.New("gadget: terminal state")

	// ErrInvalidTransition is returned when a transition is not in the lifecycle table.
	ErrInvalidTransition = errors.New("gadget: invalid status transition")

	// ErrAlreadyDecommissioned is returned when decommissioning a decommissioned gadget.
	ErrAlreadyDecommissioned = errors.New("gadget: already decommissioned")

	// ErrCannotDecommissionDestroyed is returned when decommissioning a destroyed gadget.
	ErrCannotDecommissionDestroyed = errors.New("gadget: cannot decommission destroyed gadget")

	// ErrConfirmationRequired is returned when DESTROYED is requested through a plain update.
	ErrConfirmationRequired = errors.New("gadget: destruction requires the self-destruct confirmation sequence")

	// ErrCodenameExhausted is returned when no unique codename was found within
	// MaxCodenameAttempts. It signals the wordlist space is exhausted, not a caller error.
	ErrCodenameExhausted = errors.New("gadget: could not generate unique codename")

	// ErrConcurrentUpdate is returned when the stored status changed between
	// read and commit.
	ErrConcurrentUpdate = errors.New("gadget: status changed concurrently")
)

// TerminalStateError reports an attempt to leave a terminal status.
type TerminalStateError struct {
	Current Status
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("cannot change status: gadget is %s", strings.ToLower(string(e.Current)))
}

// Unwrap allows errors.Is(err, ErrTerminalState).
func (e *TerminalStateError) Unwrap() error { return ErrTerminalState }

// InvalidTransitionError reports a transition missing from the lifecycle table.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// Unwrap allows errors.Is(err, ErrInvalidTransition).
func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
