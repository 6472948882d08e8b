package gadget

import (
	"fmt"
	"slices"
	"strings"
)

// allowedTransitions is the lifecycle table. Terminal statuses have no row.
var allowedTransitions = map[Status][]Status{
	StatusAvailable:      {StatusDeployed, StatusDecommissioned},
	StatusDeployed:       {StatusAvailable, StatusDestroyed},
	StatusDestroyed:      nil,
	StatusDecommissioned: nil,
}

// ValidateTransition reports whether requested appears in the table row for current.
// It has no side effects.
func ValidateTransition(current, requested Status) bool {
	return slices.Contains(allowedTransitions[current], requested)
}

// ProcessStatusChange decides whether a requested status change is legal.
//
// A self-transition is a silent no-op (changed=false, no history). Any change
// away from a terminal status fails with *TerminalStateError; a change missing
// from the table fails with *InvalidTransitionError. On changed=true the caller
// must write the new status, the terminal timestamp if any, and a history
// record as one atomic unit.
func ProcessStatusChange(current, requested Status) (changed bool, err error) {
	if requested == current {
		return false, nil
	}

	if current.Terminal() {
		return false, &TerminalStateError{Current: current}
	}

	if !ValidateTransition(current, requested) {
		return false, &InvalidTransitionError{From: current, To: requested}
	}

	return true, nil
}

// CheckDecommission applies the decommission policy. It does not consult the
// transition table: any non-terminal gadget may be decommissioned.
func CheckDecommission(current Status) error {
	switch current {
	case StatusDecommissioned:
		return ErrAlreadyDecommissioned
	case StatusDestroyed:
		return ErrCannotDecommissionDestroyed
	}
	return nil
}

// ParseStatus validates a status string, e.g. a list filter.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		names := make([]string, len(AllStatuses))
		for i, st := range AllStatuses {
			names[i] = string(st)
		}
		return "", fmt.Errorf("%w: %s. Must be one of: %s", ErrInvalidStatus, s, strings.Join(names, ", "))
	}
	return status, nil
}
