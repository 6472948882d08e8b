package gadget

import (
	"fmt"
	"unicode/utf8"
)

// Description length limits (characters).
const (
	MinDescriptionLength = 10
	MaxDescriptionLength = 500
)

// ValidateDescription checks a gadget description is within length bounds.
func ValidateDescription(description string) error {
	if description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidDescription)
	}

	n := utf8.RuneCountInString(description)
	if n < MinDescriptionLength || n > MaxDescriptionLength {
		return fmt.Errorf("%w: description must be between %d and %d characters",
			ErrInvalidDescription, MinDescriptionLength, MaxDescriptionLength)
	}

	return nil
}
