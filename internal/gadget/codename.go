package gadget

import (
	"context"
	"fmt"
)

// MaxCodenameAttempts bounds codename generation when collisions occur.
// 15 adjectives x 15 nouns gives 225 codenames in total.
const MaxCodenameAttempts = 10

var codenameAdjectives = [...]string{
	"Silent", "Shadow", "Ghost", "Stealth", "Phantom", "Dark", "Swift", "Hidden",
	"Secret", "Covert", "Night", "Midnight", "Twilight", "Alpine", "Arctic",
}

var codenameNouns = [...]string{
	"Hawk", "Eagle", "Wolf", "Fox", "Raven", "Panther", "Tiger", "Dragon",
	"Serpent", "Phoenix", "Falcon", "Viper", "Cobra", "Jaguar", "Owl",
}

// CodenameSpace returns the number of distinct codenames GenerateCodename can produce.
func CodenameSpace() int {
	return len(codenameAdjectives) * len(codenameNouns)
}

// GenerateCodename composes "The {Adjective} {Noun}" from the fixed wordlists.
func GenerateCodename(r Random) string {
	adjective := codenameAdjectives[r.IntN(len(codenameAdjectives))]
	noun := codenameNouns[r.IntN(len(codenameNouns))]
	return "The " + adjective + " " + noun
}

// CodenameExistsFunc reports whether a codename is already assigned.
type CodenameExistsFunc func(ctx context.Context, codename string) (bool, error)

// GenerateUniqueCodename generates codenames until exists reports one as free,
// giving up with ErrCodenameExhausted after MaxCodenameAttempts generations.
func GenerateUniqueCodename(ctx context.Context, r Random, exists CodenameExistsFunc) (string, error) {
	for attempt := 0; attempt < MaxCodenameAttempts; attempt++ {
		codename := GenerateCodename(r)

		taken, err := exists(ctx, codename)
		if err != nil {
			return "", fmt.Errorf("checking codename %q: %w", codename, err)
		}
		if !taken {
			return codename, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrCodenameExhausted, MaxCodenameAttempts)
}
