package gadget

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"
)

func TestGenerateCodename_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^The (` + strings.Join(codenameAdjectives[:], "|") + `) (` +
		strings.Join(codenameNouns[:], "|") + `)$`)

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		name := GenerateCodename(r)
		if !pattern.MatchString(name) {
			t.Fatalf("GenerateCodename() = %q does not match %s", name, pattern)
		}
	}
}

func TestGenerateCodename_CoversCrossProduct(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1024))
	seen := make(map[string]int)

	for i := 0; i < 20000; i++ {
		seen[GenerateCodename(r)]++
	}

	if len(seen) != CodenameSpace() {
		t.Errorf("distinct codenames = %d, want %d", len(seen), CodenameSpace())
	}
	for _, adj := range codenameAdjectives {
		for _, noun := range codenameNouns {
			if seen["The "+adj+" "+noun] == 0 {
				t.Errorf("codename %q never generated", "The "+adj+" "+noun)
			}
		}
	}
}

func TestGenerateCodename_Deterministic(t *testing.T) {
	r := &seqRandom{values: []int{0, 0, 14, 14, 2, 5}}

	want := []string{"The Silent Hawk", "The Arctic Owl", "The Ghost Panther"}
	for _, w := range want {
		if got := GenerateCodename(r); got != w {
			t.Errorf("GenerateCodename() = %q, want %q", got, w)
		}
	}
}

func TestCodenameSpace(t *testing.T) {
	if got := CodenameSpace(); got != 225 {
		t.Errorf("CodenameSpace() = %d, want 225", got)
	}
}

func TestGenerateUniqueCodename_RetriesOnCollision(t *testing.T) {
	r := &seqRandom{values: []int{0, 0, 0, 0, 1, 1}}
	taken := map[string]bool{"The Silent Hawk": true}

	calls := 0
	exists := func(_ context.Context, name string) (bool, error) {
		calls++
		return taken[name], nil
	}

	got, err := GenerateUniqueCodename(context.Background(), r, exists)
	if err != nil {
		t.Fatalf("GenerateUniqueCodename() error = %v", err)
	}
	if got != "The Shadow Eagle" {
		t.Errorf("GenerateUniqueCodename() = %q, want %q", got, "The Shadow Eagle")
	}
	if calls != 3 {
		t.Errorf("exists called %d times, want 3", calls)
	}
}

func TestGenerateUniqueCodename_Exhausted(t *testing.T) {
	calls := 0
	exists := func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}

	_, err := GenerateUniqueCodename(context.Background(), DefaultRandom(), exists)
	if !errors.Is(err, ErrCodenameExhausted) {
		t.Fatalf("error = %v, want ErrCodenameExhausted", err)
	}
	if calls != MaxCodenameAttempts {
		t.Errorf("exists called %d times, want exactly %d", calls, MaxCodenameAttempts)
	}
}

func TestGenerateUniqueCodename_LookupError(t *testing.T) {
	lookupErr := errors.New("database is locked")
	exists := func(context.Context, string) (bool, error) {
		return false, lookupErr
	}

	_, err := GenerateUniqueCodename(context.Background(), DefaultRandom(), exists)
	if !errors.Is(err, lookupErr) {
		t.Errorf("error = %v, want wrapped lookup error", err)
	}
	if errors.Is(err, ErrCodenameExhausted) {
		t.Error("lookup failure must not be reported as exhaustion")
	}
}
