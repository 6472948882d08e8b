package gadget

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
)

func TestValidateDescription(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: ErrInvalidDescription},
		{name: "too short", input: "Laser pen", wantErr: ErrInvalidDescription},
		{name: "minimum length", input: "Laser pens", wantErr: nil},
		{name: "typical", input: "Wristwatch with a concealed grappling hook", wantErr: nil},
		{name: "maximum length", input: strings.Repeat("x", 500), wantErr: nil},
		{name: "too long", input: strings.Repeat("x", 501), wantErr: ErrInvalidDescription},
		{name: "multibyte counted as characters", input: strings.Repeat("é", 10), wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDescription(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDescription() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMissionSuccessProbability_Bounds(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	seen := make(map[int]bool)

	for i := 0; i < 10000; i++ {
		p := MissionSuccessProbability(r)
		if p < MinMissionSuccessProbability || p > MaxMissionSuccessProbability {
			t.Fatalf("MissionSuccessProbability() = %d, out of [30, 95]", p)
		}
		seen[p] = true
	}

	if !seen[MinMissionSuccessProbability] || !seen[MaxMissionSuccessProbability] {
		t.Error("both inclusive bounds should be reachable")
	}
}

func TestMissionSuccessProbability_Endpoints(t *testing.T) {
	if got := MissionSuccessProbability(&seqRandom{values: []int{0}}); got != 30 {
		t.Errorf("lowest draw = %d, want 30", got)
	}
	if got := MissionSuccessProbability(&seqRandom{values: []int{65}}); got != 95 {
		t.Errorf("highest draw = %d, want 95", got)
	}
}

func TestNewView_DrawsEveryTime(t *testing.T) {
	g := &Gadget{ID: "g-1", Codename: "The Silent Hawk"}
	r := &seqRandom{values: []int{0, 10, 65}}

	want := []int{30, 40, 95}
	for _, w := range want {
		v := NewView(g, r)
		if v.MissionSuccessProbability != w {
			t.Errorf("MissionSuccessProbability = %d, want %d", v.MissionSuccessProbability, w)
		}
		if v.Gadget != g {
			t.Error("view should wrap the given gadget")
		}
	}
}
