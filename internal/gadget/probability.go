package gadget

// Mission success probability bounds (percent, inclusive).
const (
	MinMissionSuccessProbability = 30
	MaxMissionSuccessProbability = 95
)

// MissionSuccessProbability returns a uniform integer in [30, 95].
// It is never stored: every serialization of a gadget draws a fresh value.
func MissionSuccessProbability(r Random) int {
	return MinMissionSuccessProbability + r.IntN(MaxMissionSuccessProbability-MinMissionSuccessProbability+1)
}

// View is a gadget as returned by list, get, create and update responses.
type View struct {
	*Gadget
	MissionSuccessProbability int `json:"mission_success_probability"`
}

// NewView pairs g with a freshly drawn mission success probability.
func NewView(g *Gadget, r Random) View {
	return View{
		Gadget:                    g,
		MissionSuccessProbability: MissionSuccessProbability(r),
	}
}
