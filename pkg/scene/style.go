package scene

// State is the visual state of a building.
type State int

const (
	StateNormal State = iota
	StateHovered
	StateSelected
)

func (s State) String() string {
	switch s {
	case StateHovered:
		return "hovered"
	case StateSelected:
		return "selected"
	default:
		return "normal"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Style is the material a building is drawn with.
type Style struct {
	Color             string  `json:"color"`
	Emissive          string  `json:"emissive"`
	EmissiveIntensity float64 `json:"emissiveIntensity"`
	Roughness         float64 `json:"roughness"`
	Metalness         float64 `json:"metalness"`
}

var styles = map[State]Style{
	StateNormal:   {Color: "#e2e8f0", Emissive: "#0f172a"},
	StateHovered:  {Color: "#cbd5f5", Emissive: "#1d4ed8"},
	StateSelected: {Color: "#f97316", Emissive: "#92400e"},
}

// StyleFor returns the material for a visual state.
func StyleFor(s State) Style {
	st, ok := styles[s]
	if !ok {
		st = styles[StateNormal]
	}
	st.EmissiveIntensity = 0.25
	st.Roughness = 0.7
	st.Metalness = 0.05
	return st
}
