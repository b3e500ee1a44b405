// Package selection routes pointer input to building selection. Routing is
// explicit: a pointer-down that hits a building selects it and is consumed,
// so it never reaches the background; a pointer-down on empty space clears
// the selection and signals the background. Hover is presentational only
// and never changes the selection.
package selection

import "github.com/chazu/blockview/pkg/footprint"

// Kind is the type of a pointer event.
type Kind int

const (
	PointerDown Kind = iota
	PointerEnter
	PointerLeave
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerEnter:
		return "enter"
	case PointerLeave:
		return "leave"
	}
	return "unknown"
}

// Event is one pointer event after hit testing. Target is empty when the
// pointer is over empty space.
type Event struct {
	Kind    Kind
	Pointer int
	Target  footprint.Key
}

// State is the selection state. At most one building is selected.
type State struct {
	Selected footprint.Key
}

// HasSelection reports whether a building is selected.
func (s State) HasSelection() bool { return s.Selected != "" }

// Effect describes what an event did.
type Effect struct {
	Selected   bool // a building was pointed down on
	Cleared    bool // the selection was removed
	Changed    bool // the selected key differs from before
	Background bool // the event reached empty space
	Consumed   bool // a building stopped the event
	HoverOn    footprint.Key
	HoverOff   footprint.Key
}

// Route applies one event to the selection state.
func Route(s State, ev Event) (State, Effect) {
	var eff Effect
	switch ev.Kind {
	case PointerDown:
		if ev.Target != "" {
			eff.Selected = true
			eff.Consumed = true
			eff.Changed = s.Selected != ev.Target
			s.Selected = ev.Target
			return s, eff
		}
		eff.Background = true
		if s.HasSelection() {
			eff.Cleared = true
			eff.Changed = true
			s.Selected = ""
		}
	case PointerEnter:
		if ev.Target != "" {
			eff.HoverOn = ev.Target
			eff.Consumed = true
		}
	case PointerLeave:
		if ev.Target != "" {
			eff.HoverOff = ev.Target
			eff.Consumed = true
		}
	}
	return s, eff
}
