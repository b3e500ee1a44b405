package selection

import (
	"github.com/chazu/blockview/pkg/camera"
	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/scene"
)

// Router hit tests pointer positions against the scene, applies Route and
// pushes the outcome into the scene's visual state and the callbacks.
// It is not safe for concurrent use.
type Router struct {
	graph  *scene.Graph
	camera *camera.Controller
	width  int
	height int

	state State
	hover map[int]footprint.Key

	// OnSelect receives the selected building on every pointer-down on a
	// building, and nil when the selection is cleared.
	OnSelect func(*footprint.Building)
	// OnBackground runs on every pointer-down on empty space.
	OnBackground func()
}

// NewRouter returns a router over g viewed through c in a width x height
// viewport.
func NewRouter(g *scene.Graph, c *camera.Controller, width, height int) *Router {
	return &Router{
		graph:  g,
		camera: c,
		width:  width,
		height: height,
		hover:  make(map[int]footprint.Key),
	}
}

// SetViewport changes the viewport size used for hit testing.
func (r *Router) SetViewport(width, height int) {
	r.width, r.height = width, height
}

// SetCamera replaces the camera used for hit testing.
func (r *Router) SetCamera(c *camera.Controller) {
	r.camera = c
}

// State returns the current selection state.
func (r *Router) State() State {
	return r.state
}

// Selected returns the selected building.
func (r *Router) Selected() (*footprint.Building, bool) {
	if !r.state.HasSelection() {
		return nil, false
	}
	e, ok := r.graph.Entry(r.state.Selected)
	if !ok {
		return nil, false
	}
	return e.Building, true
}

// HitTest returns the building under pixel (px, py).
func (r *Router) HitTest(px, py float64) (footprint.Key, error) {
	ray, err := r.camera.Ray(px, py, r.width, r.height)
	if err != nil {
		return "", err
	}
	hit, ok := r.graph.Pick(ray)
	if !ok {
		return "", nil
	}
	return hit.Key, nil
}

// PointerDown routes a press at pixel (px, py).
func (r *Router) PointerDown(pointer int, px, py float64) (Effect, error) {
	key, err := r.HitTest(px, py)
	if err != nil {
		return Effect{}, err
	}
	return r.Dispatch(Event{Kind: PointerDown, Pointer: pointer, Target: key}), nil
}

// PointerMove updates the hover of one pointer, producing a leave for the
// building it left and an enter for the building it reached.
func (r *Router) PointerMove(pointer int, px, py float64) (Effect, error) {
	key, err := r.HitTest(px, py)
	if err != nil {
		return Effect{}, err
	}
	prev := r.hover[pointer]
	if key == prev {
		return Effect{}, nil
	}
	var eff Effect
	if prev != "" {
		eff.HoverOff = r.Dispatch(Event{Kind: PointerLeave, Pointer: pointer, Target: prev}).HoverOff
	}
	if key != "" {
		on := r.Dispatch(Event{Kind: PointerEnter, Pointer: pointer, Target: key})
		eff.HoverOn = on.HoverOn
		eff.Consumed = on.Consumed
	}
	return eff, nil
}

// PointerLeave ends the hover of a pointer that left the viewport.
func (r *Router) PointerLeave(pointer int) Effect {
	prev, ok := r.hover[pointer]
	if !ok {
		return Effect{}
	}
	return r.Dispatch(Event{Kind: PointerLeave, Pointer: pointer, Target: prev})
}

// Dispatch applies an already hit tested event.
func (r *Router) Dispatch(ev Event) Effect {
	next, eff := Route(r.state, ev)
	r.state = next

	switch {
	case eff.Selected:
		r.graph.Select(next.Selected)
		if r.OnSelect != nil {
			if e, ok := r.graph.Entry(next.Selected); ok {
				r.OnSelect(e.Building)
			}
		}
	case eff.Cleared:
		r.graph.ClearSelection()
		if r.OnSelect != nil {
			r.OnSelect(nil)
		}
	}
	if eff.Background && r.OnBackground != nil {
		r.OnBackground()
	}

	if eff.HoverOff != "" {
		r.graph.Unhover(eff.HoverOff)
		if r.hover[ev.Pointer] == eff.HoverOff {
			delete(r.hover, ev.Pointer)
		}
	}
	if eff.HoverOn != "" {
		// A pointer hovers one building at a time.
		prev, ok := r.hover[ev.Pointer]
		if ok && prev != eff.HoverOn {
			r.graph.Unhover(prev)
			eff.HoverOff = prev
		}
		if !ok || prev != eff.HoverOn {
			r.graph.Hover(eff.HoverOn)
			r.hover[ev.Pointer] = eff.HoverOn
		}
	}
	return eff
}

// Select selects key without a pointer event. Keys that are not visible
// clear the selection.
func (r *Router) Select(key footprint.Key) {
	if !r.graph.Has(key) {
		r.ClearSelection()
		return
	}
	r.Dispatch(Event{Kind: PointerDown, Pointer: -1, Target: key})
}

// ClearSelection removes the selection without signalling the background.
func (r *Router) ClearSelection() {
	if !r.state.HasSelection() {
		return
	}
	r.state.Selected = ""
	r.graph.ClearSelection()
	if r.OnSelect != nil {
		r.OnSelect(nil)
	}
}

// Reconcile drops selection and hover that refer to buildings no longer in
// the scene. Call it after every scene sync.
func (r *Router) Reconcile() {
	for p, key := range r.hover {
		if !r.graph.Has(key) {
			delete(r.hover, p)
		}
	}
	if r.state.HasSelection() && !r.graph.Has(r.state.Selected) {
		r.ClearSelection()
		return
	}
	if r.state.HasSelection() {
		r.graph.Select(r.state.Selected)
	}
}

// Hovered returns the building under pointer.
func (r *Router) Hovered(pointer int) (footprint.Key, bool) {
	k, ok := r.hover[pointer]
	return k, ok
}
