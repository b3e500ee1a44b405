package selection_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/blockview/pkg/camera"
	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/kernel/prism"
	"github.com/chazu/blockview/pkg/scene"
	"github.com/chazu/blockview/pkg/selection"
)

// --- pure routing ---

func TestRoute(t *testing.T) {
	tests := []struct {
		name   string
		state  selection.State
		event  selection.Event
		want   selection.State
		effect selection.Effect
	}{
		{
			name:   "down on building selects",
			event:  selection.Event{Kind: selection.PointerDown, Target: "a"},
			want:   selection.State{Selected: "a"},
			effect: selection.Effect{Selected: true, Changed: true, Consumed: true},
		},
		{
			name:   "down on another building replaces",
			state:  selection.State{Selected: "a"},
			event:  selection.Event{Kind: selection.PointerDown, Target: "b"},
			want:   selection.State{Selected: "b"},
			effect: selection.Effect{Selected: true, Changed: true, Consumed: true},
		},
		{
			name:   "down on same building",
			state:  selection.State{Selected: "a"},
			event:  selection.Event{Kind: selection.PointerDown, Target: "a"},
			want:   selection.State{Selected: "a"},
			effect: selection.Effect{Selected: true, Consumed: true},
		},
		{
			name:   "down on empty space clears",
			state:  selection.State{Selected: "a"},
			event:  selection.Event{Kind: selection.PointerDown},
			want:   selection.State{},
			effect: selection.Effect{Cleared: true, Changed: true, Background: true},
		},
		{
			name:   "down on empty space with nothing selected",
			event:  selection.Event{Kind: selection.PointerDown},
			want:   selection.State{},
			effect: selection.Effect{Background: true},
		},
		{
			name:   "enter only hovers",
			state:  selection.State{Selected: "a"},
			event:  selection.Event{Kind: selection.PointerEnter, Target: "b"},
			want:   selection.State{Selected: "a"},
			effect: selection.Effect{HoverOn: "b", Consumed: true},
		},
		{
			name:   "leave only unhovers",
			state:  selection.State{Selected: "a"},
			event:  selection.Event{Kind: selection.PointerLeave, Target: "a"},
			want:   selection.State{Selected: "a"},
			effect: selection.Effect{HoverOff: "a", Consumed: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, eff := selection.Route(tt.state, tt.event)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.effect, eff)
		})
	}
}

func TestBuildingDownNeverSignalsBackground(t *testing.T) {
	_, eff := selection.Route(selection.State{}, selection.Event{Kind: selection.PointerDown, Target: "a"})
	assert.False(t, eff.Background)
}

// --- router ---

const width, height = 800, 600

func square(x, z, size float64) footprint.Polygon {
	return footprint.Polygon{{{x, z}, {x + size, z}, {x + size, z + size}, {x, z + size}}}
}

type fixture struct {
	graph      *scene.Graph
	cam        *camera.Controller
	router     *selection.Router
	selected   []*footprint.Building
	background int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{graph: scene.New(prism.New())}
	f.graph.Sync([]footprint.Building{
		{ID: "a", HeightM: 20, Footprint: footprint.Footprint{square(0, 0, 10)}},
		{ID: "b", HeightM: 20, Footprint: footprint.Footprint{square(100, 0, 10)}},
	})
	f.cam = camera.Frame(f.graph.Bounds())
	f.router = selection.NewRouter(f.graph, f.cam, width, height)
	f.router.OnSelect = func(b *footprint.Building) { f.selected = append(f.selected, b) }
	f.router.OnBackground = func() { f.background++ }
	return f
}

// roofPixel returns the screen position of the middle of a building's roof.
func (f *fixture) roofPixel(t *testing.T, x, z float64) (float64, float64) {
	t.Helper()
	px, py, ok := f.cam.Project(f.graph.TransformPoint(mgl64.Vec3{x, 20, z}), width, height)
	require.True(t, ok)
	return px, py
}

func (f *fixture) groundPixel(t *testing.T) (float64, float64) {
	t.Helper()
	px, py, ok := f.cam.Project(f.graph.Bounds().Center, width, height)
	require.True(t, ok)
	return px, py
}

func TestRouterSelectsBuilding(t *testing.T) {
	f := newFixture(t)
	px, py := f.roofPixel(t, 5, 5)

	eff, err := f.router.PointerDown(1, px, py)
	require.NoError(t, err)
	assert.True(t, eff.Consumed)
	assert.Equal(t, 0, f.background, "a building press never reaches the background")

	require.Len(t, f.selected, 1)
	assert.Equal(t, footprint.ID("a"), f.selected[0].ID)
	assert.Equal(t, scene.StateSelected, f.graph.State("a"))

	b, ok := f.router.Selected()
	require.True(t, ok)
	assert.Equal(t, footprint.ID("a"), b.ID)
}

func TestRouterReplacesSelection(t *testing.T) {
	f := newFixture(t)
	ax, ay := f.roofPixel(t, 5, 5)
	bx, by := f.roofPixel(t, 105, 5)

	_, err := f.router.PointerDown(1, ax, ay)
	require.NoError(t, err)
	_, err = f.router.PointerDown(1, bx, by)
	require.NoError(t, err)

	assert.Equal(t, scene.StateNormal, f.graph.State("a"))
	assert.Equal(t, scene.StateSelected, f.graph.State("b"))
	require.Len(t, f.selected, 2)
	assert.Equal(t, footprint.ID("b"), f.selected[1].ID)
}

func TestRouterBackgroundClears(t *testing.T) {
	f := newFixture(t)
	ax, ay := f.roofPixel(t, 5, 5)
	_, err := f.router.PointerDown(1, ax, ay)
	require.NoError(t, err)

	gx, gy := f.groundPixel(t)
	eff, err := f.router.PointerDown(1, gx, gy)
	require.NoError(t, err)
	assert.True(t, eff.Background)
	assert.Equal(t, 1, f.background)
	require.Len(t, f.selected, 2)
	assert.Nil(t, f.selected[1])
	_, ok := f.router.Selected()
	assert.False(t, ok)
	assert.Equal(t, scene.StateNormal, f.graph.State("a"))
}

func TestRouterHover(t *testing.T) {
	f := newFixture(t)
	ax, ay := f.roofPixel(t, 5, 5)
	bx, by := f.roofPixel(t, 105, 5)
	gx, gy := f.groundPixel(t)

	eff, err := f.router.PointerMove(1, ax, ay)
	require.NoError(t, err)
	assert.Equal(t, footprint.Key("a"), eff.HoverOn)
	assert.Equal(t, scene.StateHovered, f.graph.State("a"))

	// Same building again is a no-op.
	eff, err = f.router.PointerMove(1, ax, ay)
	require.NoError(t, err)
	assert.Equal(t, selection.Effect{}, eff)

	eff, err = f.router.PointerMove(1, bx, by)
	require.NoError(t, err)
	assert.Equal(t, footprint.Key("a"), eff.HoverOff)
	assert.Equal(t, footprint.Key("b"), eff.HoverOn)
	assert.Equal(t, scene.StateNormal, f.graph.State("a"))
	assert.Equal(t, scene.StateHovered, f.graph.State("b"))

	_, err = f.router.PointerMove(1, gx, gy)
	require.NoError(t, err)
	assert.Equal(t, scene.StateNormal, f.graph.State("b"))

	assert.Empty(t, f.selected, "hover never selects")
}

func TestRouterHoverPerPointer(t *testing.T) {
	f := newFixture(t)
	ax, ay := f.roofPixel(t, 5, 5)

	_, err := f.router.PointerMove(1, ax, ay)
	require.NoError(t, err)
	_, err = f.router.PointerMove(2, ax, ay)
	require.NoError(t, err)

	f.router.PointerLeave(1)
	assert.Equal(t, scene.StateHovered, f.graph.State("a"), "second pointer still hovers")
	f.router.PointerLeave(2)
	assert.Equal(t, scene.StateNormal, f.graph.State("a"))

	assert.Equal(t, selection.Effect{}, f.router.PointerLeave(3))
}

func TestRouterDispatchEnterReplacesHover(t *testing.T) {
	f := newFixture(t)

	f.router.Dispatch(selection.Event{Kind: selection.PointerEnter, Pointer: 1, Target: "a"})
	eff := f.router.Dispatch(selection.Event{Kind: selection.PointerEnter, Pointer: 1, Target: "b"})
	assert.Equal(t, footprint.Key("a"), eff.HoverOff)
	assert.Equal(t, scene.StateNormal, f.graph.State("a"))
	assert.Equal(t, scene.StateHovered, f.graph.State("b"))

	key, ok := f.router.Hovered(1)
	require.True(t, ok)
	assert.Equal(t, footprint.Key("b"), key)

	// Entering the same building twice does not stack hover.
	f.router.Dispatch(selection.Event{Kind: selection.PointerEnter, Pointer: 1, Target: "b"})
	f.router.PointerLeave(1)
	assert.Equal(t, scene.StateNormal, f.graph.State("b"))
}

func TestRouterHoverUnderSelection(t *testing.T) {
	f := newFixture(t)
	ax, ay := f.roofPixel(t, 5, 5)
	_, err := f.router.PointerMove(1, ax, ay)
	require.NoError(t, err)
	_, err = f.router.PointerDown(1, ax, ay)
	require.NoError(t, err)
	assert.Equal(t, scene.StateSelected, f.graph.State("a"))

	f.router.PointerLeave(1)
	assert.Equal(t, scene.StateSelected, f.graph.State("a"), "leaving does not deselect")
}

func TestRouterReconcile(t *testing.T) {
	f := newFixture(t)
	f.router.Select("b")
	ax, ay := f.roofPixel(t, 5, 5)
	_, err := f.router.PointerMove(1, ax, ay)
	require.NoError(t, err)

	f.graph.Sync([]footprint.Building{
		{ID: "b", HeightM: 20, Footprint: footprint.Footprint{square(100, 0, 10)}},
	})
	f.router.Reconcile()
	_, hovered := f.router.Hovered(1)
	assert.False(t, hovered)
	b, ok := f.router.Selected()
	require.True(t, ok, "b survived the sync")
	assert.Equal(t, footprint.ID("b"), b.ID)

	f.graph.Sync(nil)
	f.router.Reconcile()
	_, ok = f.router.Selected()
	assert.False(t, ok)
	assert.Nil(t, f.selected[len(f.selected)-1])
}

func TestRouterSelectInvisible(t *testing.T) {
	f := newFixture(t)
	f.router.Select("a")
	f.router.Select("missing")
	_, ok := f.router.Selected()
	assert.False(t, ok)
	assert.Equal(t, 0, f.background)
}

func TestRouterViewportError(t *testing.T) {
	f := newFixture(t)
	f.router.SetViewport(0, 0)
	_, err := f.router.PointerDown(1, 10, 10)
	assert.Error(t, err)
}
