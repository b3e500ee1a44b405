package camera_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/blockview/pkg/bounds"
	"github.com/chazu/blockview/pkg/camera"
)

func assertVec(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-6), "want %v, got %v", want, got)
}

func TestFrameDefaultBounds(t *testing.T) {
	c := camera.Frame(bounds.Default())
	// radius 200: eye at (-120, 180, 240).
	assertVec(t, mgl64.Vec3{-120, 180, 240}, c.Position())
	assertVec(t, mgl64.Vec3{0, 0, 0}, c.Target)
}

func TestFrameSmallSceneUsesFloor(t *testing.T) {
	c := camera.Frame(bounds.Bounds{Center: mgl64.Vec3{10, 0, 20}, Radius: 5})
	// r = 150: y = max(135, 120) = 135.
	assertVec(t, mgl64.Vec3{10 - 90, 135, 20 + 180}, c.Position())
	assertVec(t, mgl64.Vec3{10, 0, 20}, c.Target)
}

func TestFramedPolarWithinLimits(t *testing.T) {
	c := camera.Frame(bounds.Default())
	before := c.Position()
	c.Update()
	assertVec(t, before, c.Position())
	assert.GreaterOrEqual(t, c.Polar(), camera.MinPolar)
	assert.LessOrEqual(t, c.Polar(), camera.MaxPolar)
}

func TestRotateIsDamped(t *testing.T) {
	c := camera.Frame(bounds.Default())
	start := c.Azimuth()

	c.Rotate(0.5, 0)
	moving := c.Update()
	assert.True(t, moving)
	assert.InDelta(t, start+0.5*camera.Damping, c.Azimuth(), 1e-12)

	c.Settle()
	assert.InDelta(t, start+0.5, c.Azimuth(), 1e-4)
	assert.False(t, c.Update())
}

func TestPolarClamp(t *testing.T) {
	c := camera.Frame(bounds.Default())
	c.Rotate(0, 10)
	c.Settle()
	assert.InDelta(t, camera.MaxPolar, c.Polar(), 1e-12)
	assert.Greater(t, c.Position()[1], 0.0, "eye stays above the ground")

	c.Rotate(0, -20)
	c.Settle()
	assert.InDelta(t, camera.MinPolar, c.Polar(), 1e-12)
}

func TestZoomClamps(t *testing.T) {
	c := camera.Frame(bounds.Default())
	d := c.Distance()
	c.Zoom(0.5)
	assert.InDelta(t, d/2, c.Distance(), 1e-9)

	c.Zoom(1e-6)
	assert.Equal(t, c.MinDistance, c.Distance())
	c.Zoom(1e9)
	assert.Equal(t, c.MaxDistance, c.Distance())

	c.Zoom(-1)
	assert.Equal(t, c.MaxDistance, c.Distance(), "non-positive factors are ignored")
}

func TestPanMovesTarget(t *testing.T) {
	c := camera.Frame(bounds.Default())
	offset := c.Position().Sub(c.Target)
	c.Pan(mgl64.Vec3{50, 0, -20})
	c.Settle()
	assert.True(t, c.Target.ApproxEqualThreshold(mgl64.Vec3{50, 0, -20}, 1e-4), "target %v", c.Target)
	assert.True(t, offset.ApproxEqualThreshold(c.Position().Sub(c.Target), 1e-6), "pan keeps the eye offset")
}

func TestRayThroughCenterHitsTarget(t *testing.T) {
	c := camera.Frame(bounds.Default())
	r, err := c.Ray(400, 300, 800, 600)
	require.NoError(t, err)

	want := c.Target.Sub(c.Position()).Normalize()
	assert.True(t, want.ApproxEqualThreshold(r.Dir, 1e-6), "dir %v, want %v", r.Dir, want)
	assert.InDelta(t, 1.0, r.Dir.Len(), 1e-9)
	assert.InDelta(t, camera.Near, r.Origin.Sub(c.Position()).Dot(want), 1e-4)
}

func TestRayScreenOrientation(t *testing.T) {
	c := camera.Frame(bounds.Default())
	top, err := c.Ray(400, 0, 800, 600)
	require.NoError(t, err)
	bottom, err := c.Ray(400, 600, 800, 600)
	require.NoError(t, err)
	// Pixel rows grow downward, so the top row looks higher.
	assert.Greater(t, top.Dir[1], bottom.Dir[1])
}

func TestProjectRoundTrip(t *testing.T) {
	c := camera.Frame(bounds.Default())
	x, y, ok := c.Project(c.Target, 800, 600)
	require.True(t, ok)
	assert.InDelta(t, 400, x, 1e-6)
	assert.InDelta(t, 300, y, 1e-6)

	_, _, ok = c.Project(c.Position().Add(c.Position().Sub(c.Target)), 800, 600)
	assert.False(t, ok, "points behind the eye do not project")
}

func TestRayRejectsEmptyViewport(t *testing.T) {
	c := camera.Frame(bounds.Default())
	_, err := c.Ray(0, 0, 0, 600)
	assert.Error(t, err)
	assert.False(t, math.IsNaN(c.Distance()))
}
