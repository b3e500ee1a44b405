// Package camera implements the orbit camera that frames the building
// scene: an eye on a sphere around a target, with damped rotate, pan and
// zoom, a limited polar range so the view never goes below the ground, and
// screen-to-world rays for hit testing.
//
// A Controller is not safe for concurrent use.
package camera

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/blockview/pkg/bounds"
	"github.com/chazu/blockview/pkg/kernel"
)

const (
	FOV     = 45.0 // vertical field of view, degrees
	Near    = 0.1
	Far     = 4000.0
	Damping = 0.12

	// MinFramingRadius keeps small scenes from framing too tight.
	MinFramingRadius = 150.0
	// MinFramingHeight is the lowest initial eye height.
	MinFramingHeight = 120.0

	DefaultMinDistance = 10.0
	DefaultMaxDistance = 3000.0

	settleEpsilon = 1e-6
	maxSettle     = 1000
)

var (
	MinPolar = math.Pi / 6
	MaxPolar = math.Pi / 2.05
)

var errViewport = errors.New("camera: viewport must have positive size")

// Controller is an orbit camera.
type Controller struct {
	Target mgl64.Vec3

	radius  float64
	polar   float64 // from +Y
	azimuth float64 // around +Y, from +Z towards +X

	dPolar, dAzimuth float64
	dPan             mgl64.Vec3

	MinDistance float64
	MaxDistance float64
	Damping     float64
}

// Frame returns a controller looking at the bounds center from above and
// behind: with r = max(radius, 150), the eye sits at
// (cx - 0.6r, max(0.9r, 120), cz + 1.2r).
func Frame(b bounds.Bounds) *Controller {
	r := math.Max(b.Radius, MinFramingRadius)
	eye := mgl64.Vec3{
		b.Center[0] - 0.6*r,
		math.Max(0.9*r, MinFramingHeight),
		b.Center[2] + 1.2*r,
	}
	c := &Controller{
		MinDistance: DefaultMinDistance,
		MaxDistance: DefaultMaxDistance,
		Damping:     Damping,
	}
	c.LookAt(eye, b.Center)
	return c
}

// LookAt places the eye at eye looking at target. The eye is not clamped
// until the next Update.
func (c *Controller) LookAt(eye, target mgl64.Vec3) {
	c.Target = target
	off := eye.Sub(target)
	c.radius = off.Len()
	if c.radius == 0 {
		c.polar, c.azimuth = 0, 0
		return
	}
	c.polar = math.Acos(mgl64.Clamp(off[1]/c.radius, -1, 1))
	c.azimuth = math.Atan2(off[0], off[2])
	c.dPolar, c.dAzimuth, c.dPan = 0, 0, mgl64.Vec3{}
}

// Position returns the eye position.
func (c *Controller) Position() mgl64.Vec3 {
	s := math.Sin(c.polar)
	return c.Target.Add(mgl64.Vec3{
		c.radius * s * math.Sin(c.azimuth),
		c.radius * math.Cos(c.polar),
		c.radius * s * math.Cos(c.azimuth),
	})
}

// Distance returns the eye to target distance.
func (c *Controller) Distance() float64 { return c.radius }

// Polar returns the angle between +Y and the eye direction.
func (c *Controller) Polar() float64 { return c.polar }

// Azimuth returns the eye angle around +Y.
func (c *Controller) Azimuth() float64 { return c.azimuth }

// Rotate queues an orbit by the given angles in radians.
func (c *Controller) Rotate(azimuth, polar float64) {
	c.dAzimuth += azimuth
	c.dPolar += polar
}

// Pan queues a move of the target and eye by offset.
func (c *Controller) Pan(offset mgl64.Vec3) {
	c.dPan = c.dPan.Add(offset)
}

// Zoom scales the eye distance by factor immediately; factor < 1 moves in.
func (c *Controller) Zoom(factor float64) {
	if !(factor > 0) {
		return
	}
	c.radius = mgl64.Clamp(c.radius*factor, c.MinDistance, c.MaxDistance)
}

// Update applies one damped step of the queued motion and clamps the eye
// into the allowed range. It returns true while motion remains.
func (c *Controller) Update() bool {
	d := c.Damping
	if d <= 0 || d > 1 {
		d = 1
	}
	c.azimuth += c.dAzimuth * d
	c.polar += c.dPolar * d
	c.Target = c.Target.Add(c.dPan.Mul(d))

	c.dAzimuth *= 1 - d
	c.dPolar *= 1 - d
	c.dPan = c.dPan.Mul(1 - d)

	c.polar = mgl64.Clamp(c.polar, MinPolar, MaxPolar)
	c.radius = mgl64.Clamp(c.radius, c.MinDistance, c.MaxDistance)

	return math.Abs(c.dAzimuth) > settleEpsilon ||
		math.Abs(c.dPolar) > settleEpsilon ||
		c.dPan.Len() > settleEpsilon
}

// Settle runs Update until the queued motion has died out.
func (c *Controller) Settle() {
	for i := 0; i < maxSettle && c.Update(); i++ {
	}
}

// View returns the world to camera matrix.
func (c *Controller) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position(), c.Target, mgl64.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for the given aspect ratio.
func (c *Controller) Projection(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(FOV), aspect, Near, Far)
}

// Ray returns the world space ray through pixel (px, py) of a width x
// height viewport with its origin at the top left. The ray starts on the
// near plane and its direction is unit length.
func (c *Controller) Ray(px, py float64, width, height int) (kernel.Ray, error) {
	if width <= 0 || height <= 0 {
		return kernel.Ray{}, errViewport
	}
	view := c.View()
	proj := c.Projection(float64(width) / float64(height))
	wy := float64(height) - py
	near, err := mgl64.UnProject(mgl64.Vec3{px, wy, 0}, view, proj, 0, 0, width, height)
	if err != nil {
		return kernel.Ray{}, err
	}
	far, err := mgl64.UnProject(mgl64.Vec3{px, wy, 1}, view, proj, 0, 0, width, height)
	if err != nil {
		return kernel.Ray{}, err
	}
	return kernel.Ray{Origin: near, Dir: far.Sub(near).Normalize()}, nil
}

// Project returns the pixel position of world point p, origin top left.
// ok is false when p is behind the camera.
func (c *Controller) Project(p mgl64.Vec3, width, height int) (x, y float64, ok bool) {
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	view := c.View()
	if view.Mul4x1(p.Vec4(1))[2] >= 0 {
		return 0, 0, false
	}
	win := mgl64.Project(p, view, c.Projection(float64(width)/float64(height)), 0, 0, width, height)
	return win[0], float64(height) - win[1], true
}
