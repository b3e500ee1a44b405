// Package bounds computes the scene bounding volume used to frame the
// camera, size the ground and anchor the building scale.
package bounds

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"

	"github.com/chazu/blockview/pkg/footprint"
)

const (
	// DefaultRadius is the radius of the empty scene.
	DefaultRadius = 200.0
	// MinExtent floors width and depth so a single point still has size.
	MinExtent = 1.0
)

// Bounds is the ground plane extent of a set of buildings. Center.Y is
// always 0.
type Bounds struct {
	Center mgl64.Vec3 `json:"center"`
	Radius float64    `json:"radius"`
	Width  float64    `json:"width"`
	Depth  float64    `json:"depth"`
	Empty  bool       `json:"empty"`
}

// Default returns the bounds used when no building has a usable point.
func Default() Bounds {
	return Bounds{
		Radius: DefaultRadius,
		Width:  2 * DefaultRadius,
		Depth:  2 * DefaultRadius,
		Empty:  true,
	}
}

// Compute reduces every finite footprint point of every building to a
// bounding rectangle. Points count even when their ring is too short to
// extrude. The reduction compares points one at a time, so it is safe for
// any number of points.
func Compute(buildings []footprint.Building) Bounds {
	var (
		b  orb.Bound
		ok bool
	)
	for i := range buildings {
		fb, has := buildings[i].Footprint.Bound()
		if !has {
			continue
		}
		if !ok {
			b, ok = fb, true
			continue
		}
		b = b.Union(fb)
	}
	if !ok {
		return Default()
	}
	return FromBound(b)
}

// FromBound converts a ground plane rectangle, x on orb's X and z on orb's
// Y, to Bounds.
func FromBound(b orb.Bound) Bounds {
	width := math.Max(b.Max[0]-b.Min[0], MinExtent)
	depth := math.Max(b.Max[1]-b.Min[1], MinExtent)
	c := b.Center()
	return Bounds{
		Center: mgl64.Vec3{c[0], 0, c[1]},
		Radius: math.Max(width, depth) / 2,
		Width:  width,
		Depth:  depth,
	}
}

// Contains reports whether the ground point (x, z) lies within the bounds
// rectangle.
func (b Bounds) Contains(x, z float64) bool {
	return math.Abs(x-b.Center[0]) <= b.Width/2 && math.Abs(z-b.Center[2]) <= b.Depth/2
}

const (
	groundMargin      = 400.0
	groundMinSize     = 600.0
	groundCellSize    = 25.0
	groundMinDivision = 20
	groundMaxDivision = 60
)

// Ground is the square ground plane and grid drawn under the buildings.
type Ground struct {
	Center    mgl64.Vec3 `json:"center"`
	Size      float64    `json:"size"`
	Divisions int        `json:"divisions"`
}

// GroundFor sizes the ground plane: max(2*radius + 400, 600) on a side with
// one grid line about every 25 m, clamped to 20..60 divisions.
func GroundFor(b Bounds) Ground {
	size := math.Max(b.Radius*2+groundMargin, groundMinSize)
	div := int(math.Round(size / groundCellSize))
	div = max(groundMinDivision, min(groundMaxDivision, div))
	return Ground{
		Center:    mgl64.Vec3{b.Center[0], 0, b.Center[2]},
		Size:      size,
		Divisions: div,
	}
}
