// Package prism implements the kernel.Kernel interface with exact
// flat-topped prisms: a triangulated floor and roof joined by one vertical
// wall per ring edge. It produces no bevels and no curve subdivision.
package prism

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"

	"github.com/chazu/blockview/pkg/kernel"
	"github.com/chazu/blockview/pkg/triangulate"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// solid is a cleaned, triangulated outline with its extrusion height.
type solid struct {
	tri    *triangulate.Result
	height float64
}

// BoundingBox returns the axis-aligned bounding box in scene space.
func (s *solid) BoundingBox() (min, max [3]float64) {
	b := s.tri.Rings.Bound()
	min = [3]float64{b.Min[0], 0, b.Min[1]}
	max = [3]float64{b.Max[0], s.height, b.Max[1]}
	return min, max
}

// Kernel implements kernel.Kernel with exact prisms.
type Kernel struct{}

// New returns a new prism Kernel.
func New() *Kernel {
	return &Kernel{}
}

// Extrude triangulates the outline. Rings are cleaned first: closing and
// repeated points are removed, the boundary is made counter-clockwise and
// holes clockwise.
func (k *Kernel) Extrude(outline orb.Polygon, height float64) (kernel.Solid, error) {
	if len(outline) == 0 {
		return nil, kernel.ErrEmptyOutline
	}
	if !(height > 0) || math.IsInf(height, 0) {
		return nil, fmt.Errorf("prism: invalid height %v", height)
	}
	res, err := triangulate.Polygon(outline)
	if err != nil {
		return nil, fmt.Errorf("prism: extrude: %w", err)
	}
	return &solid{tri: res, height: height}, nil
}

var (
	up   = mgl64.Vec3{0, 1, 0}
	down = mgl64.Vec3{0, -1, 0}
)

// ToMesh emits the floor, the roof and the walls with flat normals. Every
// triangle is wound counter-clockwise seen from outside the solid.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ps, ok := s.(*solid)
	if !ok {
		return nil, fmt.Errorf("prism: unsupported solid %T", s)
	}
	res, h := ps.tri, ps.height
	m := &kernel.Mesh{}

	for t := 0; t+2 < len(res.Indices); t += 3 {
		a := res.Points[res.Indices[t]]
		b := res.Points[res.Indices[t+1]]
		c := res.Points[res.Indices[t+2]]
		addFace(m, at(a, 0), at(b, 0), at(c, 0), down)
		addFace(m, at(a, h), at(b, h), at(c, h), up)
	}

	for _, ring := range res.Rings {
		for i := range ring {
			p0, p1 := ring[i], ring[(i+1)%len(ring)]
			du, dv := p1[0]-p0[0], p1[1]-p0[1]
			// Outer rings run counter-clockwise and holes clockwise, so the
			// solid is always on the left of the edge.
			n := toScene(mgl64.Vec3{dv, -du, 0}).Normalize()
			b0, b1, t0, t1 := at(p0, 0), at(p1, 0), at(p0, h), at(p1, h)
			addFace(m, b0, b1, t1, n)
			addFace(m, b0, t1, t0, n)
		}
	}
	return m, nil
}

// at lifts a ground plane point to height w in scene space.
func at(p orb.Point, w float64) mgl64.Vec3 {
	return kernel.GroundToScene.Mul4x1(mgl64.Vec4{p[0], p[1], w, 1}).Vec3()
}

func toScene(v mgl64.Vec3) mgl64.Vec3 {
	return kernel.GroundToScene.Mul4x1(v.Vec4(0)).Vec3()
}

// addFace appends triangle abc, flipping it when its winding disagrees with
// the intended outward normal n.
func addFace(m *kernel.Mesh, a, b, c, n mgl64.Vec3) {
	if b.Sub(a).Cross(c.Sub(a)).Dot(n) < 0 {
		b, c = c, b
	}
	m.AddTriangle(a, b, c, n)
}
