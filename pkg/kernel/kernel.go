// Package kernel defines the abstract geometry kernel interface.
// Implementations (prism, sdfx) turn ground plane outlines into solids and
// solids into triangle meshes behind this interface, so the extrusion
// pipeline can swap backends without changing the rest of the system.
package kernel

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
)

// ErrEmptyOutline is returned when an outline has no usable ring.
var ErrEmptyOutline = errors.New("kernel: empty outline")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box in scene space.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Extrude builds a flat-topped prism over outline. Outline coordinates
	// are ground plane (x, z); the prism rises from y=0 to y=height.
	// Ring 0 is the boundary, the remaining rings are holes.
	Extrude(outline orb.Polygon, height float64) (Solid, error)

	// ToMesh converts a solid to a triangle mesh.
	ToMesh(s Solid) (*Mesh, error)
}

// GroundToScene maps extrusion space, where the outline lies in the (u, v)
// plane and the extrusion runs along w, into scene space: u to x, v to z
// and w to y. It swaps two axes, so it reverses triangle winding.
var GroundToScene = mgl64.Mat4FromCols(
	mgl64.Vec4{1, 0, 0, 0},
	mgl64.Vec4{0, 0, 1, 0},
	mgl64.Vec4{0, 1, 0, 0},
	mgl64.Vec4{0, 0, 0, 1},
)
