// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Meshes come from marching
// cubes, so walls and roofs are approximate; use the prism kernel when exact
// footprints matter.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"

	"github.com/chazu/blockview/pkg/kernel"
	"github.com/chazu/blockview/pkg/triangulate"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel rendering with the given number of marching
// cubes cells along the longest axis. cells <= 0 selects DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// Cells returns the marching cubes resolution.
func (k *SdfxKernel) Cells() int {
	return k.cells
}

// Extrude builds the outline as a 2D polygon minus its holes, extrudes it
// and stands it up so the extrusion runs along +Y from y=0.
func (k *SdfxKernel) Extrude(outline orb.Polygon, height float64) (kernel.Solid, error) {
	if len(outline) == 0 {
		return nil, kernel.ErrEmptyOutline
	}
	if !(height > 0) || math.IsInf(height, 0) {
		return nil, fmt.Errorf("sdfx: invalid height %v", height)
	}
	rings, err := triangulate.Clean(outline)
	if err != nil {
		return nil, fmt.Errorf("sdfx: extrude: %w", err)
	}

	shape, err := polygon2D(rings[0])
	if err != nil {
		return nil, err
	}
	if len(rings) > 1 {
		holes := make([]sdf.SDF2, 0, len(rings)-1)
		for _, r := range rings[1:] {
			h, err := polygon2D(r)
			if err != nil {
				return nil, err
			}
			holes = append(holes, h)
		}
		shape = sdf.Difference2D(shape, sdf.Union2D(holes...))
	}

	// Extrude3D centers the solid on z. Lift it onto the ground, then rotate
	// z up onto y. The outline was built with v = -z so the rotation lands
	// footprint z on scene z.
	s := sdf.Extrude3D(shape, height)
	m := sdf.RotateX(-math.Pi / 2).Mul(sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: height / 2}))
	return &sdfxSolid{s: sdf.Transform3D(s, m)}, nil
}

func polygon2D(r orb.Ring) (sdf.SDF2, error) {
	pts := make([]v2.Vec, 0, len(r))
	for _, p := range r {
		pts = append(pts, v2.Vec{X: p[0], Y: -p[1]})
	}
	s, err := sdf.Polygon2D(pts)
	if err != nil {
		return nil, fmt.Errorf("sdfx: polygon: %w", err)
	}
	return s, nil
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok {
		return nil, fmt.Errorf("sdfx: unsupported solid %T", s)
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(ss.s, renderer)

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
	}
	for _, tri := range triangles {
		n := tri.Normal()
		m.AddTriangle(vec(tri[0]), vec(tri[1]), vec(tri[2]), mgl64.Vec3{n.X, n.Y, n.Z})
	}
	return m, nil
}

func vec(v v3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}
