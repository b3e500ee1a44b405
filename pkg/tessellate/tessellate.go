// Package tessellate turns building footprints into triangle meshes using a
// geometry kernel. One mesh is produced per usable footprint polygon.
package tessellate

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/kernel"
)

// ErrEmptyMesh is returned when a kernel accepts a polygon but produces no
// triangles.
var ErrEmptyMesh = errors.New("tessellate: empty mesh")

// MinHeight is the extrusion height floor in metres. Buildings with a
// missing or tiny height still render as visible blocks.
const MinHeight = 6.0

// EffectiveHeight returns max(h, MinHeight). Non-finite heights count as
// missing.
func EffectiveHeight(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return MinHeight
	}
	return math.Max(h, MinHeight)
}

// Report summarizes one tessellation. Nothing in it is fatal: rejected
// polygons are skipped and the rest of the building still renders.
type Report struct {
	Polygons        int // polygons in the footprint
	Extruded        int // polygons that produced a mesh
	SkippedRings    int // rings with fewer than 3 usable points
	SkippedPolygons int // polygons left without a usable ring
	Failed          int // polygons the kernel rejected
	Errs            []error
}

// Skipped returns the number of polygons that produced no mesh.
func (r Report) Skipped() int {
	return r.SkippedPolygons + r.Failed
}

// Add accumulates o into r.
func (r *Report) Add(o Report) {
	r.Polygons += o.Polygons
	r.Extruded += o.Extruded
	r.SkippedRings += o.SkippedRings
	r.SkippedPolygons += o.SkippedPolygons
	r.Failed += o.Failed
	r.Errs = append(r.Errs, o.Errs...)
}

// Tessellate extrudes every usable polygon of b's footprint to
// EffectiveHeight(b.HeightM) and returns one mesh per polygon, named
// "<name>/<polygon index>". The tessellator is read-only and never mutates
// the building.
func Tessellate(name string, b *footprint.Building, k kernel.Kernel) ([]*kernel.Mesh, Report) {
	var rep Report
	if b == nil {
		return nil, rep
	}
	rep.Polygons = len(b.Footprint)
	height := EffectiveHeight(float64(b.HeightM))

	var meshes []*kernel.Mesh
	for i, poly := range b.Footprint {
		usable, dropped := poly.Usable()
		rep.SkippedRings += dropped
		if usable == nil {
			rep.SkippedPolygons++
			continue
		}
		m, err := extrude(k, usable, height)
		if err != nil {
			rep.Failed++
			rep.Errs = append(rep.Errs, fmt.Errorf("tessellate: %s polygon %d: %w", name, i, err))
			continue
		}
		m.Name = fmt.Sprintf("%s/%d", name, i)
		meshes = append(meshes, m)
		rep.Extruded++
	}
	return meshes, rep
}

func extrude(k kernel.Kernel, poly footprint.Polygon, height float64) (*kernel.Mesh, error) {
	solid, err := k.Extrude(poly.Orb(), height)
	if err != nil {
		return nil, err
	}
	m, err := k.ToMesh(solid)
	if err != nil {
		return nil, err
	}
	if m.IsEmpty() {
		return nil, ErrEmptyMesh
	}
	return m, nil
}
