package scene

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/kernel"
)

// BuildingScale magnifies every building about the scene center.
const BuildingScale = 1.5

// Transform maps building space to world space: a uniform BuildingScale
// about the bounds center, so buildings grow in place.
func (g *Graph) Transform() mgl64.Mat4 {
	c := g.bounds.Center
	return mgl64.Translate3D(c[0], c[1], c[2]).
		Mul4(mgl64.Scale3D(BuildingScale, BuildingScale, BuildingScale)).
		Mul4(mgl64.Translate3D(-c[0], -c[1], -c[2]))
}

// TransformPoint maps a building space point to world space.
func (g *Graph) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return g.Transform().Mul4x1(p.Vec4(1)).Vec3()
}

// Hit is the result of a successful pick.
type Hit struct {
	Key      footprint.Key
	Distance float64 // along the world ray, in multiples of its direction
	Point    mgl64.Vec3
}

const pickPad = 1e-6

// Pick returns the nearest building hit by the world space ray. The ray is
// mapped into building space, candidates come from the spatial index, and
// the nearest triangle hit decides. Ties go to the earlier entry.
func (g *Graph) Pick(ray kernel.Ray) (Hit, bool) {
	if g.index.Size() == 0 {
		return Hit{}, false
	}
	local := ray.Transform(g.Transform().Inv())

	lo, hi, ok := g.extent()
	if !ok {
		return Hit{}, false
	}
	t0, t1, ok := local.Clip(lo, hi)
	if !ok || math.IsInf(t1, 0) {
		return Hit{}, false
	}
	a, b := local.At(t0), local.At(t1)
	seg, err := rtreego.NewRectFromPoints(
		rtreego.Point{min(a[0], b[0]) - pickPad, min(a[1], b[1]) - pickPad, min(a[2], b[2]) - pickPad},
		rtreego.Point{max(a[0], b[0]) + pickPad, max(a[1], b[1]) + pickPad, max(a[2], b[2]) + pickPad},
	)
	if err != nil {
		return Hit{}, false
	}

	var best *Entry
	bestDist := math.Inf(1)
	for _, s := range g.index.SearchIntersect(seg, rayFilter(local)) {
		e := s.(*Entry)
		for _, m := range e.Meshes {
			d, ok := m.Raycast(local)
			if !ok {
				continue
			}
			if d < bestDist || (d == bestDist && best != nil && e.Index < best.Index) {
				best, bestDist = e, d
			}
		}
	}
	if best == nil {
		return Hit{}, false
	}
	return Hit{Key: best.Key, Distance: bestDist, Point: ray.At(bestDist)}, true
}

// rayFilter refuses index entries whose box the ray misses.
func rayFilter(r kernel.Ray) rtreego.Filter {
	return func(_ []rtreego.Spatial, obj rtreego.Spatial) (refuse, abort bool) {
		e := obj.(*Entry)
		_, ok := r.IntersectBox(e.min, e.max)
		return !ok, false
	}
}

// extent returns the box around every indexed entry in building space.
func (g *Graph) extent() (lo, hi mgl64.Vec3, ok bool) {
	for _, e := range g.entries {
		if !e.hasBox {
			continue
		}
		if !ok {
			lo, hi, ok = e.min, e.max, true
			continue
		}
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], e.min[a])
			hi[a] = max(hi[a], e.max[a])
		}
	}
	return lo, hi, ok
}
