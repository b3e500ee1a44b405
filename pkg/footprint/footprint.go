// Package footprint holds the building data model shared by the geometry
// pipeline: footprints expressed as polygons with holes in the scene-local
// ground plane, and the building records that carry them.
package footprint

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is a scene-local ground plane coordinate, (x, z) in metres.
type Point [2]float64

// X returns the east-west coordinate.
func (p Point) X() float64 { return p[0] }

// Z returns the north-south coordinate.
func (p Point) Z() float64 { return p[1] }

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p[0]) && !math.IsInf(p[0], 0) &&
		!math.IsNaN(p[1]) && !math.IsInf(p[1], 0)
}

// Orb returns the point as an orb.Point with z mapped onto orb's Y axis.
func (p Point) Orb() orb.Point { return orb.Point{p[0], p[1]} }

// Ring is a closed loop of points. The closing point may or may not be
// repeated.
type Ring []Point

// MinRingPoints is the smallest number of usable points a ring needs to
// bound an area.
const MinRingPoints = 3

// Usable returns the ring with non-finite points removed, or nil when fewer
// than MinRingPoints remain.
func (r Ring) Usable() Ring {
	out := make(Ring, 0, len(r))
	for _, p := range r {
		if p.Finite() {
			out = append(out, p)
		}
	}
	if len(out) < MinRingPoints {
		return nil
	}
	return out
}

// Orb converts the ring to a closed orb.Ring.
func (r Ring) Orb() orb.Ring {
	if len(r) == 0 {
		return nil
	}
	out := make(orb.Ring, 0, len(r)+1)
	for _, p := range r {
		out = append(out, p.Orb())
	}
	if !out.Closed() {
		out = append(out, out[0])
	}
	return out
}

// Polygon is an outer ring followed by zero or more hole rings.
type Polygon []Ring

// Outer returns the boundary ring, or nil for an empty polygon.
func (p Polygon) Outer() Ring {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

// Holes returns the rings after the outer boundary.
func (p Polygon) Holes() []Ring {
	if len(p) < 2 {
		return nil
	}
	return p[1:]
}

// Usable drops rings that cannot bound an area. The first surviving ring
// becomes the outer boundary. It returns nil when no ring survives, along
// with the number of rings dropped.
func (p Polygon) Usable() (Polygon, int) {
	out := make(Polygon, 0, len(p))
	dropped := 0
	for _, r := range p {
		u := r.Usable()
		if u == nil {
			dropped++
			continue
		}
		out = append(out, u)
	}
	if len(out) == 0 {
		return nil, dropped
	}
	return out, dropped
}

// Orb converts the polygon to an orb.Polygon with closed rings.
func (p Polygon) Orb() orb.Polygon {
	out := make(orb.Polygon, 0, len(p))
	for _, r := range p {
		out = append(out, r.Orb())
	}
	return out
}

// Area returns the planar area: the outer ring minus its holes.
func (p Polygon) Area() float64 {
	if len(p) == 0 {
		return 0
	}
	return planar.Area(p.Orb())
}

// Footprint is the full ground outline of one building. A building may
// have several disjoint polygons.
type Footprint []Polygon

// Usable returns only the polygons that still have a usable ring, and the
// counts of rings and polygons that were discarded.
func (f Footprint) Usable() (out Footprint, droppedRings, droppedPolygons int) {
	out = make(Footprint, 0, len(f))
	for _, poly := range f {
		u, n := poly.Usable()
		droppedRings += n
		if u == nil {
			droppedPolygons++
			continue
		}
		out = append(out, u)
	}
	return out, droppedRings, droppedPolygons
}

// EachPoint calls fn for every finite point in the footprint regardless of
// how many points its ring has.
func (f Footprint) EachPoint(fn func(Point)) {
	for _, poly := range f {
		for _, ring := range poly {
			for _, p := range ring {
				if p.Finite() {
					fn(p)
				}
			}
		}
	}
}

// Bound returns the 2D extent of all finite points. ok is false when the
// footprint has no finite point.
func (f Footprint) Bound() (b orb.Bound, ok bool) {
	f.EachPoint(func(p Point) {
		if !ok {
			b = orb.Bound{Min: p.Orb(), Max: p.Orb()}
			ok = true
			return
		}
		b = b.Extend(p.Orb())
	})
	return b, ok
}
