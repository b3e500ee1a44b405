// Package triangulate splits planar polygons with holes into triangles.
// It is used to cap extruded footprints.
package triangulate

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var (
	// ErrDegenerate is returned for outlines that do not enclose an area.
	ErrDegenerate = errors.New("triangulate: degenerate polygon")
	// ErrTriangulation is returned when the triangles produced do not cover
	// the polygon, which happens for self-intersecting rings and holes that
	// leave the outer boundary.
	ErrTriangulation = errors.New("triangulate: triangles do not cover polygon")
)

// Result is a triangulated polygon.
type Result struct {
	// Rings is the cleaned polygon: open rings without repeated points, the
	// outer ring counter-clockwise and holes clockwise.
	Rings orb.Polygon
	// Points holds every distinct ring point, in ring order, followed by
	// any points added along ring edges.
	Points []orb.Point
	// Indices holds three indices into Points per triangle, each triangle
	// counter-clockwise.
	Indices []int
}

// TriangleCount returns the number of triangles.
func (r *Result) TriangleCount() int {
	return len(r.Indices) / 3
}

// Area returns the summed area of all triangles.
func (r *Result) Area() float64 {
	sum := 0.0
	for t := 0; t+2 < len(r.Indices); t += 3 {
		sum += math.Abs(triArea(r.Points[r.Indices[t]], r.Points[r.Indices[t+1]], r.Points[r.Indices[t+2]]))
	}
	return sum
}

// Clean normalizes a polygon for triangulation and extrusion. Closing and
// consecutive duplicate points are removed, the outer ring is made
// counter-clockwise and holes clockwise. Holes with fewer than three
// distinct points are dropped.
func Clean(p orb.Polygon) (orb.Polygon, error) {
	if len(p) == 0 {
		return nil, ErrDegenerate
	}
	outer := dedupe(p[0])
	if len(outer) < 3 {
		return nil, fmt.Errorf("%w: outer ring has %d distinct points", ErrDegenerate, len(outer))
	}
	orient(outer, orb.CCW)
	if outer.Orientation() == 0 {
		return nil, fmt.Errorf("%w: outer ring has no area", ErrDegenerate)
	}

	out := orb.Polygon{open(outer)}
	for _, h := range p[1:] {
		hole := dedupe(h)
		if len(hole) < 3 {
			continue
		}
		orient(hole, orb.CW)
		if hole.Orientation() == 0 {
			continue
		}
		out = append(out, open(hole))
	}
	return out, nil
}

// Polygon triangulates p. The result covers exactly the outer ring minus its
// holes; anything else is reported as ErrTriangulation.
//
// The point set is triangulated with sdfx's Delaunay triangulation. Ring
// edges missing from it are split at their midpoints until every edge is
// part of the mesh, then triangles outside the polygon are dropped.
func Polygon(p orb.Polygon) (*Result, error) {
	rings, err := Clean(p)
	if err != nil {
		return nil, err
	}
	res := &Result{Rings: rings}
	outline := closed(rings)

	b := newBoundary(rings)
	limit := maxPointFactor*len(b.points) + maxPointSlack
	for round := 0; ; round++ {
		tris, err := delaunay(b.points)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTriangulation, err)
		}
		missing := b.missing(tris)
		if len(missing) == 0 {
			res.Points = b.points
			res.Indices = interior(b.points, tris, outline)
			break
		}
		if round == maxRefine || len(b.points)+len(missing) > limit {
			return nil, fmt.Errorf("%w: %d ring edges not recovered", ErrTriangulation, len(missing))
		}
		b.split(missing)
	}
	if len(res.Indices) == 0 {
		return nil, fmt.Errorf("%w: no triangles", ErrTriangulation)
	}

	want := planar.Area(outline)
	got := res.Area()
	if want <= 0 || math.Abs(got-want) > 1e-6*math.Max(1, want) {
		return nil, fmt.Errorf("%w: area %.6g, expected %.6g", ErrTriangulation, got, want)
	}
	return res, nil
}

// dedupe returns a closed copy of r with consecutive duplicates removed.
func dedupe(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	for _, pt := range r {
		if len(out) > 0 && out[len(out)-1].Equal(pt) {
			continue
		}
		out = append(out, pt)
	}
	for len(out) > 1 && out[len(out)-1].Equal(out[0]) {
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return out
	}
	return append(out, out[0])
}

func orient(r orb.Ring, want orb.Orientation) {
	if o := r.Orientation(); o != 0 && o != want {
		r.Reverse()
	}
}

func open(r orb.Ring) orb.Ring {
	if r.Closed() && len(r) > 1 {
		return r[:len(r)-1]
	}
	return r
}

func closed(p orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, len(p))
	for _, r := range p {
		c := append(orb.Ring(nil), r...)
		if len(c) > 0 && !c.Closed() {
			c = append(c, c[0])
		}
		out = append(out, c)
	}
	return out
}

func triArea(a, b, c orb.Point) float64 {
	return ((b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])) / 2
}
