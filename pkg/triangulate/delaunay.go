package triangulate

import (
	"errors"
	"math"
	"math/rand"

	"github.com/deadsy/sdfx/render"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	// jitter is the largest offset, relative to the polygon's extent, added
	// to each point before triangulating. It breaks up the collinear and
	// cocircular points footprints are full of; output uses the original
	// coordinates.
	jitter = 1e-7

	maxRefine      = 12
	maxPointFactor = 8
	maxPointSlack  = 256
)

type edge [2]int

func (e edge) key() edge {
	if e[0] > e[1] {
		return edge{e[1], e[0]}
	}
	return e
}

// boundary is the ring edges of a polygon as index pairs into points.
type boundary struct {
	points []orb.Point
	index  map[orb.Point]int
	edges  []edge
}

func newBoundary(rings orb.Polygon) *boundary {
	b := &boundary{index: make(map[orb.Point]int)}
	for _, r := range rings {
		first := b.add(r[0])
		prev := first
		for _, pt := range r[1:] {
			i := b.add(pt)
			b.edges = append(b.edges, edge{prev, i})
			prev = i
		}
		b.edges = append(b.edges, edge{prev, first})
	}
	return b
}

func (b *boundary) add(pt orb.Point) int {
	if i, ok := b.index[pt]; ok {
		return i
	}
	b.index[pt] = len(b.points)
	b.points = append(b.points, pt)
	return len(b.points) - 1
}

// missing returns the positions in b.edges of ring edges that no triangle
// has as a side.
func (b *boundary) missing(tris []triangle) []int {
	have := make(map[edge]bool, 3*len(tris))
	for _, t := range tris {
		have[edge{t[0], t[1]}.key()] = true
		have[edge{t[1], t[2]}.key()] = true
		have[edge{t[2], t[0]}.key()] = true
	}
	var out []int
	for i, e := range b.edges {
		if !have[e.key()] {
			out = append(out, i)
		}
	}
	return out
}

// split replaces each listed edge by two halves meeting at its midpoint.
func (b *boundary) split(which []int) {
	skip := make(map[int]bool, len(which))
	for _, i := range which {
		skip[i] = true
	}
	edges := make([]edge, 0, len(b.edges)+len(which))
	for i, e := range b.edges {
		if !skip[i] {
			edges = append(edges, e)
			continue
		}
		p, q := b.points[e[0]], b.points[e[1]]
		m := b.add(orb.Point{(p[0] + q[0]) / 2, (p[1] + q[1]) / 2})
		edges = append(edges, edge{e[0], m}, edge{m, e[1]})
	}
	b.edges = edges
}

// triangle is three indices into a point slice, counter-clockwise.
type triangle [3]int

// delaunay triangulates pts with render.Delaunay2d. The points are
// normalized to a unit box around their center and jittered first.
func delaunay(pts []orb.Point) ([]triangle, error) {
	bound := orb.MultiPoint(pts).Bound()
	c := bound.Center()
	size := math.Max(bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1])
	if !(size > 0) {
		return nil, errors.New("points have no extent")
	}

	rnd := rand.New(rand.NewSource(int64(len(pts))))
	vs := make(v2.VecSet, len(pts))
	index := make(map[v2.Vec]int, len(pts))
	for i, p := range pts {
		v := v2.Vec{
			X: (p[0]-c[0])/size + jitter*(2*rnd.Float64()-1),
			Y: (p[1]-c[1])/size + jitter*(2*rnd.Float64()-1),
		}
		if _, dup := index[v]; dup {
			return nil, errors.New("coincident points")
		}
		index[v] = i
		vs[i] = v
	}

	// Delaunay2d sorts vs in place; its indices refer to the sorted order.
	ts, err := render.Delaunay2d(vs)
	if err != nil {
		return nil, err
	}
	out := make([]triangle, 0, len(ts))
	for _, t := range ts {
		a, b, d := vs[t[0]], vs[t[1]], vs[t[2]]
		tri := triangle{index[a], index[b], index[d]}
		if (b.X-a.X)*(d.Y-a.Y)-(d.X-a.X)*(b.Y-a.Y) < 0 {
			tri[1], tri[2] = tri[2], tri[1]
		}
		out = append(out, tri)
	}
	return out, nil
}

// interior returns the indices of the triangles inside outline. Triangles
// that are flat or flipped in the original coordinates are dropped.
func interior(pts []orb.Point, tris []triangle, outline orb.Polygon) []int {
	out := make([]int, 0, 3*len(tris))
	for _, t := range tris {
		a, b, c := pts[t[0]], pts[t[1]], pts[t[2]]
		if triArea(a, b, c) <= 0 {
			continue
		}
		centroid := orb.Point{(a[0] + b[0] + c[0]) / 3, (a[1] + b[1] + c[1]) / 3}
		if planar.PolygonContains(outline, centroid) {
			out = append(out, t[0], t[1], t[2])
		}
	}
	return out
}
