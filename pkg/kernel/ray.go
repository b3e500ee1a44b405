package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const rayEpsilon = 1e-9

// Ray is a half line in scene space. Dir need not be normalized; distances
// are measured in multiples of Dir.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Transform returns the ray mapped through m. Distances along the result
// match distances along r because the direction is mapped without being
// renormalized.
func (r Ray) Transform(m mgl64.Mat4) Ray {
	o := m.Mul4x1(r.Origin.Vec4(1)).Vec3()
	d := m.Mul4x1(r.Dir.Vec4(0)).Vec3()
	return Ray{Origin: o, Dir: d}
}

// IntersectBox performs a slab test against the box [min, max] and returns
// the entry distance. A ray starting inside the box enters at 0.
func (r Ray) IntersectBox(min, max mgl64.Vec3) (float64, bool) {
	t0, _, ok := r.Clip(min, max)
	return t0, ok
}

// Clip returns the parameter range of the part of r inside [min, max].
func (r Ray) Clip(min, max mgl64.Vec3) (enter, exit float64, ok bool) {
	enter, exit = 0, math.Inf(1)
	for a := 0; a < 3; a++ {
		if math.Abs(r.Dir[a]) < rayEpsilon {
			if r.Origin[a] < min[a] || r.Origin[a] > max[a] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / r.Dir[a]
		t0 := (min[a] - r.Origin[a]) * inv
		t1 := (max[a] - r.Origin[a]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		enter = math.Max(enter, t0)
		exit = math.Min(exit, t1)
		if enter > exit {
			return 0, 0, false
		}
	}
	return enter, exit, true
}

// IntersectTriangle returns the distance to triangle abc using the
// Möller-Trumbore test. Both faces count as hits.
func (r Ray) IntersectTriangle(a, b, c mgl64.Vec3) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < rayEpsilon {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
