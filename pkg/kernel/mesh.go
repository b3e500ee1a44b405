package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // which building and polygon this came from

	released bool
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// ByteSize returns the size of the vertex, normal and index buffers.
func (m *Mesh) ByteSize() int {
	return 4 * (len(m.Vertices) + len(m.Normals) + len(m.Indices))
}

// Release drops the mesh buffers. A released mesh is empty and must not be
// handed to a renderer again. Calling Release twice is a no-op.
func (m *Mesh) Release() {
	m.Vertices = nil
	m.Normals = nil
	m.Indices = nil
	m.released = true
}

// Released reports whether Release has been called.
func (m *Mesh) Released() bool {
	return m.released
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(m.Vertices[3*i]),
		float64(m.Vertices[3*i+1]),
		float64(m.Vertices[3*i+2]),
	}
}

// AddTriangle appends a flat shaded triangle a, b, c with face normal n.
func (m *Mesh) AddTriangle(a, b, c, n mgl64.Vec3) {
	base := uint32(m.VertexCount())
	for _, v := range [3]mgl64.Vec3{a, b, c} {
		m.Vertices = append(m.Vertices, float32(v[0]), float32(v[1]), float32(v[2]))
		m.Normals = append(m.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// Bounds returns the axis-aligned box around all vertices. ok is false for
// an empty mesh.
func (m *Mesh) Bounds() (min, max mgl64.Vec3, ok bool) {
	if m.IsEmpty() {
		return min, max, false
	}
	min = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		for a := 0; a < 3; a++ {
			min[a] = math.Min(min[a], v[a])
			max[a] = math.Max(max[a], v[a])
		}
	}
	return min, max, true
}

// VerticalExtent returns the lowest and highest y of the mesh.
func (m *Mesh) VerticalExtent() (low, high float64) {
	min, max, ok := m.Bounds()
	if !ok {
		return 0, 0
	}
	return min[1], max[1]
}

// Raycast returns the distance along r to the nearest triangle hit.
func (m *Mesh) Raycast(r Ray) (float64, bool) {
	best, hit := math.Inf(1), false
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a := m.Vertex(int(m.Indices[t]))
		b := m.Vertex(int(m.Indices[t+1]))
		c := m.Vertex(int(m.Indices[t+2]))
		if d, ok := r.IntersectTriangle(a, b, c); ok && d < best {
			best, hit = d, true
		}
	}
	return best, hit
}
