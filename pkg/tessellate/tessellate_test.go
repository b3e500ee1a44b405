package tessellate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/kernel"
	"github.com/chazu/blockview/pkg/kernel/prism"
	"github.com/chazu/blockview/pkg/tessellate"
)

// newKernel returns a fresh prism kernel for testing.
func newKernel() kernel.Kernel {
	return prism.New()
}

func square(x, z, size float64) footprint.Ring {
	return footprint.Ring{{x, z}, {x + size, z}, {x + size, z + size}, {x, z + size}}
}

// makeBuilding creates a building with the given height and polygons.
func makeBuilding(height float64, polys ...footprint.Polygon) *footprint.Building {
	return &footprint.Building{
		ID:        "b1",
		HeightM:   footprint.Height(height),
		Footprint: footprint.Footprint(polys),
	}
}

func TestEffectiveHeight(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 6},
		{-3, 6},
		{5.99, 6},
		{6, 6},
		{42, 42},
		{math.NaN(), 6},
		{math.Inf(1), 6},
	}
	for _, tt := range tests {
		if got := tessellate.EffectiveHeight(tt.in); got != tt.want {
			t.Errorf("EffectiveHeight(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSingleSquare(t *testing.T) {
	b := makeBuilding(30, footprint.Polygon{square(0, 0, 10)})
	meshes, rep := tessellate.Tessellate("b1", b, newKernel())

	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	if meshes[0].Name != "b1/0" {
		t.Errorf("expected mesh name b1/0, got %q", meshes[0].Name)
	}
	lo, hi := meshes[0].VerticalExtent()
	if lo != 0 || hi != 30 {
		t.Errorf("vertical extent = [%v, %v], want [0, 30]", lo, hi)
	}
	if rep.Extruded != 1 || rep.Skipped() != 0 {
		t.Errorf("unexpected report %+v", rep)
	}
}

func TestHeightFloor(t *testing.T) {
	for _, h := range []float64{0, 2} {
		b := makeBuilding(h, footprint.Polygon{square(0, 0, 10)})
		meshes, _ := tessellate.Tessellate("b", b, newKernel())
		if len(meshes) != 1 {
			t.Fatalf("expected 1 mesh, got %d", len(meshes))
		}
		if _, hi := meshes[0].VerticalExtent(); hi != tessellate.MinHeight {
			t.Errorf("height %v: top = %v, want %v", h, hi, tessellate.MinHeight)
		}
	}
}

func TestMultiPolygon(t *testing.T) {
	b := makeBuilding(12,
		footprint.Polygon{square(0, 0, 10)},
		footprint.Polygon{square(20, 0, 5)},
	)
	meshes, rep := tessellate.Tessellate("b", b, newKernel())
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if rep.Polygons != 2 || rep.Extruded != 2 {
		t.Errorf("unexpected report %+v", rep)
	}
}

func TestDegeneratePolygonsSkipped(t *testing.T) {
	b := makeBuilding(12,
		footprint.Polygon{{{0, 0}, {1, 1}}},                     // too few points
		footprint.Polygon{square(0, 0, 10)},                     // fine
		footprint.Polygon{{{0, 0}, {10, 10}, {10, 0}, {0, 10}}}, // bow tie
		footprint.Polygon{},
	)
	meshes, rep := tessellate.Tessellate("b", b, newKernel())
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	if meshes[0].Name != "b/1" {
		t.Errorf("mesh name should keep the polygon index, got %q", meshes[0].Name)
	}
	if rep.SkippedPolygons != 2 {
		t.Errorf("SkippedPolygons = %d, want 2", rep.SkippedPolygons)
	}
	if rep.SkippedRings != 1 {
		t.Errorf("SkippedRings = %d, want 1", rep.SkippedRings)
	}
	if rep.Failed != 1 || len(rep.Errs) != 1 {
		t.Errorf("Failed = %d errs = %d, want 1 and 1", rep.Failed, len(rep.Errs))
	}
}

func TestHoleKept(t *testing.T) {
	b := makeBuilding(10, footprint.Polygon{square(0, 0, 10), square(3, 3, 4)})
	meshes, _ := tessellate.Tessellate("b", b, newKernel())
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	// 8 cap triangles per side plus 8 walls.
	if meshes[0].TriangleCount() != 32 {
		t.Errorf("expected 32 triangles, got %d", meshes[0].TriangleCount())
	}
}

func TestNilAndEmpty(t *testing.T) {
	meshes, rep := tessellate.Tessellate("b", nil, newKernel())
	if meshes != nil || rep.Polygons != 0 {
		t.Error("nil building should produce nothing")
	}
	meshes, _ = tessellate.Tessellate("b", makeBuilding(10), newKernel())
	if len(meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(meshes))
	}
}

// --- kernel failures ---

// failingKernel rejects every outline.
type failingKernel struct{}

var errRejected = errors.New("rejected")

func (failingKernel) Extrude(orb.Polygon, float64) (kernel.Solid, error) { return nil, errRejected }
func (failingKernel) ToMesh(kernel.Solid) (*kernel.Mesh, error)          { return nil, errRejected }

func TestKernelErrorSkipsPolygon(t *testing.T) {
	b := makeBuilding(10, footprint.Polygon{square(0, 0, 10)})
	meshes, rep := tessellate.Tessellate("b", b, failingKernel{})
	if len(meshes) != 0 {
		t.Fatalf("expected no meshes, got %d", len(meshes))
	}
	if rep.Failed != 1 || !errors.Is(rep.Errs[0], errRejected) {
		t.Errorf("expected wrapped kernel error, got %+v", rep)
	}
}

// emptyKernel accepts every polygon and meshes it to nothing.
type emptyKernel struct{}

func (emptyKernel) Extrude(orb.Polygon, float64) (kernel.Solid, error) { return nil, nil }
func (emptyKernel) ToMesh(kernel.Solid) (*kernel.Mesh, error)          { return &kernel.Mesh{}, nil }

func TestEmptyMeshSkipsPolygon(t *testing.T) {
	b := makeBuilding(10, footprint.Polygon{square(0, 0, 10)})
	meshes, rep := tessellate.Tessellate("b", b, emptyKernel{})
	if len(meshes) != 0 {
		t.Fatalf("expected no meshes, got %d", len(meshes))
	}
	if rep.Failed != 1 || !errors.Is(rep.Errs[0], tessellate.ErrEmptyMesh) {
		t.Errorf("expected ErrEmptyMesh, got %+v", rep)
	}
}

func TestReportAdd(t *testing.T) {
	var total tessellate.Report
	total.Add(tessellate.Report{Polygons: 2, Extruded: 1, Failed: 1, Errs: []error{errRejected}})
	total.Add(tessellate.Report{Polygons: 1, SkippedPolygons: 1, SkippedRings: 3})
	if total.Polygons != 3 || total.Skipped() != 2 || total.SkippedRings != 3 || len(total.Errs) != 1 {
		t.Errorf("unexpected total %+v", total)
	}
}
