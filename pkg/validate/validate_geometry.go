package validate

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb/planar"

	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/triangulate"
)

// ---------------------------------------------------------------------------
// Tier 2: geometric validation
// ---------------------------------------------------------------------------

// validateGeometry checks every polygon of one building.
func validateGeometry(key footprint.Key, b *footprint.Building) []Finding {
	if len(b.Footprint) == 0 {
		return []Finding{{Key: key, Polygon: -1, Message: "no footprint", Severity: SeverityWarning}}
	}
	var out []Finding
	for i, poly := range b.Footprint {
		out = append(out, validatePolygon(key, i, poly)...)
	}
	return out
}

func validatePolygon(key footprint.Key, idx int, poly footprint.Polygon) []Finding {
	var out []Finding
	finding := func(sev Severity, format string, args ...any) {
		out = append(out, Finding{Key: key, Polygon: idx, Message: fmt.Sprintf(format, args...), Severity: sev})
	}

	nonFinite := 0
	for _, r := range poly {
		for _, p := range r {
			if !p.Finite() {
				nonFinite++
			}
		}
	}
	if nonFinite > 0 {
		finding(SeverityWarning, "%d non-finite points dropped", nonFinite)
	}

	usable, dropped := poly.Usable()
	if dropped > 0 {
		finding(SeverityWarning, "%d rings with fewer than %d points dropped", dropped, footprint.MinRingPoints)
	}
	if usable == nil {
		finding(SeverityError, "no ring with at least %d points", footprint.MinRingPoints)
		return out
	}

	outer := usable.Outer().Orb()
	for h, hole := range usable.Holes() {
		if !planar.RingContains(outer, hole[0].Orb()) {
			finding(SeverityWarning, "hole %d starts outside the outer ring", h+1)
		}
	}

	if _, err := triangulate.Polygon(usable.Orb()); err != nil {
		switch {
		case errors.Is(err, triangulate.ErrDegenerate):
			finding(SeverityError, "outline encloses no area")
		case errors.Is(err, triangulate.ErrTriangulation):
			finding(SeverityError, "outline self-intersects or a hole crosses it")
		default:
			finding(SeverityError, "%v", err)
		}
	}
	return out
}
