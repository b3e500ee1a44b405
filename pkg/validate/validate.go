// Package validate checks building payloads before they are extruded.
// Errors mean some part of a building will not be drawn; warnings mean the
// input was repaired or a default was used.
package validate

import (
	"fmt"
	"strings"

	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/tessellate"
)

// Severity indicates whether a finding drops geometry or is advisory.
type Severity int

const (
	SeverityError   Severity = iota // geometry is dropped
	SeverityWarning                 // advisory
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Finding is a single validation finding.
type Finding struct {
	Key      footprint.Key `json:"key"`
	Polygon  int           `json:"polygon"` // -1 for building-level findings
	Message  string        `json:"message"`
	Severity Severity      `json:"severity"`
}

func (f Finding) Error() string {
	if f.Polygon < 0 {
		return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Key, f.Message)
	}
	return fmt.Sprintf("[%s] %s polygon %d: %s", f.Severity, f.Key, f.Polygon, f.Message)
}

// Result bundles errors and warnings from all tiers.
type Result struct {
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// Valid reports whether every building can be drawn in full.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Summary returns a one-line count of findings.
func (r Result) Summary() string {
	return fmt.Sprintf("%d errors, %d warnings", len(r.Errors), len(r.Warnings))
}

func (r *Result) add(fs []Finding) {
	for _, f := range fs {
		if f.Severity == SeverityWarning {
			r.Warnings = append(r.Warnings, f)
		} else {
			r.Errors = append(r.Errors, f)
		}
	}
}

// Validate runs the Tier 1 identity checks. It never mutates buildings.
func Validate(buildings []footprint.Building) []Finding {
	var out []Finding
	seen := make(map[footprint.Key]int, len(buildings))
	for i := range buildings {
		b := &buildings[i]
		key := b.Key(i)
		if first, dup := seen[key]; dup {
			out = append(out, Finding{
				Key:      key,
				Polygon:  -1,
				Message:  fmt.Sprintf("duplicate key, building %d is hidden by building %d", i, first),
				Severity: SeverityError,
			})
			continue
		}
		seen[key] = i
		if b.ID == "" && b.StructID == "" && strings.TrimSpace(b.Address) == "" {
			out = append(out, Finding{
				Key:      key,
				Polygon:  -1,
				Message:  "no id, struct_id or address; key depends on list position",
				Severity: SeverityWarning,
			})
		}
	}
	return out
}

// ValidateAll runs every tier: identity, geometry and attributes.
func ValidateAll(buildings []footprint.Building) Result {
	var r Result
	r.add(Validate(buildings))
	for i := range buildings {
		b := &buildings[i]
		key := b.Key(i)
		r.add(validateGeometry(key, b))
		r.add(validateAttributes(key, b))
	}
	return r
}

// validateAttributes checks the values that feed extrusion height.
func validateAttributes(key footprint.Key, b *footprint.Building) []Finding {
	h := float64(b.HeightM)
	if eff := tessellate.EffectiveHeight(h); eff != h {
		return []Finding{{
			Key:      key,
			Polygon:  -1,
			Message:  fmt.Sprintf("height %g m raised to %g m", h, eff),
			Severity: SeverityWarning,
		}}
	}
	return nil
}
