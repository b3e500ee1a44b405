package payload

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/chazu/blockview/pkg/footprint"
)

// Operators understood by Apply.
const (
	OpEqual        = "="
	OpEqualAlt     = "=="
	OpNotEqual     = "!="
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpLess         = "<"
	OpLessEqual    = "<="
	OpContains     = "contains"
)

// attribute returns a building field by its wire name. Numbers come back as
// float64, text as string, and missing values as nil.
func attribute(b *footprint.Building, name string) any {
	switch name {
	case "id":
		return optString(string(b.ID))
	case "struct_id":
		return optString(string(b.StructID))
	case "address":
		return optString(b.Address)
	case "community":
		return optString(b.Community)
	case "zoning":
		return optString(b.Zoning)
	case "stage":
		return optString(b.Stage)
	case "geometry_type":
		return optString(b.GeometryType)
	case "height_m":
		return optHeight(b.HeightM)
	case "height_ft":
		return optHeight(b.HeightFt)
	case "rooftop_elev_z":
		return optFloat(b.RooftopElev)
	case "ground_elev_z":
		return optFloat(b.GroundElev)
	}
	return nil
}

func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// optHeight treats a zero height as absent; the feed encodes a missing or
// unparseable height as 0.
func optHeight(h footprint.Height) any {
	if h == 0 {
		return nil
	}
	return float64(h)
}

func optFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// coerce converts the filter value to the attribute's type: numeric text
// becomes a number for numeric attributes, and any scalar becomes text for
// text attributes so id = 42 matches "42".
func coerce(val, attr any) any {
	switch attr.(type) {
	case float64:
		s, ok := val.(string)
		if !ok {
			return val
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return val
		}
		return f
	case string:
		switch val.(type) {
		case float64, bool:
			return text(val)
		}
	}
	return val
}

func text(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// compare orders a and b when both are numbers or both are strings.
func compare(a, b any) (int, bool) {
	switch a := a.(type) {
	case float64:
		if b, ok := b.(float64); ok {
			switch {
			case a < b:
				return -1, true
			case a > b:
				return 1, true
			}
			return 0, true
		}
	case string:
		if b, ok := b.(string); ok {
			return strings.Compare(a, b), true
		}
	}
	return 0, false
}

// Match reports whether b satisfies f. Unknown operators match everything.
func (f Filter) Match(b *footprint.Building) bool {
	a := attribute(b, f.Attribute)
	v := coerce(f.Value, a)
	switch f.Operator {
	case OpEqual, OpEqualAlt:
		return a == v
	case OpNotEqual:
		return a != v
	case OpContains:
		return a != nil && strings.Contains(strings.ToLower(text(a)), strings.ToLower(text(v)))
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		if a == nil || v == nil {
			return false
		}
		c, ok := compare(a, v)
		if !ok {
			return false
		}
		switch f.Operator {
		case OpGreater:
			return c > 0
		case OpGreaterEqual:
			return c >= 0
		case OpLess:
			return c < 0
		}
		return c <= 0
	}
	return true
}

// Valid reports whether f names an attribute and a known operator.
func (f Filter) Valid() bool {
	if f.Attribute == "" {
		return false
	}
	switch f.Operator {
	case OpEqual, OpEqualAlt, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpContains:
		return true
	}
	return false
}

// Apply narrows buildings to those matching every valid filter. Invalid
// filters are ignored. The input slice is not modified.
func Apply(buildings []footprint.Building, filters []Filter) []footprint.Building {
	active := lo.Filter(filters, func(f Filter, _ int) bool { return f.Valid() })
	return lo.Filter(buildings, func(b footprint.Building, _ int) bool {
		for _, f := range active {
			if !f.Match(&b) {
				return false
			}
		}
		return true
	})
}

// Narrow applies filters to p and returns the filter result.
func Narrow(p *Buildings, filters []Filter) *FilterResult {
	out := Apply(p.Buildings, filters)
	return &FilterResult{
		Buildings: Buildings{
			Count:         len(out),
			Buildings:     out,
			Origin:        p.Origin,
			FetchedAtUnix: p.FetchedAtUnix,
		},
		Filters: filters,
	}
}
