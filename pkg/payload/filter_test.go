package payload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/payload"
)

func ids(bs []footprint.Building) []footprint.ID {
	out := make([]footprint.ID, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}

func f(attr, op string, val any) payload.Filter {
	return payload.Filter{Attribute: attr, Operator: op, Value: val}
}

func TestApplyFilters(t *testing.T) {
	buildings := []footprint.Building{
		{ID: "tower", HeightM: 180, Zoning: "CR20-C20/R20", Address: "1 Centre St"},
		{ID: "shop", HeightM: 8, Zoning: "C-COR1"},
		{ID: "house", HeightM: 9, Zoning: "R-C2"},
		{ID: "empty", HeightM: 0},
		{ID: "42", StructID: "7", HeightM: 12},
	}
	tests := []struct {
		name    string
		filters []payload.Filter
		want    []footprint.ID
	}{
		{"none", nil, []footprint.ID{"tower", "shop", "house", "empty", "42"}},
		{"greater", []payload.Filter{f("height_m", ">", 100.0)}, []footprint.ID{"tower"}},
		{"numeric string coerced", []payload.Filter{f("height_m", "<=", "9")}, []footprint.ID{"shop", "house"}},
		{"missing height never orders", []payload.Filter{f("height_m", "<", 10.0)}, []footprint.ID{"shop", "house"}},
		{"missing height is not equal", []payload.Filter{f("height_m", "!=", 8.0)}, []footprint.ID{"tower", "house", "empty", "42"}},
		{"numeric value against text id", []payload.Filter{f("id", "=", 42.0)}, []footprint.ID{"42"}},
		{"numeric value against text struct_id", []payload.Filter{f("struct_id", "==", 7.0)}, []footprint.ID{"42"}},
		{"numeric value ordered as text", []payload.Filter{f("id", "<", 5.0)}, []footprint.ID{"42"}},
		{"equal", []payload.Filter{f("height_m", "==", 8.0)}, []footprint.ID{"shop"}},
		{"not equal", []payload.Filter{f("zoning", "!=", "R-C2")}, []footprint.ID{"tower", "shop", "empty", "42"}},
		{"contains is case insensitive", []payload.Filter{f("zoning", "contains", "C-")}, []footprint.ID{"shop"}},
		{"contains skips missing", []payload.Filter{f("address", "contains", "")}, []footprint.ID{"tower"}},
		{"conjunction", []payload.Filter{f("height_m", ">", 5.0), f("zoning", "contains", "cor")}, []footprint.ID{"shop"}},
		{"ordering on missing is false", []payload.Filter{f("rooftop_elev_z", ">", 0.0)}, []footprint.ID{}},
		{"mismatched types never order", []payload.Filter{f("height_m", ">", "tall")}, []footprint.ID{}},
		{"unknown operator ignored", []payload.Filter{f("height_m", "~", 1.0)}, []footprint.ID{"tower", "shop", "house", "empty", "42"}},
		{"missing attribute ignored", []payload.Filter{f("", ">", 1.0)}, []footprint.ID{"tower", "shop", "house", "empty", "42"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := payload.Apply(buildings, tt.filters)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestNarrowKeepsMetadata(t *testing.T) {
	ts := int64(99)
	p := &payload.Buildings{
		Count:         2,
		Buildings:     []footprint.Building{{ID: "a", HeightM: 50}, {ID: "b", HeightM: 5}},
		Origin:        &payload.DefaultOrigin,
		FetchedAtUnix: &ts,
	}
	filters := []payload.Filter{{Attribute: "height_m", Operator: ">=", Value: 10.0}}
	r := payload.Narrow(p, filters)
	assert.Equal(t, 1, r.Count)
	assert.Equal(t, filters, r.Filters)
	assert.Equal(t, &ts, r.FetchedAtUnix)
	assert.Len(t, p.Buildings, 2, "input untouched")
}
