package payload_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/payload"
)

// Two structures near the downtown origin. The first has string elevations
// and a street address, the second is a multipolygon with no address.
const rawFootprints = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "geometry": {"type": "Polygon", "coordinates": [[
       [-114.067, 51.047], [-114.066, 51.047], [-114.066, 51.048], [-114.067, 51.048], [-114.067, 51.047]]]},
     "properties": {"struct_id": "1001", "rooftop_elev_z": "1080.5", "grd_elev_max_z": "1050.5",
       "grd_elev_min_z": "1049", "address": " 100 Main St ", "stage": "Existing"}},
    {"type": "Feature",
     "geometry": {"type": "MultiPolygon", "coordinates": [
       [[[-114.065, 51.047], [-114.064, 51.047], [-114.064, 51.048], [-114.065, 51.047]]],
       [[[-114.063, 51.047], [-114.062, 51.047], [-114.062, 51.048], [-114.063, 51.047]]]]},
     "properties": {"struct_id": 2002, "rooftop_elev_z": 1040, "grd_elev_min_z": 1045}}
  ]
}`

func TestFromGeoJSON(t *testing.T) {
	p, err := payload.FromGeoJSON([]byte(rawFootprints), payload.DefaultOrigin)
	require.NoError(t, err)
	require.Len(t, p.Buildings, 2)
	require.NotNil(t, p.Origin)

	a := p.Buildings[0]
	assert.Equal(t, footprint.ID("1001"), a.ID)
	assert.Equal(t, "100 Main St", a.Address)
	assert.Equal(t, "Existing", a.Stage)
	assert.Equal(t, "Polygon", a.GeometryType)
	assert.InDelta(t, 30.0, float64(a.HeightM), 1e-9, "rooftop minus max ground")
	assert.InDelta(t, 30*3.28084, float64(a.HeightFt), 1e-9)

	require.Len(t, a.Footprint, 1)
	ring := a.Footprint[0][0]
	require.Len(t, ring, 5)
	assert.InDelta(t, 0, ring[0].X(), 1e-6)
	assert.InDelta(t, 0, ring[0].Z(), 1e-6)
	assert.InDelta(t, 69.8, ring[1].X(), 1e-6, "one thousandth of a degree east")
	assert.InDelta(t, 111.0, ring[2].Z(), 1e-6, "one thousandth of a degree north")

	require.NotNil(t, a.Centroid)
	// Vertex mean includes the closing point.
	assert.InDelta(t, -114.0666, a.Centroid.Lng, 1e-9)
	assert.InDelta(t, 51.0474, a.Centroid.Lat, 1e-9)

	b := p.Buildings[1]
	assert.Equal(t, footprint.ID("2002"), b.ID)
	assert.Equal(t, "MultiPolygon", b.GeometryType)
	assert.Len(t, b.Footprint, 2)
	assert.Zero(t, float64(b.HeightM), "negative heights clamp to zero")
	assert.Contains(t, b.Address, "Downtown Calgary (ID: 2002)")
}

func TestFromGeoJSONOtherGeometry(t *testing.T) {
	data := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-114, 51]}, "properties": {}}]}`
	p, err := payload.FromGeoJSON([]byte(data), payload.DefaultOrigin)
	require.NoError(t, err)
	require.Len(t, p.Buildings, 1)
	assert.Empty(t, p.Buildings[0].Footprint)
	assert.Nil(t, p.Buildings[0].Centroid)
	assert.Equal(t, "Downtown Calgary (ID: )", p.Buildings[0].Address)
}

func TestLocalProjection(t *testing.T) {
	proj := payload.LocalProjection(footprint.LatLng{Lat: 50, Lng: -100})
	got := proj(orb.Point{-99, 51})
	assert.InDelta(t, payload.MetersPerDegLng, got[0], 1e-9)
	assert.InDelta(t, payload.MetersPerDegLat, got[1], 1e-9)
}

func TestEnrichZoning(t *testing.T) {
	zones := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {"land_use_district": "CR20-C20/R20"},
		 "geometry": {"type": "Polygon", "coordinates": [[[-114.07,51.04],[-114.06,51.04],[-114.06,51.05],[-114.07,51.05],[-114.07,51.04]]]}},
		{"type": "Feature", "properties": {"land_use_district": "ignored"},
		 "geometry": {"type": "Point", "coordinates": [-114.06, 51.04]}},
		{"type": "Feature", "properties": {},
		 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}]}`
	areas, err := payload.ZoningFromGeoJSON([]byte(zones))
	require.NoError(t, err)
	require.Len(t, areas, 1)

	buildings := []footprint.Building{
		{ID: "in", Centroid: &footprint.LatLng{Lat: 51.045, Lng: -114.065}},
		{ID: "out", Centroid: &footprint.LatLng{Lat: 52, Lng: -114.065}},
		{ID: "zoned", Zoning: "M-1", Centroid: &footprint.LatLng{Lat: 51.045, Lng: -114.065}},
		{ID: "nowhere"},
	}
	assert.Equal(t, 1, payload.EnrichZoning(buildings, areas))
	assert.Equal(t, "CR20-C20/R20", buildings[0].Zoning)
	assert.Empty(t, buildings[1].Zoning)
	assert.Equal(t, "M-1", buildings[2].Zoning)
}
