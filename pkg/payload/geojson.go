package payload

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
	"github.com/pkg/errors"

	"github.com/chazu/blockview/pkg/footprint"
)

// Local projection scale around the downtown origin.
const (
	MetersPerDegLat = 111000.0
	MetersPerDegLng = 69800.0

	feetPerMeter = 3.28084
)

// LocalProjection maps lng/lat to ground-plane meters relative to origin:
// x grows east, z grows north.
func LocalProjection(origin footprint.LatLng) orb.Projection {
	return func(p orb.Point) orb.Point {
		return orb.Point{
			(p.Lon() - origin.Lng) * MetersPerDegLng,
			(p.Lat() - origin.Lat) * MetersPerDegLat,
		}
	}
}

// FromGeoJSON normalizes a feature collection of raw building footprints,
// as published by the open data portal, into a building list in local
// meters around origin.
func FromGeoJSON(data []byte, origin footprint.LatLng) (*Buildings, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "payload: decode feature collection")
	}
	proj := LocalProjection(origin)
	out := make([]footprint.Building, 0, len(fc.Features))
	for _, f := range fc.Features {
		out = append(out, normalizeFeature(f, proj))
	}
	o := origin
	return &Buildings{Count: len(out), Buildings: out, Origin: &o}, nil
}

func normalizeFeature(f *geojson.Feature, proj orb.Projection) footprint.Building {
	props := f.Properties
	b := footprint.Building{
		ID:           footprint.ID(propString(props, "struct_id")),
		Stage:        propString(props, "stage"),
		Zoning:       propString(props, "zoning"),
		GeometryType: "Polygon",
	}
	if f.Geometry != nil {
		b.GeometryType = f.Geometry.GeoJSONType()
	}

	var polys orb.MultiPolygon
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		polys = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		polys = g
	}
	if len(polys) > 0 && len(polys[0]) > 0 {
		b.Centroid = ringCentroid(polys[0][0])
	}
	for _, p := range polys {
		// project.Polygon works in place.
		local := project.Polygon(p.Clone(), proj)
		b.Footprint = append(b.Footprint, toFootprint(local))
	}

	rooftop, hasRoof := propFloat(props, "rooftop_elev_z")
	ground, hasGround := propFloat(props, "grd_elev_max_z")
	if !hasGround {
		ground, hasGround = propFloat(props, "grd_elev_min_z")
	}
	if hasRoof {
		b.RooftopElev = &rooftop
	}
	if hasGround {
		b.GroundElev = &ground
	}
	if hasRoof && hasGround {
		h := math.Max(rooftop-ground, 0)
		b.HeightM = footprint.Height(h)
		b.HeightFt = footprint.Height(h * feetPerMeter)
	}

	b.Address = buildAddress(props, b.Centroid)
	return b
}

func toFootprint(p orb.Polygon) footprint.Polygon {
	out := make(footprint.Polygon, 0, len(p))
	for _, r := range p {
		if len(r) == 0 {
			continue
		}
		ring := make(footprint.Ring, len(r))
		for i, pt := range r {
			ring[i] = footprint.Point{pt[0], pt[1]}
		}
		out = append(out, ring)
	}
	return out
}

// ringCentroid is the vertex mean of a lng/lat ring.
func ringCentroid(r orb.Ring) *footprint.LatLng {
	if len(r) == 0 {
		return nil
	}
	var sx, sy float64
	for _, p := range r {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(r))
	return &footprint.LatLng{Lat: sy / n, Lng: sx / n}
}

func buildAddress(props geojson.Properties, c *footprint.LatLng) string {
	for _, key := range []string{"address", "full_address"} {
		if a := strings.TrimSpace(propString(props, key)); a != "" {
			return a
		}
	}
	id := propString(props, "struct_id")
	if c != nil {
		return fmt.Sprintf("Downtown Calgary (ID: %s) at %.5f, %.5f", id, c.Lat, c.Lng)
	}
	return fmt.Sprintf("Downtown Calgary (ID: %s)", id)
}

// propString reads a property as text. Numbers are formatted without
// trailing zeros.
func propString(props geojson.Properties, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// propFloat reads a numeric property. The portal publishes numbers as
// strings, so both forms are accepted.
func propFloat(props geojson.Properties, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ZoningArea is one land use district polygon in lng/lat.
type ZoningArea struct {
	Code     string
	Geometry orb.Geometry
}

var zoningKeys = []string{"land_use_district", "district", "zone", "zoning", "code"}

// ZoningFromGeoJSON reads land use districts from a feature collection.
// Features without a polygon or a district code are skipped.
func ZoningFromGeoJSON(data []byte) ([]ZoningArea, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "payload: decode zoning")
	}
	var out []ZoningArea
	for _, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		for _, k := range zoningKeys {
			if code := strings.TrimSpace(propString(f.Properties, k)); code != "" {
				out = append(out, ZoningArea{Code: code, Geometry: f.Geometry})
				break
			}
		}
	}
	return out, nil
}

// EnrichZoning fills in the zoning of buildings that have none from the
// first district containing their centroid. It returns how many buildings
// were updated.
func EnrichZoning(buildings []footprint.Building, areas []ZoningArea) int {
	n := 0
	for i := range buildings {
		b := &buildings[i]
		if b.Zoning != "" || b.Centroid == nil {
			continue
		}
		pt := orb.Point{b.Centroid.Lng, b.Centroid.Lat}
		for _, a := range areas {
			if contains(a.Geometry, pt) {
				b.Zoning = a.Code
				n++
				break
			}
		}
	}
	return n
}

func contains(g orb.Geometry, pt orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt)
	}
	return false
}
