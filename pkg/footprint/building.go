package footprint

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ID is a building identifier that may arrive as a JSON string or number.
// The empty ID means absent.
type ID string

// UnmarshalJSON accepts strings and numbers. Anything else decodes as absent.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		*id = ID(strings.TrimSpace(t))
	case json.Number:
		*id = ID(t.String())
	}
	return nil
}

// Height is a measurement that may arrive as a number, a numeric string or
// null. Invalid values decode as zero.
type Height float64

// UnmarshalJSON never fails; unparseable input yields zero.
func (h *Height) UnmarshalJSON(data []byte) error {
	*h = 0
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		*h = Height(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil {
			*h = Height(f)
		}
	}
	if math.IsNaN(float64(*h)) || math.IsInf(float64(*h), 0) {
		*h = 0
	}
	return nil
}

// UnmarshalJSON decodes polygons -> rings -> points leniently: a point that
// is not an array of at least two numbers is dropped, a ring or polygon that
// is not an array decodes as empty. Malformed footprints never fail the
// surrounding payload.
func (f *Footprint) UnmarshalJSON(data []byte) error {
	*f = nil
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	polys, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make(Footprint, 0, len(polys))
	for _, rp := range polys {
		out = append(out, decodePolygon(rp))
	}
	*f = out
	return nil
}

func decodePolygon(v any) Polygon {
	rings, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make(Polygon, 0, len(rings))
	for _, rr := range rings {
		out = append(out, decodeRing(rr))
	}
	return out
}

func decodeRing(v any) Ring {
	pts, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make(Ring, 0, len(pts))
	for _, rp := range pts {
		coords, ok := rp.([]any)
		if !ok || len(coords) < 2 {
			continue
		}
		x, okx := coords[0].(float64)
		z, okz := coords[1].(float64)
		if !okx || !okz {
			continue
		}
		out = append(out, Point{x, z})
	}
	return out
}

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Building is one structure as delivered by the data service. Only the
// identity fields, the footprint and the height feed the geometry pipeline;
// the rest is carried for display.
type Building struct {
	ID           ID        `json:"id,omitempty"`
	StructID     ID        `json:"struct_id,omitempty"`
	Footprint    Footprint `json:"footprint_local"`
	HeightM      Height    `json:"height_m"`
	HeightFt     Height    `json:"height_ft,omitempty"`
	Address      string    `json:"address,omitempty"`
	Community    string    `json:"community,omitempty"`
	Zoning       string    `json:"zoning,omitempty"`
	Stage        string    `json:"stage,omitempty"`
	GeometryType string    `json:"geometry_type,omitempty"`
	Centroid     *LatLng   `json:"centroid,omitempty"`
	RooftopElev  *float64  `json:"rooftop_elev_z,omitempty"`
	GroundElev   *float64  `json:"ground_elev_z,omitempty"`
}

// Key is the stable identity of a building within one scene.
type Key string

// KeyFor resolves a building's identity: id, then struct_id, then address,
// then a positional fallback "building-<index>".
func KeyFor(b *Building, index int) Key {
	switch {
	case b == nil:
	case b.ID != "":
		return Key(b.ID)
	case b.StructID != "":
		return Key(b.StructID)
	case strings.TrimSpace(b.Address) != "":
		return Key(strings.TrimSpace(b.Address))
	}
	return Key(fmt.Sprintf("building-%d", index))
}

// Key is shorthand for KeyFor(b, index).
func (b *Building) Key(index int) Key {
	return KeyFor(b, index)
}

// Label returns a human readable name for logs and detail panels.
func (b *Building) Label() string {
	if a := strings.TrimSpace(b.Address); a != "" {
		return a
	}
	if b.StructID != "" {
		return "structure " + string(b.StructID)
	}
	if b.ID != "" {
		return "building " + string(b.ID)
	}
	return "unnamed building"
}
