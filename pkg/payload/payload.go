// Package payload decodes the building lists delivered by the city data
// service and the filter endpoint. Decoding is lenient below the top level:
// a malformed footprint never fails a payload, it just yields nothing to
// extrude.
package payload

import (
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/chazu/blockview/pkg/footprint"
)

// DefaultOrigin is the local coordinate origin of the downtown dataset.
var DefaultOrigin = footprint.LatLng{Lat: 51.047, Lng: -114.067}

// Buildings is a building list with its fetch metadata.
type Buildings struct {
	Count         int                  `json:"count"`
	Buildings     []footprint.Building `json:"buildings"`
	Origin        *footprint.LatLng    `json:"origin,omitempty"`
	FetchedAtUnix *int64               `json:"fetched_at_unix,omitempty"`
}

// Filter is one attribute criterion of a filter query.
type Filter struct {
	Attribute string `json:"attribute"`
	Operator  string `json:"operator"`
	Value     any    `json:"value"`
}

// FilterResult is a building list narrowed by filters.
type FilterResult struct {
	Buildings
	Filters []Filter `json:"filters"`
	Query   string   `json:"query,omitempty"`
}

// wireBuildings accepts the alternate fetchedAt spelling.
type wireBuildings struct {
	Count         *int                 `json:"count"`
	Buildings     []footprint.Building `json:"buildings"`
	Origin        *footprint.LatLng    `json:"origin"`
	FetchedAtUnix *int64               `json:"fetched_at_unix"`
	FetchedAt     *int64               `json:"fetchedAt"`
	Filters       []Filter             `json:"filters"`
	Query         string               `json:"query"`
}

func (w wireBuildings) buildings() Buildings {
	b := Buildings{
		Buildings:     w.Buildings,
		Origin:        w.Origin,
		FetchedAtUnix: w.FetchedAtUnix,
	}
	if b.Buildings == nil {
		b.Buildings = []footprint.Building{}
	}
	if b.FetchedAtUnix == nil {
		b.FetchedAtUnix = w.FetchedAt
	}
	if w.Count != nil {
		b.Count = *w.Count
	} else {
		b.Count = len(b.Buildings)
	}
	return b
}

// Decode parses a building list. A missing count defaults to the number of
// buildings.
func Decode(data []byte) (*Buildings, error) {
	var w wireBuildings
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "payload: decode buildings")
	}
	b := w.buildings()
	return &b, nil
}

// DecodeFilterResult parses a filter endpoint response.
func DecodeFilterResult(data []byte) (*FilterResult, error) {
	var w wireBuildings
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "payload: decode filter result")
	}
	return &FilterResult{Buildings: w.buildings(), Filters: w.Filters, Query: w.Query}, nil
}

// Encode writes b in the service's wire format.
func Encode(b *Buildings) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, errors.Wrap(err, "payload: encode buildings")
	}
	return data, nil
}
