package payload

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/chazu/blockview/pkg/footprint"
)

// Load reads a building list from disk. Files ending in .geojson are
// normalized from raw footprints around DefaultOrigin; anything else is
// decoded as a service payload.
func Load(path string) (*Buildings, error) {
	return LoadWithOrigin(path, DefaultOrigin)
}

// LoadWithOrigin is Load with an explicit projection origin for GeoJSON.
func LoadWithOrigin(path string, origin footprint.LatLng) (*Buildings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "payload: read %s", path)
	}
	var b *Buildings
	if strings.EqualFold(filepath.Ext(path), ".geojson") {
		b, err = FromGeoJSON(data, origin)
	} else {
		b, err = Decode(data)
	}
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return b, nil
}

// LoadZoning reads land use districts from a GeoJSON file.
func LoadZoning(path string) ([]ZoningArea, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "payload: read %s", path)
	}
	return ZoningFromGeoJSON(data)
}
