package scene

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/google/uuid"

	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/tessellate"
)

// geometrySpace namespaces geometry revisions.
var geometrySpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("blockview:geometry"))

// Revision fingerprints everything that shapes a building's meshes: its
// usable footprint and its effective height. Two buildings with equal
// revisions tessellate identically.
func Revision(b *footprint.Building) uuid.UUID {
	var buf bytes.Buffer
	put := func(f float64) {
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(f))
		buf.Write(tmp[:])
	}
	put(tessellate.EffectiveHeight(float64(b.HeightM)))

	usable, _, _ := b.Footprint.Usable()
	for _, poly := range usable {
		buf.WriteByte('P')
		for _, ring := range poly {
			buf.WriteByte('R')
			for _, p := range ring {
				put(p[0])
				put(p[1])
			}
		}
	}
	return uuid.NewSHA1(geometrySpace, buf.Bytes())
}
