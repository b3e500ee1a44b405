// Package scene maintains the set of building meshes currently on screen.
// Each visible building owns exactly one entry, keyed by its resolved
// identity; an entry owns the meshes extruded from the building's footprint
// and releases them when the building leaves or changes.
//
// A Graph is not safe for concurrent use.
package scene

import (
	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chazu/blockview/pkg/bounds"
	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/kernel"
	"github.com/chazu/blockview/pkg/tessellate"
)

// Entry is one building in the scene.
type Entry struct {
	Key      footprint.Key
	Index    int // position in the visible set
	Building *footprint.Building
	Meshes   []*kernel.Mesh
	Revision uuid.UUID
	Report   tessellate.Report

	min, max mgl64.Vec3
	hasBox   bool
}

// Bounds implements rtreego.Spatial with the entry's box in building space.
func (e *Entry) Bounds() rtreego.Rect {
	r, _ := rtreego.NewRectFromPoints(
		rtreego.Point{e.min[0], e.min[1], e.min[2]},
		rtreego.Point{e.max[0], e.max[1], e.max[2]},
	)
	return r
}

// Box returns the entry's axis-aligned box in building space.
func (e *Entry) Box() (min, max mgl64.Vec3, ok bool) {
	return e.min, e.max, e.hasBox
}

func (e *Entry) computeBox() {
	e.hasBox = false
	for _, m := range e.Meshes {
		mn, mx, ok := m.Bounds()
		if !ok {
			continue
		}
		if !e.hasBox {
			e.min, e.max, e.hasBox = mn, mx, true
			continue
		}
		for a := 0; a < 3; a++ {
			e.min[a] = min(e.min[a], mn[a])
			e.max[a] = max(e.max[a], mx[a])
		}
	}
}

func (e *Entry) release() int {
	for _, m := range e.Meshes {
		m.Release()
	}
	n := len(e.Meshes)
	e.Meshes = nil
	e.hasBox = false
	return n
}

// SyncStats reports what one Sync did.
type SyncStats struct {
	Visible        int // entries after the sync
	Built          int // entries extruded in this sync
	Reused         int // entries kept from the previous sync
	Released       int // entries dropped or rebuilt
	MeshesReleased int
	MeshesBuilt    int
	Duplicates     int // buildings whose key was already taken
	Tessellation   tessellate.Report
}

// Graph is the building scene graph.
type Graph struct {
	kernel  kernel.Kernel
	entries map[footprint.Key]*Entry
	order   []footprint.Key
	bounds  bounds.Bounds
	index   *rtreego.Rtree

	selected footprint.Key
	hovered  map[footprint.Key]int
}

// New returns an empty graph that extrudes with k.
func New(k kernel.Kernel) *Graph {
	return &Graph{
		kernel:  k,
		entries: make(map[footprint.Key]*Entry),
		bounds:  bounds.Default(),
		index:   rtreego.NewTree(3, 2, 8),
		hovered: make(map[footprint.Key]int),
	}
}

type pending struct {
	key      footprint.Key
	building *footprint.Building
	revision uuid.UUID
}

// Sync makes the graph show exactly buildings. Entries whose key left the
// set or whose geometry changed release their meshes before anything new is
// extruded, all within this call. Unchanged entries are reused as is. When
// two buildings resolve to the same key the first one wins.
func (g *Graph) Sync(buildings []footprint.Building) SyncStats {
	var stats SyncStats

	next := make([]pending, 0, len(buildings))
	seen := make(map[footprint.Key]bool, len(buildings))
	for i := range buildings {
		b := buildings[i]
		key := b.Key(i)
		if seen[key] {
			stats.Duplicates++
			continue
		}
		seen[key] = true
		next = append(next, pending{key: key, building: &b, revision: Revision(&b)})
	}
	wanted := lo.SliceToMap(next, func(p pending) (footprint.Key, uuid.UUID) {
		return p.key, p.revision
	})

	g.bounds = bounds.Compute(buildings)

	// Release pass.
	for _, key := range g.order {
		e := g.entries[key]
		if rev, ok := wanted[key]; ok && rev == e.Revision {
			continue
		}
		if e.hasBox {
			g.index.Delete(e)
		}
		stats.MeshesReleased += e.release()
		stats.Released++
		delete(g.entries, key)
	}
	for key := range g.hovered {
		if _, ok := wanted[key]; !ok {
			delete(g.hovered, key)
		}
	}
	if _, ok := wanted[g.selected]; !ok {
		g.selected = ""
	}

	// Build pass.
	for i, p := range next {
		if e, ok := g.entries[p.key]; ok {
			e.Index = i
			e.Building = p.building
			stats.Reused++
			continue
		}
		meshes, rep := tessellate.Tessellate(string(p.key), p.building, g.kernel)
		e := &Entry{
			Key:      p.key,
			Index:    i,
			Building: p.building,
			Meshes:   meshes,
			Revision: p.revision,
			Report:   rep,
		}
		e.computeBox()
		if e.hasBox {
			g.index.Insert(e)
		}
		g.entries[p.key] = e
		stats.Built++
		stats.MeshesBuilt += len(meshes)
		stats.Tessellation.Add(rep)
	}

	g.order = lo.Map(next, func(p pending, _ int) footprint.Key { return p.key })
	stats.Visible = len(g.order)
	return stats
}

// Clear releases every entry.
func (g *Graph) Clear() SyncStats {
	return g.Sync(nil)
}

// Len returns the number of entries.
func (g *Graph) Len() int {
	return len(g.order)
}

// Entries returns the entries in visible order.
func (g *Graph) Entries() []*Entry {
	return lo.Map(g.order, func(k footprint.Key, _ int) *Entry { return g.entries[k] })
}

// Entry returns the entry for key.
func (g *Graph) Entry(key footprint.Key) (*Entry, bool) {
	e, ok := g.entries[key]
	return e, ok
}

// Has reports whether key is in the visible set.
func (g *Graph) Has(key footprint.Key) bool {
	_, ok := g.entries[key]
	return ok
}

// LiveMeshes returns the number of meshes owned by entries.
func (g *Graph) LiveMeshes() int {
	return lo.SumBy(g.Entries(), func(e *Entry) int { return len(e.Meshes) })
}

// Bounds returns the bounds of the last synced building set.
func (g *Graph) Bounds() bounds.Bounds {
	return g.bounds
}

// Ground returns the ground plane sized for the current bounds.
func (g *Graph) Ground() bounds.Ground {
	return bounds.GroundFor(g.bounds)
}

// --- visual state ---

// Select marks key as the selected building. Selecting a key that is not
// visible clears the selection.
func (g *Graph) Select(key footprint.Key) {
	if !g.Has(key) {
		key = ""
	}
	g.selected = key
}

// ClearSelection unmarks the selected building.
func (g *Graph) ClearSelection() {
	g.selected = ""
}

// Selected returns the selected key.
func (g *Graph) Selected() (footprint.Key, bool) {
	if g.selected == "" || !g.Has(g.selected) {
		return "", false
	}
	return g.selected, true
}

// Hover records a pointer entering key.
func (g *Graph) Hover(key footprint.Key) {
	if g.Has(key) {
		g.hovered[key]++
	}
}

// Unhover records a pointer leaving key.
func (g *Graph) Unhover(key footprint.Key) {
	if n := g.hovered[key]; n > 1 {
		g.hovered[key] = n - 1
	} else {
		delete(g.hovered, key)
	}
}

// State returns the visual state of key. Selection takes priority over
// hover.
func (g *Graph) State(key footprint.Key) State {
	switch {
	case !g.Has(key):
		return StateNormal
	case key == g.selected:
		return StateSelected
	case g.hovered[key] > 0:
		return StateHovered
	}
	return StateNormal
}
