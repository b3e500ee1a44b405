package main

import (
	"fmt"
	"log"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"github.com/chazu/blockview/internal/config"
	"github.com/chazu/blockview/pkg/bounds"
	"github.com/chazu/blockview/pkg/camera"
	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/kernel"
	"github.com/chazu/blockview/pkg/kernel/prism"
	"github.com/chazu/blockview/pkg/kernel/sdfx"
	"github.com/chazu/blockview/pkg/payload"
	"github.com/chazu/blockview/pkg/scene"
	"github.com/chazu/blockview/pkg/selection"
	"github.com/chazu/blockview/pkg/validate"
)

// App is the viewer backend. The CLI and the preview server drive it; all
// methods are safe for concurrent use.
type App struct {
	mu sync.Mutex

	cfg    config.Config
	kernel kernel.Kernel
	graph  *scene.Graph
	camera *camera.Controller
	router *selection.Router

	base     []footprint.Building
	visible  []footprint.Building
	meta     Meta
	filters  []payload.Filter
	query    string
	selected *footprint.Building
	message  string
}

// Meta is the fetch metadata of the visible building set.
type Meta struct {
	Count         int               `json:"count"`
	Origin        *footprint.LatLng `json:"origin,omitempty"`
	FetchedAtUnix *int64            `json:"fetchedAtUnix,omitempty"`
}

// ApplyOptions control how a payload replaces the visible set.
type ApplyOptions struct {
	// AsBase also makes the payload the full set that ResetView returns to.
	AsBase bool
	// KeepSelection keeps the selection if the building is still visible.
	KeepSelection bool
}

// NewApp creates an App with the kernel named in cfg and an empty scene.
func NewApp(cfg config.Config) (*App, error) {
	k, err := newKernel(cfg)
	if err != nil {
		return nil, err
	}
	a := &App{
		cfg:    cfg,
		kernel: k,
		graph:  scene.New(k),
	}
	a.camera = a.frame()
	a.router = selection.NewRouter(a.graph, a.camera, cfg.ViewportWidth, cfg.ViewportHeight)
	a.router.OnSelect = func(b *footprint.Building) { a.selected = b }
	return a, nil
}

func newKernel(cfg config.Config) (kernel.Kernel, error) {
	switch cfg.Kernel {
	case config.KernelPrism, "":
		return prism.New(), nil
	case config.KernelSdfx:
		return sdfx.New(cfg.MeshCells), nil
	}
	return nil, fmt.Errorf("unknown kernel %q", cfg.Kernel)
}

// frame builds a camera for the current scene bounds.
func (a *App) frame() *camera.Controller {
	c := camera.Frame(a.graph.Bounds())
	if a.cfg.MinDistance > 0 {
		c.MinDistance = a.cfg.MinDistance
	}
	if a.cfg.MaxDistance > 0 {
		c.MaxDistance = a.cfg.MaxDistance
	}
	return c
}

// ApplyPayload replaces the visible building set. Geometry of buildings
// that left or changed is released during the sync, the camera is reframed
// on the new bounds, and the selection is cleared unless opts keeps it.
func (a *App) ApplyPayload(p *payload.Buildings, opts ApplyOptions) scene.SyncStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.apply(p, opts)
}

func (a *App) apply(p *payload.Buildings, opts ApplyOptions) scene.SyncStats {
	list := []footprint.Building{}
	if p != nil && p.Buildings != nil {
		list = p.Buildings
	}
	a.visible = list
	next := Meta{Count: len(list), Origin: a.meta.Origin, FetchedAtUnix: a.meta.FetchedAtUnix}
	if p != nil {
		next.Count = p.Count
		if p.Count == 0 {
			next.Count = len(list)
		}
		if p.Origin != nil {
			next.Origin = p.Origin
		}
		if p.FetchedAtUnix != nil {
			next.FetchedAtUnix = p.FetchedAtUnix
		}
	}
	a.meta = next
	if opts.AsBase {
		a.base = list
	}

	stats := a.graph.Sync(list)
	logSync(stats)

	a.camera = a.frame()
	a.router.SetCamera(a.camera)
	if opts.KeepSelection {
		a.router.Reconcile()
		if b, ok := a.router.Selected(); ok {
			a.selected = b
		}
	} else {
		a.router.ClearSelection()
	}
	return stats
}

func logSync(s scene.SyncStats) {
	log.Printf("Scene sync: %d visible, %d built, %d reused, %d released (%d meshes), %d duplicate keys",
		s.Visible, s.Built, s.Reused, s.Released, s.MeshesReleased, s.Duplicates)
	t := s.Tessellation
	if t.Skipped() > 0 || t.Failed > 0 {
		log.Printf("Tessellation: %d/%d polygons extruded, %d rings and %d polygons skipped, %d failed",
			t.Extruded, t.Polygons, t.SkippedRings, t.SkippedPolygons, t.Failed)
	}
	for _, err := range t.Errs {
		log.Printf("Tessellate error: %v", err)
	}
}

// LoadBase shows p as the full building set.
func (a *App) LoadBase(p *payload.Buildings) scene.SyncStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filters, a.query = nil, ""
	stats := a.apply(p, ApplyOptions{AsBase: true})
	a.message = fmt.Sprintf("Loaded %d downtown buildings", a.meta.Count)
	if r := validate.ValidateAll(a.base); len(r.Errors)+len(r.Warnings) > 0 {
		log.Printf("Validation: %s", r.Summary())
	}
	return stats
}

// Validate checks the visible buildings.
func (a *App) Validate() validate.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return validate.ValidateAll(a.visible)
}

// ApplyFilterResult shows the buildings of a filter query.
func (a *App) ApplyFilterResult(r *payload.FilterResult) scene.SyncStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.applyFilterResult(r)
}

func (a *App) applyFilterResult(r *payload.FilterResult) scene.SyncStats {
	a.filters = r.Filters
	a.query = r.Query
	stats := a.apply(&r.Buildings, ApplyOptions{})
	n := a.meta.Count
	switch {
	case len(r.Filters) == 0:
		a.message = fmt.Sprintf("No filters extracted; showing %d buildings", n)
	case n == 1:
		a.message = "1 building matches"
	default:
		a.message = fmt.Sprintf("%d buildings match", n)
	}
	return stats
}

// Filter narrows the base set locally.
func (a *App) Filter(filters []payload.Filter) scene.SyncStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := payload.Narrow(a.basePayload(), filters)
	return a.applyFilterResult(r)
}

func (a *App) basePayload() *payload.Buildings {
	return &payload.Buildings{
		Count:         len(a.base),
		Buildings:     a.base,
		Origin:        a.meta.Origin,
		FetchedAtUnix: a.meta.FetchedAtUnix,
	}
}

// CanResetView reports whether the visible set differs from the base set.
func (a *App) CanResetView() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.canResetView()
}

func (a *App) canResetView() bool {
	return len(a.base) > 0 && (len(a.filters) > 0 || len(a.visible) != len(a.base))
}

// ResetView shows the base set again and drops the filters. It does
// nothing when no base set was loaded.
func (a *App) ResetView() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.base) == 0 {
		return false
	}
	a.filters, a.query = nil, ""
	a.apply(a.basePayload(), ApplyOptions{})
	a.message = "Showing all downtown buildings"
	return true
}

// Resize changes the viewport used for picking.
func (a *App) Resize(width, height int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg.ViewportWidth, a.cfg.ViewportHeight = width, height
	a.router.SetViewport(width, height)
}

// PointerDown routes a press at pixel (px, py).
func (a *App) PointerDown(pointer int, px, py float64) (selection.Effect, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.router.PointerDown(pointer, px, py)
}

// PointerMove updates the hover of a pointer.
func (a *App) PointerMove(pointer int, px, py float64) (selection.Effect, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.router.PointerMove(pointer, px, py)
}

// PointerLeave ends the hover of a pointer.
func (a *App) PointerLeave(pointer int) selection.Effect {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.router.PointerLeave(pointer)
}

// Select selects a building by key. Unknown keys clear the selection.
func (a *App) Select(key footprint.Key) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.router.Select(key)
}

// ClearSelection deselects without touching the visible set.
func (a *App) ClearSelection() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.router.ClearSelection()
}

// Selected returns the building shown in the detail panel.
func (a *App) Selected() (*footprint.Building, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected, a.selected != nil
}

// Orbit queues a camera rotation and a pan, applies a zoom factor and
// advances the damping by steps frames. A zero factor leaves the zoom.
func (a *App) Orbit(azimuth, polar float64, pan mgl64.Vec3, zoom float64, steps int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera.Rotate(azimuth, polar)
	a.camera.Pan(pan)
	if zoom > 0 {
		a.camera.Zoom(zoom)
	}
	for i := 0; i < steps; i++ {
		if !a.camera.Update() {
			break
		}
	}
}

// Pick returns the key of the building under pixel (px, py).
func (a *App) Pick(px, py float64) (footprint.Key, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.router.HitTest(px, py)
}

// Release frees all scene geometry.
func (a *App) Release() scene.SyncStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.router.ClearSelection()
	return a.graph.Clear()
}

// MeshData is the JSON mesh format sent to the renderer.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
}

// BuildingData is one building with its meshes and material.
type BuildingData struct {
	Key    footprint.Key `json:"key"`
	Label  string        `json:"label"`
	State  scene.State   `json:"state"`
	Style  scene.Style   `json:"style"`
	Meshes []MeshData    `json:"meshes"`
}

// CameraData is the camera the renderer should use.
type CameraData struct {
	Position [3]float64 `json:"position"`
	Target   [3]float64 `json:"target"`
	FOV      float64    `json:"fov"`
	Near     float64    `json:"near"`
	Far      float64    `json:"far"`
	Damping  float64    `json:"damping"`
	MinPolar float64    `json:"minPolar"`
	MaxPolar float64    `json:"maxPolar"`
}

// GroundData is the ground plane with its grid colors.
type GroundData struct {
	bounds.Ground
	Color      string `json:"color"`
	GridColor  string `json:"gridColor"`
	GridCenter string `json:"gridCenterColor"`
}

// Light is one scene light.
type Light struct {
	Kind        string      `json:"kind"`
	Intensity   float64     `json:"intensity"`
	GroundColor string      `json:"groundColor,omitempty"`
	Position    *[3]float64 `json:"position,omitempty"`
	CastShadow  bool        `json:"castShadow,omitempty"`
	ShadowMap   int         `json:"shadowMapSize,omitempty"`
	ShadowNear  float64     `json:"shadowNear,omitempty"`
	ShadowFar   float64     `json:"shadowFar,omitempty"`
}

// Environment is the backdrop and lighting of the scene.
type Environment struct {
	Background string  `json:"background"`
	Lights     []Light `json:"lights"`
}

var environment = Environment{
	Background: "#020617",
	Lights: []Light{
		{Kind: "hemisphere", Intensity: 0.35, GroundColor: "#0f172a"},
		{Kind: "ambient", Intensity: 0.7},
		{
			Kind: "directional", Intensity: 1.1, Position: &[3]float64{220, 360, 140},
			CastShadow: true, ShadowMap: 2048, ShadowNear: 50, ShadowFar: 1200,
		},
	},
}

// SceneData is everything a renderer needs to draw one frame.
type SceneData struct {
	Buildings    []BuildingData      `json:"buildings"`
	Transform    mgl64.Mat4          `json:"transform"`
	Bounds       bounds.Bounds       `json:"bounds"`
	Ground       GroundData          `json:"ground"`
	Camera       CameraData          `json:"camera"`
	Environment  Environment         `json:"environment"`
	Meta         Meta                `json:"meta"`
	Filters      []payload.Filter    `json:"filters"`
	Query        string              `json:"query,omitempty"`
	Selected     *footprint.Building `json:"selected"`
	CanResetView bool                `json:"canResetView"`
	Message      string              `json:"message,omitempty"`
	LiveMeshes   int                 `json:"liveMeshes"`
}

// Scene snapshots the current frame. Mesh buffers are shared with the
// scene, so callers must not modify them.
func (a *App) Scene() SceneData {
	a.mu.Lock()
	defer a.mu.Unlock()

	pos, target := a.camera.Position(), a.camera.Target
	return SceneData{
		Buildings: lo.Map(a.graph.Entries(), func(e *scene.Entry, _ int) BuildingData {
			st := a.graph.State(e.Key)
			return BuildingData{
				Key:   e.Key,
				Label: e.Building.Label(),
				State: st,
				Style: scene.StyleFor(st),
				Meshes: lo.Map(e.Meshes, func(m *kernel.Mesh, _ int) MeshData {
					return MeshData{Vertices: m.Vertices, Normals: m.Normals, Indices: m.Indices, PartName: m.Name}
				}),
			}
		}),
		Transform: a.graph.Transform(),
		Bounds:    a.graph.Bounds(),
		Ground: GroundData{
			Ground:     a.graph.Ground(),
			Color:      "#0f172a",
			GridColor:  "#0f172a",
			GridCenter: "#172554",
		},
		Camera: CameraData{
			Position: [3]float64{pos[0], pos[1], pos[2]},
			Target:   [3]float64{target[0], target[1], target[2]},
			FOV:      camera.FOV,
			Near:     camera.Near,
			Far:      camera.Far,
			Damping:  a.camera.Damping,
			MinPolar: camera.MinPolar,
			MaxPolar: camera.MaxPolar,
		},
		Environment:  environment,
		Meta:         a.meta,
		Filters:      lo.Ternary(a.filters == nil, []payload.Filter{}, a.filters),
		Query:        a.query,
		Selected:     a.selected,
		CanResetView: a.canResetView(),
		Message:      a.message,
		LiveMeshes:   a.graph.LiveMeshes(),
	}
}
