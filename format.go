package main

import (
	"fmt"
	"io"
	"time"

	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/validate"
)

func printInspectReport(w io.Writer, s SceneData) {
	fmt.Fprintf(w, "BUILDINGS (%d of %d):\n", len(s.Buildings), s.Meta.Count)
	for _, b := range s.Buildings {
		tris := 0
		for _, m := range b.Meshes {
			tris += len(m.Indices) / 3
		}
		fmt.Fprintf(w, "  %-24s %-32s meshes=%d triangles=%d\n", b.Key, b.Label, len(b.Meshes), tris)
	}
	fmt.Fprintln(w)

	if len(s.Filters) > 0 {
		fmt.Fprintf(w, "FILTERS (%d):\n", len(s.Filters))
		for _, f := range s.Filters {
			fmt.Fprintf(w, "  %s %s %v\n", f.Attribute, f.Operator, f.Value)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "SCENE:")
	fmt.Fprintf(w, "  center:  (%.2f, %.2f)\n", s.Bounds.Center[0], s.Bounds.Center[2])
	fmt.Fprintf(w, "  radius:  %.2f m (%.2f x %.2f)\n", s.Bounds.Radius, s.Bounds.Width, s.Bounds.Depth)
	fmt.Fprintf(w, "  ground:  %.0f m, %d divisions\n", s.Ground.Size, s.Ground.Divisions)
	fmt.Fprintf(w, "  camera:  eye (%.1f, %.1f, %.1f) target (%.1f, %.1f, %.1f)\n",
		s.Camera.Position[0], s.Camera.Position[1], s.Camera.Position[2],
		s.Camera.Target[0], s.Camera.Target[1], s.Camera.Target[2])
	fmt.Fprintf(w, "  meshes:  %d live\n", s.LiveMeshes)
	if s.Meta.Origin != nil {
		fmt.Fprintf(w, "  origin:  %.5f, %.5f\n", s.Meta.Origin.Lat, s.Meta.Origin.Lng)
	}
	if s.Meta.FetchedAtUnix != nil {
		fmt.Fprintf(w, "  fetched: %s\n", time.Unix(*s.Meta.FetchedAtUnix, 0).UTC().Format(time.RFC3339))
	}
	if s.Message != "" {
		fmt.Fprintf(w, "\n%s\n", s.Message)
	}
}

func printPick(w io.Writer, px, py float64, b *footprint.Building) {
	if b == nil {
		fmt.Fprintf(w, "(%.0f, %.0f): empty space\n", px, py)
		return
	}
	fmt.Fprintf(w, "(%.0f, %.0f): %s\n", px, py, b.Label())
	if b.ID != "" {
		fmt.Fprintf(w, "  id:       %s\n", b.ID)
	}
	fmt.Fprintf(w, "  height:   %.1f m\n", float64(b.HeightM))
	if b.HeightFt > 0 {
		fmt.Fprintf(w, "            %.1f ft\n", float64(b.HeightFt))
	}
	if b.Community != "" {
		fmt.Fprintf(w, "  community: %s\n", b.Community)
	}
	if b.Zoning != "" {
		fmt.Fprintf(w, "  zoning:   %s\n", b.Zoning)
	}
	if b.Stage != "" {
		fmt.Fprintf(w, "  stage:    %s\n", b.Stage)
	}
	if b.Centroid != nil {
		fmt.Fprintf(w, "  centroid: %.5f, %.5f\n", b.Centroid.Lat, b.Centroid.Lng)
	}
}

func printValidationReport(w io.Writer, r validate.Result) {
	fmt.Fprintf(w, "\nVALIDATION (%s):\n", r.Summary())
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		fmt.Fprintln(w, "  ok")
		return
	}
	for _, f := range r.Errors {
		fmt.Fprintf(w, "  %s\n", f)
	}
	for _, f := range r.Warnings {
		fmt.Fprintf(w, "  %s\n", f)
	}
}
