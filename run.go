package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/chazu/blockview/internal/config"
	"github.com/chazu/blockview/pkg/footprint"
	"github.com/chazu/blockview/pkg/payload"
)

// setupLogging sends the standard logger to stderr and the log file.
// Stdout is left for command output.
func setupLogging(path string) {
	if path == "" {
		log.SetOutput(os.Stderr)
		return
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		log.Printf("Failed to open log file %s: %v", path, err)
		return
	}
	// The file stays open for the life of the process.
	log.SetOutput(io.MultiWriter(os.Stderr, logFile))
}

func loadConfiguration(opts *options) (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, err
	}
	if opts.kernel != "" {
		cfg.Kernel = opts.kernel
	}
	if opts.cells > 0 {
		cfg.MeshCells = opts.cells
	}
	return cfg, cfg.Validate()
}

// parseFilter reads attribute:operator:value. Numeric values become
// numbers.
func parseFilter(s string) (payload.Filter, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return payload.Filter{}, fmt.Errorf("filter %q: want attribute:operator:value", s)
	}
	f := payload.Filter{Attribute: parts[0], Operator: parts[1], Value: parts[2]}
	if !f.Valid() {
		return payload.Filter{}, fmt.Errorf("filter %q: unknown operator %q", s, parts[1])
	}
	if n, err := strconv.ParseFloat(parts[2], 64); err == nil {
		f.Value = n
	}
	return f, nil
}

// loadApp builds an App showing the payload at path, with zoning filled
// in and filters applied.
func loadApp(opts *options, path string) (*App, config.Config, error) {
	cfg, err := loadConfiguration(opts)
	if err != nil {
		return nil, cfg, fmt.Errorf("loading config: %w", err)
	}
	setupLogging(cfg.LogFile)

	filters := make([]payload.Filter, 0, len(opts.filter))
	for _, s := range opts.filter {
		f, err := parseFilter(s)
		if err != nil {
			return nil, cfg, err
		}
		filters = append(filters, f)
	}

	app, err := NewApp(cfg)
	if err != nil {
		return nil, cfg, err
	}
	if path == "" {
		return app, cfg, nil
	}

	p, err := payload.Load(path)
	if err != nil {
		return nil, cfg, fmt.Errorf("loading payload: %w", err)
	}
	if opts.zoning != "" {
		areas, err := payload.LoadZoning(opts.zoning)
		if err != nil {
			return nil, cfg, fmt.Errorf("loading zoning: %w", err)
		}
		n := payload.EnrichZoning(p.Buildings, areas)
		log.Printf("Zoning: filled in %d buildings from %d districts", n, len(areas))
	}

	app.LoadBase(p)
	if len(filters) > 0 {
		app.Filter(filters)
	}
	return app, cfg, nil
}

func runInspect(opts *options, path string) error {
	app, _, err := loadApp(opts, path)
	if err != nil {
		return err
	}
	printInspectReport(os.Stdout, app.Scene())
	printValidationReport(os.Stdout, app.Validate())
	return nil
}

func runExport(opts *options, path, out, selectKey string) error {
	app, _, err := loadApp(opts, path)
	if err != nil {
		return err
	}
	if selectKey != "" {
		app.Select(footprint.Key(selectKey))
	}

	data, err := json.Marshal(app.Scene())
	if err != nil {
		return fmt.Errorf("encoding scene: %w", err)
	}
	if out == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing scene: %w", err)
	}
	log.Printf("Scene written to %s (%d bytes)", out, len(data))
	return nil
}

func runPick(opts *options, path, xs, ys string, width, height int) error {
	px, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return fmt.Errorf("x: %w", err)
	}
	py, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return fmt.Errorf("y: %w", err)
	}

	app, cfg, err := loadApp(opts, path)
	if err != nil {
		return err
	}
	if width <= 0 {
		width = cfg.ViewportWidth
	}
	if height <= 0 {
		height = cfg.ViewportHeight
	}
	app.Resize(width, height)

	if _, err := app.PointerDown(0, px, py); err != nil {
		return err
	}
	b, _ := app.Selected()
	printPick(os.Stdout, px, py, b)
	return nil
}

func runServe(opts *options, path, port string) error {
	app, cfg, err := loadApp(opts, path)
	if err != nil {
		return err
	}
	if port == "" {
		port = cfg.Port
	}
	return runAPIServer(app, port)
}
