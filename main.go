package main

import (
	"os"

	"github.com/spf13/cobra"
)

// options are the flags shared by every command.
type options struct {
	kernel string
	cells  int
	zoning string
	filter []string
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:           "blockview",
		Short:         "Extrude city building footprints into an interactive 3D scene",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.kernel, "kernel", "", "extrusion kernel: prism or sdfx (overrides KERNEL)")
	rootCmd.PersistentFlags().IntVar(&opts.cells, "cells", 0, "marching cubes cells for the sdfx kernel (overrides MESH_CELLS)")
	rootCmd.PersistentFlags().StringVar(&opts.zoning, "zoning", "", "GeoJSON land use districts used to fill in missing zoning")
	rootCmd.PersistentFlags().StringArrayVar(&opts.filter, "filter", nil, "attribute filter as attribute:operator:value, repeatable")

	rootCmd.AddCommand(inspectCmd(&opts))
	rootCmd.AddCommand(exportCmd(&opts))
	rootCmd.AddCommand(pickCmd(&opts))
	rootCmd.AddCommand(serveCmd(&opts))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func inspectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [payload]",
		Short: "Extrude a building payload and report what the scene contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runInspect(opts, args[0])
		},
	}
}

func exportCmd(opts *options) *cobra.Command {
	var out, selectKey string

	cmd := &cobra.Command{
		Use:   "export [payload]",
		Short: "Write the renderable scene as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runExport(opts, args[0], out, selectKey)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&selectKey, "select", "", "building key to mark as selected")
	return cmd
}

func pickCmd(opts *options) *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "pick [payload] [x] [y]",
		Short: "Report the building under a viewport pixel from the framed camera",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return runPick(opts, args[0], args[1], args[2], width, height)
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "viewport width (default VIEWPORT_WIDTH)")
	cmd.Flags().IntVar(&height, "height", 0, "viewport height (default VIEWPORT_HEIGHT)")
	return cmd
}

func serveCmd(opts *options) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve [payload]",
		Short: "Start the preview server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runServe(opts, path, port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen address (default PORT)")
	return cmd
}
