// sgi - view, rasterize and convert wireframe scenes of points, lines,
// polygons, B-spline curves and Bezier surfaces.
//
// Scenes are Wavefront OBJ (with free-form curv/surf statements) or binary
// glTF files. Settings come from an optional TOML file; flags override it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/sgi/pkg/config"
	"github.com/taigrr/sgi/pkg/models"
	"github.com/taigrr/sgi/pkg/render"
	"github.com/taigrr/sgi/pkg/world"
)

var version = "dev"

// options are the flags shared by every command.
type options struct {
	configPath string
	logPath    string
	projection string
	distance   float64
	clipper    string
	step       float64
	fit        bool
}

func main() {
	if err := fang.Execute(context.Background(), rootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "sgi",
		Short: "Wireframe scene viewer with windowing, projection and clipping",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.setupLogging()
		},
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "TOML settings file")
	pf.StringVar(&opts.logPath, "log", "", "write debug logs to this file")
	pf.StringVar(&opts.projection, "projection", "", "parallel or perspective (overrides config)")
	pf.Float64Var(&opts.distance, "distance", 0, "perspective center-of-projection distance (overrides config)")
	pf.StringVar(&opts.clipper, "clip", "", "cohen-sutherland or liang-barsky (overrides config)")
	pf.Float64Var(&opts.step, "step", 0, "tessellation step in (0,1] (overrides config)")
	pf.BoolVar(&opts.fit, "fit", false, "fit the window to the scene when it has no window record")

	root.AddCommand(viewCmd(opts), renderCmd(opts), convertCmd(opts), listCmd(opts), configCmd(opts))
	return root
}

func (o *options) setupLogging() error {
	if o.logPath == "" {
		return nil
	}
	f, err := os.OpenFile(o.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	world.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return nil
}

// settings loads the config file and applies flag overrides.
func (o *options) settings() (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if o.projection != "" {
		cfg.Projection.Mode = o.projection
	}
	if o.distance != 0 {
		cfg.Projection.Distance = o.distance
	}
	if o.clipper != "" {
		cfg.Clip.Algorithm = o.clipper
	}
	if o.step != 0 {
		cfg.Tessellation.Step = o.step
	}
	return cfg, cfg.Validate()
}

// loadWorld builds a world from settings and imports the scene at path.
func (o *options) loadWorld(path string) (*world.World, config.Config, error) {
	cfg, err := o.settings()
	if err != nil {
		return nil, cfg, err
	}
	recs, err := loadScene(path)
	if err != nil {
		return nil, cfg, err
	}
	if o.fit {
		if lo, hi, ok := models.Bounds(recs); ok {
			size := hi.Sub(lo)
			half := max(size.X, size.Y) * 0.55
			if half > 0 {
				c := lo.Add(hi).Scale(0.5)
				cfg.Window.Center = [3]float64{c.X, c.Y, c.Z}
				cfg.Window.HalfWidth, cfg.Window.HalfHeight = half, half
			}
		}
	}
	wopts, err := cfg.WorldOptions()
	if err != nil {
		return nil, cfg, err
	}
	w := world.New(wopts...)
	if err := w.Import(recs); err != nil {
		return nil, cfg, fmt.Errorf("import %s: %w", path, err)
	}
	return w, cfg, nil
}

func loadScene(path string) ([]models.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return models.LoadOBJ(path)
	case ".glb", ".gltf":
		return models.LoadGLB(path)
	default:
		return nil, fmt.Errorf("unsupported format: %s (use .obj or .glb)", filepath.Ext(path))
	}
}

func saveScene(path string, recs []models.Record) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return models.SaveOBJ(path, recs)
	case ".glb":
		return models.SaveGLB(path, recs)
	default:
		return fmt.Errorf("unsupported format: %s (use .obj or .glb)", filepath.Ext(path))
	}
}

func renderCmd(opts *options) *cobra.Command {
	var (
		out           string
		width, height int
		labels        bool
	)
	cmd := &cobra.Command{
		Use:   "render <scene>",
		Short: "Project, clip and draw a scene to a PNG or SVG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, cfg, err := opts.loadWorld(args[0])
			if err != nil {
				return err
			}
			bg, _ := config.ParseColor(cfg.View.Background)
			border, _ := config.ParseColor(cfg.View.Border)
			segs := w.Render()
			view := w.Clipper().Viewport()

			if strings.EqualFold(filepath.Ext(out), ".svg") {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create svg: %w", err)
				}
				render.WriteSVG(f, segs, view, width, height, bg)
				if err := f.Close(); err != nil {
					return fmt.Errorf("write svg: %w", err)
				}
			} else {
				fb := render.NewFramebuffer(width, height)
				fb.Clear(bg)
				fb.DrawRectOutline(0, 0, width, height, border)
				fb.DrawSegments(segs, view)
				if labels {
					fb.DrawLabels(segs, view)
				}
				if err := fb.SavePNG(out); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d objects, %d visible segments -> %s\n",
				filepath.Base(args[0]), w.Len(), len(segs), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "out.png", "output path (.png or .svg)")
	cmd.Flags().IntVar(&width, "width", 800, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 800, "image height in pixels")
	cmd.Flags().BoolVar(&labels, "labels", false, "label each object in PNG output")
	return cmd
}

func convertCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a scene between .obj and .glb",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, _, err := opts.loadWorld(args[0])
			if err != nil {
				return err
			}
			recs := w.Export()
			if err := saveScene(args[1], recs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(recs), args[1])
			return nil
		},
	}
}

func listCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list <scene>",
		Short: "Print every object's control points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, _, err := opts.loadWorld(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			win := w.Window()
			hw, hh := win.HalfExtents()
			fmt.Fprintf(out, "window center %v extents %gx%g %v\n", win.Center(), 2*hw, 2*hh, win.Mode())
			for _, o := range w.Objects() {
				fmt.Fprintln(out, o.Describe())
			}
			return nil
		},
	}
}

func configCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.settings()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}
