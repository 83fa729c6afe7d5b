// Package config loads sgi's TOML (or YAML) settings: the starting window, the
// projection, tessellation and clipping choices, and viewer preferences.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/sgi/pkg/math3d"
	"github.com/taigrr/sgi/pkg/render"
	"github.com/taigrr/sgi/pkg/tessellate"
	"github.com/taigrr/sgi/pkg/world"
)

// ErrInvalid reports a setting outside its allowed range.
var ErrInvalid = errors.New("config: invalid setting")

// Config is the whole settings file.
type Config struct {
	Window       Window       `toml:"window" yaml:"window"`
	Projection   Projection   `toml:"projection" yaml:"projection"`
	Tessellation Tessellation `toml:"tessellation" yaml:"tessellation"`
	Clip         Clip         `toml:"clip" yaml:"clip"`
	View         View         `toml:"view" yaml:"view"`
}

// Window is the initial window, also the target of reset.
type Window struct {
	Center     [3]float64 `toml:"center" yaml:"center"`
	HalfWidth  float64    `toml:"half_width" yaml:"half_width"`
	HalfHeight float64    `toml:"half_height" yaml:"half_height"`
}

// Projection selects parallel or perspective viewing.
type Projection struct {
	Mode     string  `toml:"mode" yaml:"mode"`
	Distance float64 `toml:"distance" yaml:"distance"`
}

// Tessellation holds the parametric step for curves and surfaces.
type Tessellation struct {
	Step float64 `toml:"step" yaml:"step"`
}

// Clip names the line clipper.
type Clip struct {
	Algorithm string `toml:"algorithm" yaml:"algorithm"`
}

// View holds interactive viewer preferences.
type View struct {
	FPS        int     `toml:"fps" yaml:"fps"`
	Background string  `toml:"background" yaml:"background"`
	Border     string  `toml:"border" yaml:"border"`
	PanFactor  float64 `toml:"pan_factor" yaml:"pan_factor"`
	ZoomFactor float64 `toml:"zoom_factor" yaml:"zoom_factor"`
	RotateStep float64 `toml:"rotate_step" yaml:"rotate_step"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Window: Window{HalfWidth: 10, HalfHeight: 10},
		Projection: Projection{
			Mode:     render.Parallel.String(),
			Distance: render.DefaultDistance,
		},
		Tessellation: Tessellation{Step: tessellate.DefaultStep},
		Clip:         Clip{Algorithm: "cohen-sutherland"},
		View: View{
			FPS:        30,
			Background: "#101018",
			Border:     "#505060",
			PanFactor:  0.1,
			ZoomFactor: 1.1,
			RotateStep: 5,
		},
	}
}

// Parse decodes TOML on top of the defaults. Unknown keys are errors.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseYAML is Parse for YAML input.
func ParseYAML(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path. Files ending in .yaml or .yml
// are YAML; anything else is TOML.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	var errs []error
	for _, v := range c.Window.Center {
		if !finite(v) {
			errs = append(errs, fmt.Errorf("%w: window.center %v", ErrInvalid, c.Window.Center))
			break
		}
	}
	if !(c.Window.HalfWidth > 0) || !(c.Window.HalfHeight > 0) {
		errs = append(errs, fmt.Errorf("%w: window extents must be positive", ErrInvalid))
	}
	mode, err := render.ParseProjectionMode(c.Projection.Mode)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: projection.mode %q", ErrInvalid, c.Projection.Mode))
	}
	if mode == render.Perspective && !(c.Projection.Distance > 0 && finite(c.Projection.Distance)) {
		errs = append(errs, fmt.Errorf("%w: projection.distance must be positive", ErrInvalid))
	}
	if s := c.Tessellation.Step; !(s > 0 && s <= 1) {
		errs = append(errs, fmt.Errorf("%w: tessellation.step %v outside (0,1]", ErrInvalid, s))
	}
	if _, err := render.ParseClipper(c.Clip.Algorithm, render.DefaultViewport()); err != nil {
		errs = append(errs, fmt.Errorf("%w: clip.algorithm %q", ErrInvalid, c.Clip.Algorithm))
	}
	if c.View.FPS <= 0 {
		errs = append(errs, fmt.Errorf("%w: view.fps must be positive", ErrInvalid))
	}
	if !(c.View.ZoomFactor > 1 && finite(c.View.ZoomFactor)) {
		errs = append(errs, fmt.Errorf("%w: view.zoom_factor must exceed 1", ErrInvalid))
	}
	if !(c.View.PanFactor > 0 && finite(c.View.PanFactor)) {
		errs = append(errs, fmt.Errorf("%w: view.pan_factor must be positive", ErrInvalid))
	}
	if !(c.View.RotateStep > 0 && finite(c.View.RotateStep)) {
		errs = append(errs, fmt.Errorf("%w: view.rotate_step must be positive", ErrInvalid))
	}
	for _, hex := range []string{c.View.Background, c.View.Border} {
		if _, err := ParseColor(hex); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// ParseColor converts "#rrggbb" to an opaque color.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalid, hex)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}, nil
}

// NewWindow builds the configured window, projection included.
func (c Config) NewWindow() (*render.Window, error) {
	ctr := c.Window.Center
	w, err := render.NewWindow(math3d.V3(ctr[0], ctr[1], ctr[2]), c.Window.HalfWidth, c.Window.HalfHeight)
	if err != nil {
		return nil, err
	}
	mode, err := render.ParseProjectionMode(c.Projection.Mode)
	if err != nil {
		return nil, err
	}
	if err := w.SetProjection(mode, c.Projection.Distance); err != nil {
		return nil, err
	}
	w.SetHome()
	return w, nil
}

// WorldOptions turns the settings into world options.
func (c Config) WorldOptions() ([]world.Option, error) {
	win, err := c.NewWindow()
	if err != nil {
		return nil, err
	}
	clipper, err := render.ParseClipper(c.Clip.Algorithm, render.DefaultViewport())
	if err != nil {
		return nil, err
	}
	return []world.Option{
		world.WithWindow(win),
		world.WithClipper(clipper),
		world.WithStep(c.Tessellation.Step),
	}, nil
}
