package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/sgi/pkg/config"
	"github.com/taigrr/sgi/pkg/math3d"
	"github.com/taigrr/sgi/pkg/render"
	"github.com/taigrr/sgi/pkg/world"
)

const viewHelp = `Controls:
  Arrows / h j k l  - Pan the window
  + / - / wheel     - Zoom in / out
  W/S  A/D  Q/E     - Spin the window about its X, Y and Z axes
  P                 - Toggle parallel / perspective projection
  R                 - Reset the window
  ?                 - Toggle HUD
  Esc / Ctrl+C      - Quit`

func viewCmd(opts *options) *cobra.Command {
	var fps int
	cmd := &cobra.Command{
		Use:   "view <scene>",
		Short: "Explore a scene in the terminal",
		Long:  "Explore a scene in the terminal.\n\n" + viewHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, cfg, err := opts.loadWorld(args[0])
			if err != nil {
				return err
			}
			if fps > 0 {
				cfg.View.FPS = fps
			}
			return runViewer(w, cfg, filepath.Base(args[0]))
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 0, "target frames per second (overrides config)")
	return cmd
}

// RotationAxis accumulates window spin for one axis. Key presses add
// velocity; a critically damped spring bleeds it back to zero.
type RotationAxis struct {
	Velocity  float64 // degrees per frame
	velSpring harmonica.Spring
	velAccel  float64
}

// NewRotationAxis creates an idle axis.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// Step returns this frame's rotation and decays the velocity.
func (a *RotationAxis) Step() float64 {
	d := a.Velocity
	if math.Abs(d) < 1e-3 {
		a.Velocity, a.velAccel = 0, 0
		return 0
	}
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	return d
}

// Spin holds one RotationAxis per window axis.
type Spin struct {
	axes [3]RotationAxis
	fps  int
}

func NewSpin(fps int) *Spin {
	s := &Spin{fps: fps}
	s.Reset()
	return s
}

func (s *Spin) Reset() {
	for i := range s.axes {
		s.axes[i] = NewRotationAxis(s.fps)
	}
}

func (s *Spin) Impulse(axis math3d.Axis, deg float64) {
	if axis < math3d.AxisX || axis > math3d.AxisZ {
		return
	}
	s.axes[axis].Velocity += deg
}

// Apply turns the window by this frame's accumulated spin.
func (s *Spin) Apply(w *world.World) error {
	for i := range s.axes {
		d := s.axes[i].Step()
		if d == 0 {
			continue
		}
		if err := w.RotateWindow(d, math3d.Axis(i)); err != nil {
			return err
		}
	}
	return nil
}

// hud is the status overlay: frame rate, file name, segment count and
// projection.
type hud struct {
	filename  string
	show      bool
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func (h *hud) tick() {
	h.fpsFrames++
	if elapsed := time.Since(h.fpsTime); elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func (h *hud) draw(scr uv.Screen, width, height int, w *world.World, segs int) {
	if !h.show {
		return
	}
	fg, bg := render.RGB(230, 230, 230), render.RGB(0, 0, 0)
	win := w.Window()
	hw, _ := win.HalfExtents()
	top := fmt.Sprintf(" %s  %.0f FPS  %d objects  %d segments ", h.filename, h.fps, w.Len(), segs)
	bottom := fmt.Sprintf(" %v  center (%.2f, %.2f, %.2f)  width %.2f  angle %.1f° ",
		win.Mode(), win.Center().X, win.Center().Y, win.Center().Z, 2*hw, win.Angles().Z)
	render.DrawText(scr, 0, 0, width, top, fg, bg)
	render.DrawText(scr, 0, height-1, width, bottom, fg, bg)
}

func runViewer(w *world.World, cfg config.Config, filename string) error {
	bg, err := config.ParseColor(cfg.View.Background)
	if err != nil {
		return err
	}
	border, err := config.ParseColor(cfg.View.Border)
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	fb := render.NewFramebuffer(width, height*2)
	spin := NewSpin(cfg.View.FPS)
	status := &hud{filename: filename, show: true, fpsTime: time.Now()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Input arrives on the terminal's event goroutine; every world call
	// happens here in the frame loop.
	events := term.Events()
	ticker := time.NewTicker(time.Second / time.Duration(cfg.View.FPS))
	defer ticker.Stop()

	zoom := cfg.View.ZoomFactor
	pan := cfg.View.PanFactor
	impulse := cfg.View.RotateStep

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				fb = render.NewFramebuffer(width, height*2)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c"):
					return nil
				case ev.MatchString("up", "k"):
					_ = w.Pan(render.Up, pan)
				case ev.MatchString("down", "j"):
					_ = w.Pan(render.Down, pan)
				case ev.MatchString("left", "h"):
					_ = w.Pan(render.Left, pan)
				case ev.MatchString("right", "l"):
					_ = w.Pan(render.Right, pan)
				case ev.MatchString("+", "="):
					_ = w.Rescale(1 / zoom)
				case ev.MatchString("-", "_"):
					_ = w.Rescale(zoom)
				case ev.MatchString("w"):
					spin.Impulse(math3d.AxisX, impulse)
				case ev.MatchString("s"):
					spin.Impulse(math3d.AxisX, -impulse)
				case ev.MatchString("a"):
					spin.Impulse(math3d.AxisY, impulse)
				case ev.MatchString("d"):
					spin.Impulse(math3d.AxisY, -impulse)
				case ev.MatchString("q"):
					spin.Impulse(math3d.AxisZ, impulse)
				case ev.MatchString("e"):
					spin.Impulse(math3d.AxisZ, -impulse)
				case ev.MatchString("p"):
					if w.Window().Mode() == render.Parallel {
						_ = w.SetProjection(render.Perspective, w.Window().Distance())
					} else {
						_ = w.SetProjection(render.Parallel, 0)
					}
				case ev.MatchString("r"):
					spin.Reset()
					w.ResetWindow()
				case ev.MatchString("?", "shift+/"):
					status.show = !status.show
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					_ = w.Rescale(1 / zoom)
				case uv.MouseWheelDown:
					_ = w.Rescale(zoom)
				}
			}

		case <-ticker.C:
			if err := spin.Apply(w); err != nil {
				return err
			}
			segs := w.Render()

			fb.Clear(bg)
			fb.DrawRectOutline(0, 0, fb.Width, fb.Height, border)
			fb.DrawSegments(segs, w.Clipper().Viewport())
			area := uv.Rect(0, 0, width, height)
			fb.Draw(term, area)
			status.tick()
			status.draw(term, width, height, w, len(segs))
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
