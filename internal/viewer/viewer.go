// Package viewer implements the interactive frame loop: it owns the window,
// fly camera and renderer, feeds the pick ray to the pipeline every frame
// and commits finished loads on the render thread.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshlens/internal/config"
	"github.com/Faultbox/meshlens/internal/engine/camera"
	"github.com/Faultbox/meshlens/internal/engine/debug"
	"github.com/Faultbox/meshlens/internal/engine/input"
	"github.com/Faultbox/meshlens/internal/engine/lighting"
	"github.com/Faultbox/meshlens/internal/engine/renderer"
	"github.com/Faultbox/meshlens/internal/engine/window"
	"github.com/Faultbox/meshlens/internal/logger"
	"github.com/Faultbox/meshlens/internal/pipeline"
	"github.com/Faultbox/meshlens/internal/scene"
	"github.com/Faultbox/meshlens/internal/telemetry"
	"github.com/Faultbox/meshlens/pkg/volume"
)

// Viewer is the main viewer instance.
type Viewer struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	metrics  *telemetry.Metrics
	log      *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.FlyCamera
	shots    *debug.ScreenshotCapture

	queue   loadQueue
	files   chan string // paths picked in the file dialog
	reloads chan string
	loaded  []string // paths committed since the last reset

	showMarkers bool
	looking     bool
	fitted      bool
	running     bool
}

// New creates the window, GL renderer and camera.
func New(cfg *config.Config, p *pipeline.Pipeline, metrics *telemetry.Metrics) (*Viewer, error) {
	v := &Viewer{
		cfg:         cfg,
		pipeline:    p,
		metrics:     metrics,
		log:         logger.Named("viewer"),
		files:       make(chan string, 16),
		reloads:     make(chan string, 16),
		showMarkers: cfg.Viewer.ShowMarkers,
	}

	v.log.Info("initializing viewer",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height))

	var err error
	v.window, err = window.New(window.Config{
		Title:      appName,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer must come after the window so the GL context exists.
	width, height := v.window.GetSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:    width,
		Height:   height,
		LightDir: lighting.SunDirection(cfg.Viewer.SunAzimuth, cfg.Viewer.SunElevation),
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()
	v.shots = debug.NewScreenshotCapture(cfg.Viewer.ScreenshotDir, "meshlens")

	v.camera = camera.NewFlyCamera()
	v.camera.FOV = cfg.Viewer.FOV * math32.Pi / 180
	v.camera.MoveSpeed = cfg.Viewer.MoveSpeed
	v.camera.LookSensitivity = cfg.Viewer.MouseSensitivity

	return v, nil
}

// Open starts loading paths in the background.
func (v *Viewer) Open(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	v.log.Info("loading files", zap.Strings("paths", paths))
	v.queue.add(v.pipeline.LoadFiles(ctx, paths))
}

// Reload asks the viewer to reset the scene and load changed together
// with every file shown since the last reset. Safe to call from any
// goroutine. It gives up when ctx is done before the request is queued
// and reports whether it was queued.
func (v *Viewer) Reload(ctx context.Context, changed string) bool {
	select {
	case v.reloads <- changed:
		return true
	case <-ctx.Done():
		return false
	}
}

// Run drives the frame loop until the window closes, ESC is pressed or
// ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true

	lastTime := time.Now()
	fps := telemetry.NewFPSCounter(lastTime)
	var minFrame time.Duration
	if !v.cfg.Window.VSync && v.cfg.Window.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(v.cfg.Window.FPSLimit)
	}

	v.log.Info("starting frame loop")

	for v.running {
		if ctx.Err() != nil {
			break
		}

		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Input
		if v.input.Update() {
			break
		}
		v.handleEvents(ctx)

		// 2. Background work finished since the last frame
		v.pollFiles(ctx)
		v.queue.poll(v.commit)

		// 3. Camera and hover selection
		v.camera.Move(
			v.input.Axis(sdl.SCANCODE_S, sdl.SCANCODE_W),
			v.input.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D),
			v.input.Axis(sdl.SCANCODE_Q, sdl.SCANCODE_E),
			dt)
		v.pipeline.Tick(v.camera.Ray())

		// 4. Render and present
		v.render()
		v.window.SwapBuffers()

		if fps.Frame(time.Now()) {
			v.metrics.SetFPS(fps.FPS())
			if v.cfg.Viewer.ShowStats {
				v.window.SetTitle(formatTitle(v.pipeline.Stats(), fps.FPS(), v.queue.len()))
			}
			v.log.Debug("fps", zap.Int("count", fps.FPS()), zap.Float32("dt_ms", dt*1000))
		}

		if minFrame > 0 {
			if spent := time.Since(now); spent < minFrame {
				time.Sleep(minFrame - spent)
			}
		}
	}

	return nil
}

// Close releases GL and window resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func (v *Viewer) handleEvents(ctx context.Context) {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(event.Width, event.Height)

		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_R:
				v.reset(ctx)
			case sdl.SCANCODE_O:
				v.openFileDialog()
			case sdl.SCANCODE_M:
				v.showMarkers = !v.showMarkers
			case sdl.SCANCODE_F:
				v.fitCamera()
			case sdl.SCANCODE_P:
				v.screenshot()
			}

		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_RIGHT {
				v.setLooking(true)
			}

		case input.EventMouseUp:
			if event.Button == sdl.BUTTON_RIGHT {
				v.setLooking(false)
			}

		case input.EventMouseMove:
			if v.looking {
				v.camera.Look(float32(event.DeltaX), float32(event.DeltaY))
			}

		case input.EventMouseWheel:
			v.camera.MoveSpeed *= math32.Pow(1.2, float32(event.DeltaY))

		case input.EventDropFile:
			v.Open(ctx, []string{event.Path})
		}
	}
}

func (v *Viewer) setLooking(on bool) {
	v.looking = on
	v.window.SetMouseLook(on)
}

// pollFiles starts loads queued by the dialog and the watcher.
func (v *Viewer) pollFiles(ctx context.Context) {
	if changed := receiveAll(v.reloads); len(changed) > 0 {
		paths := mergePaths(v.loaded, changed)
		v.reset(ctx)
		v.Open(ctx, paths)
	}
	v.Open(ctx, receiveAll(v.files))
}

// commit applies one finished load to the scene.
func (v *Viewer) commit(o pipeline.Outcome) {
	if o.Err != nil {
		v.log.Warn("load failed", zap.String("path", o.Path), zap.Error(o.Err))
		return
	}
	if err := v.pipeline.Commit(o.Result); err != nil {
		if !errors.Is(err, scene.ErrStaleGeneration) {
			v.log.Warn("commit failed", zap.String("path", o.Path), zap.Error(err))
		}
		return
	}
	v.loaded = append(v.loaded, o.Path)

	if !v.fitted && o.Result.BoundsErr == nil {
		v.fitCamera()
	}
}

// fitCamera frames every loaded scene.
func (v *Viewer) fitCamera() {
	var acc volume.Accumulator
	for _, b := range v.pipeline.Scene().Bounds() {
		acc.Add(b)
	}
	bounds, err := acc.Bounds()
	if err != nil {
		return
	}
	v.camera.FitToBounds(bounds)
	v.fitted = true
}

func (v *Viewer) reset(ctx context.Context) {
	if err := v.pipeline.Reset(ctx); err != nil {
		v.log.Error("reset failed", zap.Error(err))
	}
	v.loaded = nil
	v.fitted = false
}

// openFileDialog shows a native file picker. The dialog blocks, so it runs
// on its own goroutine and hands the path back through the files channel.
func (v *Viewer) openFileDialog() {
	go func() {
		filename, err := dialog.File().
			Filter("Scene Files", "glb", "gltf", "babylon", "obj").
			Filter("All Files", "*").
			Title("Open Scene").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				v.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		v.files <- filename
	}()
}

// screenshot saves the last rendered frame.
func (v *Viewer) screenshot() {
	pixels, width, height := v.renderer.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, width, height, time.Now())
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

func (v *Viewer) render() {
	v.renderer.Begin()
	v.renderer.DrawScene(v.pipeline.Scene(), renderer.Frame{
		View:        v.camera.ViewMatrix(),
		Projection:  v.camera.ProjectionMatrix(v.renderer.Aspect()),
		ShowMarkers: v.showMarkers,
	})
	v.renderer.End()
}
