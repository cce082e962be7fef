package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere_pass"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/profiler"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/scene"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/window"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
)

const idleFrameInterval = 10 * time.Millisecond

// Presenter finishes a frame on screen once the scene has scheduled its draws.
// The renderer satisfies it.
type Presenter interface {
	// Present submits the frame's draws and presents the surface.
	//
	// Returns:
	//   - error: non-nil if the frame could not be acquired or presented
	Present() error

	// Resize reconfigures the output surface.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	Resize(width, height int)
}

// engine implements the Engine interface.
// Coordinates the tick, render and window threads.
type engine struct {
	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	// frameMu serializes rendering with surface reconfiguration from the window thread.
	frameMu sync.Mutex

	window    window.Window
	scene     scene.Scene
	presenter Presenter
	log       logging.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(report atmosphere_pass.FrameReport, err error)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine drives one atmosphere scene: a fixed-rate tick loop advancing the scene, a render loop
// scheduling and presenting frames, and the window message pump.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene the engine renders.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// EnableProfiler enables per-interval frame statistics in the log.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// SetTickRate sets the tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers a function called each tick after the scene has advanced.
	// Use this for input handling and profile animation.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers a function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the scheduler's report and any frame error
	SetRenderCallback(callback func(report atmosphere_pass.FrameReport, err error))

	// SetRenderFrameLimit sets an optional render frame rate cap.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the tick and render loops and pumps window messages until the window closes.
	// All loops have stopped when Run returns.
	Run()

	// Quit signals all engine goroutines to stop. Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine for the given scene and presenter.
//
// Parameters:
//   - w: the window, must not be nil
//   - s: the scene to drive, must not be nil
//   - presenter: finishes each frame, must not be nil
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(w window.Window, s scene.Scene, presenter Presenter, options ...EngineBuilderOption) Engine {
	if w == nil {
		panic("engine: NewEngine requires a non-nil Window")
	}
	if s == nil {
		panic("engine: NewEngine requires a non-nil Scene")
	}
	if presenter == nil {
		panic("engine: NewEngine requires a non-nil Presenter")
	}

	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		window:          w,
		scene:           s,
		presenter:       presenter,
		log:             logging.Noop(),
		engineTickRate:  time.Second / 60,
	}
	for _, opt := range options {
		opt(e)
	}
	e.profiler = profiler.NewProfiler(e.log)

	e.window.SetResizeCallback(func(width, height int) {
		if width <= 0 || height <= 0 {
			return
		}
		e.frameMu.Lock()
		defer e.frameMu.Unlock()
		e.presenter.Resize(width, height)
		if c := e.scene.Camera(); c != nil {
			c.SetAspect(float32(width) / float32(height))
		}
	})
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Run() {
	e.running = true
	// GLFW windows may only be closed from the thread pumping their messages.
	e.window.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			if err := e.window.Close(); err != nil {
				e.log.Warn(context.Background(), "window close failed", logging.Err(err))
			}
		default:
		}
	})
	e.handle()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
}

func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick, render and quit goroutines.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate tick loop. The scene advances before the tick callback.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.scene.Advance(dt)
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop: schedule the scene's draws, present, then profile.
// Recovers from panics and signals quit.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(context.Background(), "render goroutine recovered from panic", logging.Any("panic", r))
			e.signalQuit()
		}
	}()

	ctx := context.Background()
	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		frameStart := time.Now()
		report, rendered, err := e.renderFrame(ctx)
		if rendered {
			if err != nil {
				e.log.Warn(ctx, "frame rendered with errors", logging.Uint64("frame", report.Frame), logging.Err(err))
			}
			if e.renderCallback != nil {
				e.renderCallback(report, err)
			}
			if e.profilingEnabled {
				e.profiler.Tick(report)
			}
		}

		if wait := frameDelay(rendered, e.renderFrameLimit, time.Since(frameStart)); wait > 0 {
			select {
			case <-e.quitChannel:
				return
			case <-time.After(wait):
			}
		}
	}
}

// frameDelay returns how long the render loop waits before its next frame. An inactive
// scene is polled every idleFrameInterval at most.
func frameDelay(rendered bool, limit, elapsed time.Duration) time.Duration {
	target := limit
	if !rendered {
		target = max(limit, idleFrameInterval)
	}
	return max(target-elapsed, 0)
}

// renderFrame reports false without presenting when the scene is inactive.
func (e *engine) renderFrame(ctx context.Context) (atmosphere_pass.FrameReport, bool, error) {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	if !e.scene.Active() {
		return atmosphere_pass.FrameReport{}, false, nil
	}
	report, scheduleErr := e.scene.Render(ctx)
	if err := e.presenter.Present(); err != nil {
		return report, true, fmt.Errorf("present frame %d: %w", report.Frame, err)
	}
	return report, true, scheduleErr
}

// handleQuit blocks until the quit channel is closed.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running {
		e.engineTickRate = newRate
		return
	}
	// replace any pending update
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(report atmosphere_pass.FrameReport, err error)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
