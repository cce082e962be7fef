package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere_pass"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/game_object"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/light"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/profile_loader"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/renderer"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/scene"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/window"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/observability"
	"github.com/chewxy/math32"
	"github.com/prometheus/client_golang/prometheus"
)

type options struct {
	profilePath string
	planets     int
	planetScale float64
	metricsAddr string
	width       int
	height      int
	vsync       bool
	msaa        bool
	software    bool
	tickRate    float64
	fpsLimit    float64
	profiling   bool
	sunSpeed    float64
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.profilePath, "profile", "", "atmosphere profile file (.yaml, .yml or .toml); hot reloaded on change")
	flag.IntVar(&o.planets, "planets", 1, "number of planets sharing the profile")
	flag.Float64Var(&o.planetScale, "scale", 1, "uniform planet transform scale")
	flag.StringVar(&o.metricsAddr, "metrics-addr", ":9464", "address serving /metrics, empty to disable")
	flag.IntVar(&o.width, "width", 1280, "window width")
	flag.IntVar(&o.height, "height", 720, "window height")
	flag.BoolVar(&o.vsync, "vsync", true, "wait for vertical blank when presenting")
	flag.BoolVar(&o.msaa, "msaa", true, "enable 4x multisampling")
	flag.BoolVar(&o.software, "software", false, "force the software (fallback) adapter")
	flag.Float64Var(&o.tickRate, "tick-rate", 60, "simulation ticks per second")
	flag.Float64Var(&o.fpsLimit, "fps-limit", 0, "render frame cap, 0 for uncapped")
	flag.BoolVar(&o.profiling, "profiling", true, "log frame statistics every second")
	flag.Float64Var(&o.sunSpeed, "sun-speed", 0.2, "sun orbit speed in radians per second")
	flag.Parse()
	return o
}

func main() {
	o := parseFlags()
	log := logging.NewFromEnv()
	if err := run(o, log); err != nil {
		log.Error(context.Background(), "atmosphere viewer failed", logging.Err(err))
		os.Exit(1)
	}
}

func run(o options, log logging.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewAtmosphereCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if o.metricsAddr != "" {
		srv := serveMetrics(o.metricsAddr, collector, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	profile, err := loadProfile(o.profilePath)
	if err != nil {
		return err
	}
	if o.profilePath != "" {
		watcher, err := profile_loader.Watch(o.profilePath, profile, profile_loader.WithLogger(log))
		if err != nil {
			return fmt.Errorf("watch profile: %w", err)
		}
		defer watcher.Close()
	}

	win, err := window.NewWindow(
		window.WithTitle("Atmosphere Viewer - "+profile.Name()),
		window.WithSize(o.width, o.height),
	)
	if err != nil {
		return err
	}

	presentMode := renderer.PresentModeVSync
	if !o.vsync {
		presentMode = renderer.PresentModeUncapped
	}
	msaa := renderer.MSAA4x
	if !o.msaa {
		msaa = renderer.MSAAOff
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(msaa),
		renderer.WithForceSoftwareRenderer(o.software),
		renderer.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer r.Release()

	scale := float32(o.planetScale)
	orbit := camera.NewOrbitController(
		camera.WithRadius(6*scale),
		camera.WithRadiusBounds(0.05*scale, 200*scale),
		camera.WithElevation(0.2),
		camera.WithZoomSpeed(0.1*scale),
	)
	cam := camera.NewCamera(
		camera.WithFov(math32.Pi/4),
		camera.WithAspect(float32(win.Width())/float32(win.Height())),
		camera.WithClipPlanes(0.001*scale, 1000*scale),
		camera.WithController(orbit),
	)
	sun := light.NewLight(light.LightTypeDirectional, light.WithDirection(-1, -0.3, -0.5), light.WithIntensity(1))

	sc := scene.NewScene("atmosphere", cam, r,
		scene.WithLights(sun),
		scene.WithLogger(log),
		scene.WithMetrics(collector),
	)
	defer sc.Close()
	if err := sc.LoadResources(ctx, r); err != nil {
		return err
	}

	spacing := 5 * scale
	n := max(o.planets, 1)
	for i := range n {
		x := (float32(i) - float32(n-1)/2) * spacing
		sc.AddPlanet(fmt.Sprintf("%s-%d", profile.Name(), i), profile,
			game_object.WithPosition(x, 0, 0),
			game_object.WithScale(scale, scale, scale),
			game_object.WithRotationSpeed(0, 0.05, 0),
		)
	}

	eng := engine.NewEngine(win, sc, r,
		engine.WithTickRate(o.tickRate),
		engine.WithRenderFrameLimit(o.fpsLimit),
		engine.WithProfiling(o.profiling),
		engine.WithLogger(log),
	)
	setupInput(eng, orbit, sun, profile, o, log)

	log.Info(ctx, "atmosphere viewer started",
		logging.String("profile", profile.Name()),
		logging.Int("planets", len(sc.Planets())),
		logging.String("controls", "WASD/arrows orbit, Q/E or scroll zoom, +/- density, Space pause sun, R reload, Esc quit"),
	)
	eng.Run()
	return nil
}

func loadProfile(path string) (atmosphere.Profile, error) {
	if path == "" {
		return atmosphere.NewProfile(atmosphere.WithName("earth")), nil
	}
	profile, err := profile_loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

func serveMetrics(addr string, collector *observability.AtmosphereCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server stopped", logging.String("addr", addr), logging.Err(err))
		}
	}()
	return srv
}

// setupInput wires orbit and zoom keys, profile edits and the sun animation.
func setupInput(eng engine.Engine, orbit camera.OrbitController, sun light.Light, profile atmosphere.Profile, o options, log logging.Logger) {
	var sunPaused atomic.Bool

	eng.Window().SetScrollCallback(func(delta float32) {
		orbit.Zoom(delta)
	})

	eng.Window().SetKeyDownCallback(func(key window.Key) {
		switch key {
		case window.KeyA, window.KeyLeft:
			orbit.OrbitLeft()
		case window.KeyD, window.KeyRight:
			orbit.OrbitRight()
		case window.KeyW, window.KeyUp:
			orbit.OrbitUp()
		case window.KeyS, window.KeyDown:
			orbit.OrbitDown()
		case window.KeyQ:
			orbit.Zoom(1)
		case window.KeyE:
			orbit.Zoom(-1)
		case window.KeyEqual, window.KeyKPAdd:
			profile.Update(func(s *atmosphere.Settings) { s.DensityScale *= 1.1 })
		case window.KeyMinus, window.KeyKPSubtract:
			profile.Update(func(s *atmosphere.Settings) { s.DensityScale /= 1.1 })
		case window.KeySpace:
			sunPaused.Store(!sunPaused.Load())
		case window.KeyR:
			if o.profilePath == "" {
				return
			}
			if err := profile_loader.Reload(o.profilePath, profile); err != nil {
				log.Warn(context.Background(), "profile reload failed", logging.String("path", o.profilePath), logging.Err(err))
			}
		case window.KeyI:
			s := profile.Snapshot()
			log.Info(context.Background(), "profile",
				logging.String("name", profile.Name()),
				logging.Uint64("version", profile.Version()),
				logging.Float("density_scale", s.DensityScale),
				logging.Float("sun_intensity", s.SunIntensity),
			)
		}
	})

	var sunAngle float32
	eng.SetTickCallback(func(dt float32) {
		if sunPaused.Load() {
			return
		}
		sunAngle += float32(o.sunSpeed) * dt
		sin, cos := math32.Sincos(sunAngle)
		sun.SetDirection(-cos, -0.3, -sin)
	})

	var inside atomic.Bool
	eng.SetRenderCallback(func(report atmosphere_pass.FrameReport, _ error) {
		if report.State == atmosphere_pass.FrameNotReady {
			return
		}
		if inside.Swap(report.CameraInside) != report.CameraInside {
			log.Info(context.Background(), "camera crossed atmosphere boundary",
				logging.Uint64("frame", report.Frame),
				logging.Bool("inside", report.CameraInside),
			)
		}
	})
}
