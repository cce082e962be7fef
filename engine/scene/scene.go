package scene

import (
	"context"
	"sync"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere_pass"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/game_object"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/light"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/planet_atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
)

// CameraBinder is implemented by sinks that need the frame's camera before draws are submitted.
type CameraBinder interface {
	SetCamera(cam camera.Camera)
}

// Planet is one atmosphere-bearing body in a scene: its transform and its atmosphere instance.
type Planet struct {
	Object   game_object.GameObject
	Instance planet_atmosphere.Instance
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool
	log    logging.Logger

	cam    camera.Camera
	lights []light.Light

	registry  planet_atmosphere.Registry
	scheduler atmosphere_pass.PassScheduler
	sink      atmosphere_pass.DrawSink

	planets []Planet
	frame   uint64

	workers int
	metrics atmosphere_pass.MetricsRecorder
}

// Scene groups a camera, lights and planets with the registry and pass scheduler that render
// their atmospheres. Each Render call schedules one frame into the scene's DrawSink.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is rendered by the engine.
	Active() bool

	// SetActive sets whether this scene is rendered by the engine.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// AddLight adds a light. The first enabled directional light drives the sun direction.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// Lights returns a copy of the scene's lights in insertion order.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// AddPlanet creates a planet transform and an enabled atmosphere instance bound to profile.
	//
	// Parameters:
	//   - name: display name for the planet
	//   - profile: the atmosphere profile, may be nil for a planet without an atmosphere
	//   - objectOpts: options for the planet's transform
	//
	// Returns:
	//   - Planet: the created planet
	AddPlanet(name string, profile atmosphere.Profile, objectOpts ...game_object.GameObjectBuilderOption) Planet

	// RemovePlanet disables and forgets the planet with the given instance ID.
	//
	// Parameters:
	//   - id: the atmosphere instance ID
	//
	// Returns:
	//   - bool: true if a planet was removed
	RemovePlanet(id uint64) bool

	// Planets returns a copy of the scene's planets in insertion order.
	//
	// Returns:
	//   - []Planet: the planets
	Planets() []Planet

	// Registry returns the registry the scene's instances join.
	//
	// Returns:
	//   - planet_atmosphere.Registry: the registry
	Registry() planet_atmosphere.Registry

	// Scheduler returns the scene's pass scheduler.
	//
	// Returns:
	//   - atmosphere_pass.PassScheduler: the scheduler
	Scheduler() atmosphere_pass.PassScheduler

	// LoadResources resolves the atmosphere mesh and shader for the scene's scheduler.
	//
	// Parameters:
	//   - ctx: context for logging
	//   - assets: the asset lookup, typically the renderer
	//
	// Returns:
	//   - error: non-nil if a required asset is missing
	LoadResources(ctx context.Context, assets atmosphere_pass.AssetSource) error

	// Advance steps every planet's rotation by deltaTime seconds.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Advance(deltaTime float32)

	// Render updates the camera and schedules one frame of atmosphere draws.
	//
	// Parameters:
	//   - ctx: context for tracing
	//
	// Returns:
	//   - atmosphere_pass.FrameReport: what was drawn
	//   - error: aggregated sink errors, or atmosphere_pass.ErrNoCamera
	Render(ctx context.Context) (atmosphere_pass.FrameReport, error)

	// Close disables every planet and stops the scheduler.
	Close()
}

var _ Scene = &scene{}

// NewScene creates a scene that renders into sink. Unless overridden by options, a fresh
// registry and a scheduler over it are created.
//
// Parameters:
//   - name: the scene name
//   - cam: the scene camera, must not be nil
//   - sink: the draw sink, must not be nil
//   - options: functional options
//
// Returns:
//   - Scene: the new, active scene
func NewScene(name string, cam camera.Camera, sink atmosphere_pass.DrawSink, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if sink == nil {
		panic("scene: NewScene requires a non-nil DrawSink")
	}

	s := &scene{
		mu:     &sync.RWMutex{},
		name:   name,
		active: true,
		log:    logging.Noop(),
		cam:    cam,
		sink:   sink,
	}
	for _, option := range options {
		option(s)
	}

	if s.registry == nil {
		var regOpts []planet_atmosphere.RegistryBuilderOption
		if s.metrics != nil {
			regOpts = append(regOpts, planet_atmosphere.WithOnChange(s.metrics.SetActiveInstances))
		}
		s.registry = planet_atmosphere.NewRegistry(regOpts...)
	}
	if s.scheduler == nil {
		opts := []atmosphere_pass.PassSchedulerBuilderOption{
			atmosphere_pass.WithLogger(s.log),
			atmosphere_pass.WithMetrics(s.metrics),
		}
		if s.workers > 0 {
			opts = append(opts, atmosphere_pass.WithWorkers(s.workers))
		}
		s.scheduler = atmosphere_pass.NewPassScheduler(s.registry, sink, opts...)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	if cam == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]light.Light, len(s.lights))
	copy(out, s.lights)
	return out
}

func (s *scene) AddPlanet(name string, profile atmosphere.Profile, objectOpts ...game_object.GameObjectBuilderOption) Planet {
	obj := game_object.NewGameObject(append([]game_object.GameObjectBuilderOption{game_object.WithName(name)}, objectOpts...)...)
	inst := planet_atmosphere.NewInstance(s.registry,
		planet_atmosphere.WithName(name),
		planet_atmosphere.WithGameObject(obj),
		planet_atmosphere.WithProfile(profile),
		planet_atmosphere.WithLogger(s.log),
	)
	inst.Enable()

	p := Planet{Object: obj, Instance: inst}
	s.mu.Lock()
	s.planets = append(s.planets, p)
	s.mu.Unlock()

	s.log.Debug(context.Background(), "planet added",
		logging.String("planet", name), logging.Uint64("instance_id", inst.ID()), logging.Bool("active", s.registry.Contains(inst)))
	return p
}

func (s *scene) RemovePlanet(id uint64) bool {
	s.mu.Lock()
	var removed *Planet
	for i, p := range s.planets {
		if p.Instance.ID() == id {
			removed = &s.planets[i]
			s.planets = append(s.planets[:i:i], s.planets[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if removed == nil {
		return false
	}
	removed.Instance.Disable()
	return true
}

func (s *scene) Planets() []Planet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Planet, len(s.planets))
	copy(out, s.planets)
	return out
}

func (s *scene) Registry() planet_atmosphere.Registry {
	return s.registry
}

func (s *scene) Scheduler() atmosphere_pass.PassScheduler {
	return s.scheduler
}

func (s *scene) LoadResources(ctx context.Context, assets atmosphere_pass.AssetSource) error {
	return s.scheduler.LoadResources(ctx, assets)
}

func (s *scene) Advance(deltaTime float32) {
	for _, p := range s.Planets() {
		p.Object.Advance(deltaTime)
	}
}

func (s *scene) Render(ctx context.Context) (atmosphere_pass.FrameReport, error) {
	s.mu.Lock()
	s.frame++
	frame := s.frame
	cam := s.cam
	lights := make([]light.Light, len(s.lights))
	copy(lights, s.lights)
	s.mu.Unlock()

	cam.Update()
	if binder, ok := s.sink.(CameraBinder); ok {
		binder.SetCamera(cam)
	}
	return s.scheduler.Schedule(ctx, atmosphere_pass.FrameInput{
		Frame:  frame,
		Camera: cam,
		Lights: lights,
	})
}

func (s *scene) Close() {
	for _, p := range s.Planets() {
		p.Instance.Disable()
	}
	s.scheduler.Close()
}
