package scene

import (
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere_pass"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/light"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/planet_atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
)

// SceneBuilderOption is a functional option for configuring a Scene.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithLights adds initial lights to the scene.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		for _, l := range lights {
			if l != nil {
				s.lights = append(s.lights, l)
			}
		}
	}
}

// WithRegistry shares an existing registry instead of creating one.
//
// Parameters:
//   - registry: the registry
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRegistry(registry planet_atmosphere.Registry) SceneBuilderOption {
	return func(s *scene) {
		s.registry = registry
	}
}

// WithScheduler uses a preconfigured scheduler. It must be built over the scene's registry and sink.
//
// Parameters:
//   - scheduler: the scheduler
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithScheduler(scheduler atmosphere_pass.PassScheduler) SceneBuilderOption {
	return func(s *scene) {
		s.scheduler = scheduler
	}
}

// WithLogger sets the scene's logger, also handed to the planets it creates.
//
// Parameters:
//   - log: the logger, nil for none
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(log logging.Logger) SceneBuilderOption {
	return func(s *scene) {
		s.log = logging.OrNoop(log)
	}
}

// WithComputeWorkers sets how many workers the scene's scheduler uses to build parameter sets.
// Ignored when WithScheduler is given.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(workers int) SceneBuilderOption {
	return func(s *scene) {
		s.workers = workers
	}
}

// WithMetrics sets the recorder the scene's scheduler reports to. The default registry also
// reports its member count to it on every membership change. Ignored for the scheduler when
// WithScheduler is given, and for the registry when WithRegistry is given.
//
// Parameters:
//   - metrics: the recorder, nil for none
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMetrics(metrics atmosphere_pass.MetricsRecorder) SceneBuilderOption {
	return func(s *scene) {
		s.metrics = metrics
	}
}
