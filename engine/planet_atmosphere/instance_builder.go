package planet_atmosphere

import (
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/game_object"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
)

// InstanceBuilderOption is a function that configures an Instance during construction.
type InstanceBuilderOption func(*instanceImpl)

// WithID is an option builder that sets the instance ID. IDs are assigned from a process-wide
// counter when unset.
//
// Parameters:
//   - id: the instance ID, must be non-zero
//
// Returns:
//   - InstanceBuilderOption: a function that applies the ID to an instanceImpl
func WithID(id uint64) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.id = id
	}
}

// WithName is an option builder that sets the display name used in logs.
//
// Parameters:
//   - name: the display name
//
// Returns:
//   - InstanceBuilderOption: a function that applies the name to an instanceImpl
func WithName(name string) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.name = name
	}
}

// WithProfile is an option builder that sets the shared atmosphere profile.
//
// Parameters:
//   - profile: the profile, or nil
//
// Returns:
//   - InstanceBuilderOption: a function that applies the profile to an instanceImpl
func WithProfile(profile atmosphere.Profile) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.profile = profile
	}
}

// WithGameObject is an option builder that sets the transform provider.
//
// Parameters:
//   - obj: the game object whose position, rotation and lossy scale place the atmosphere
//
// Returns:
//   - InstanceBuilderOption: a function that applies the game object to an instanceImpl
func WithGameObject(obj game_object.GameObject) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.transform = obj
	}
}

// WithScaleResolver is an option builder that overrides the default ScaleResolver.
//
// Parameters:
//   - resolver: the resolver
//
// Returns:
//   - InstanceBuilderOption: a function that applies the resolver to an instanceImpl
func WithScaleResolver(resolver ScaleResolver) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.resolver = resolver
	}
}

// WithVisualPadding is an option builder that sets extra unscaled radius on the proxy geometry.
//
// Parameters:
//   - padding: the padding
//
// Returns:
//   - InstanceBuilderOption: a function that applies the padding to an instanceImpl
func WithVisualPadding(padding float32) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.visualPadding = padding
	}
}

// WithLogger is an option builder that sets the logger used for invalid-profile reports.
//
// Parameters:
//   - log: the logger, nil keeps the no-op default
//
// Returns:
//   - InstanceBuilderOption: a function that applies the logger to an instanceImpl
func WithLogger(log logging.Logger) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.log = logging.OrNoop(log)
	}
}
