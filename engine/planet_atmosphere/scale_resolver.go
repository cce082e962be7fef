package planet_atmosphere

import (
	"github.com/Carmen-Shannon/oxy-atmosphere/common"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/chewxy/math32"
)

// DefaultScaleChangeThreshold is the squared distance between two lossy scales above which
// the scaled radii are recomputed.
const DefaultScaleChangeThreshold float32 = 1e-6

// ScaleState is the cached result of the last resolve for one instance.
type ScaleState struct {
	// Valid is false until the first successful resolve and after settings disappear.
	Valid bool
	// LastScale is the lossy world scale used for the cached radii.
	LastScale [3]float32
	// PlanetRadius is the world-space planet radius.
	PlanetRadius float32
	// AtmosphereRadius is the world-space outer radius of the atmosphere shell.
	AtmosphereRadius float32
}

// Invalidate forces the next resolve to recompute regardless of scale.
func (s *ScaleState) Invalidate() {
	s.Valid = false
}

// Reset clears the cached state and collapses both radii to zero.
func (s *ScaleState) Reset() {
	*s = ScaleState{}
}

// scaleResolverImpl is the implementation of the ScaleResolver interface.
type scaleResolverImpl struct {
	threshold float32
}

// ScaleResolver keeps world-space atmosphere radii consistent with a transform's lossy scale.
//
// Non-uniform scale is collapsed to the mean of the absolute axis scales; an atmosphere is
// always a sphere in world space. Results are cached in a caller-owned ScaleState so that
// unchanged transforms are not reprocessed every frame.
type ScaleResolver interface {
	// AverageScale collapses a lossy scale into a single non-negative factor.
	//
	// Parameters:
	//   - lossy: the world scale, components may be negative
	//
	// Returns:
	//   - float32: mean(|x|, |y|, |z|)
	AverageScale(lossy [3]float32) float32

	// Resolve refreshes state from the given scale and settings.
	//
	// Radii are recomputed when state holds no valid result, when settingsChanged is set, or
	// when lossy differs from the cached scale by more than the change threshold (squared
	// distance). Otherwise the cached radii are returned unchanged. Nil settings reset state
	// and yield zero radii.
	//
	// Parameters:
	//   - state: the instance's cached state, updated in place
	//   - lossy: the current lossy world scale
	//   - settings: the current settings, or nil
	//   - settingsChanged: true if settings were edited since the last resolve
	//
	// Returns:
	//   - planetRadius: the world-space planet radius
	//   - atmosphereRadius: the world-space atmosphere radius, never below planetRadius
	//   - changed: true if state was recomputed or reset
	Resolve(state *ScaleState, lossy [3]float32, settings *atmosphere.Settings, settingsChanged bool) (planetRadius, atmosphereRadius float32, changed bool)

	// VisualRadius computes the world-space radius of the drawn proxy geometry.
	//
	// The visual radius is the physical outer radius plus padding, never smaller than the
	// physical planet radius, scaled by the average scale. Padding only affects the proxy
	// mesh and is never fed back into the density model.
	//
	// Parameters:
	//   - lossy: the current lossy world scale
	//   - settings: the current settings, or nil
	//   - padding: extra unscaled radius added to the atmosphere shell, may be negative
	//
	// Returns:
	//   - float32: the world-space proxy radius, 0 for nil settings
	VisualRadius(lossy [3]float32, settings *atmosphere.Settings, padding float32) float32
}

var _ ScaleResolver = &scaleResolverImpl{}

// NewScaleResolver creates a ScaleResolver with the default change threshold.
//
// Parameters:
//   - opts: variadic list of ScaleResolverBuilderOption functions
//
// Returns:
//   - ScaleResolver: the new resolver
func NewScaleResolver(opts ...ScaleResolverBuilderOption) ScaleResolver {
	r := &scaleResolverImpl{threshold: DefaultScaleChangeThreshold}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *scaleResolverImpl) AverageScale(lossy [3]float32) float32 {
	return common.MeanAbs3(lossy)
}

func (r *scaleResolverImpl) Resolve(state *ScaleState, lossy [3]float32, settings *atmosphere.Settings, settingsChanged bool) (float32, float32, bool) {
	if settings == nil {
		wasSet := state.Valid || state.PlanetRadius != 0 || state.AtmosphereRadius != 0
		state.Reset()
		return 0, 0, wasSet
	}

	if state.Valid && !settingsChanged && common.DistanceSq3(lossy, state.LastScale) <= r.threshold {
		return state.PlanetRadius, state.AtmosphereRadius, false
	}

	avg := r.AverageScale(lossy)
	planet := settings.PlanetRadius * avg
	atmo := planet + math32.Max(0, settings.AtmosphereHeight)*avg

	state.Valid = true
	state.LastScale = lossy
	state.PlanetRadius = planet
	state.AtmosphereRadius = math32.Max(planet, atmo)
	return state.PlanetRadius, state.AtmosphereRadius, true
}

func (r *scaleResolverImpl) VisualRadius(lossy [3]float32, settings *atmosphere.Settings, padding float32) float32 {
	if settings == nil {
		return 0
	}
	outer := settings.PlanetRadius + math32.Max(0, settings.AtmosphereHeight) + padding
	return math32.Max(settings.PlanetRadius, outer) * r.AverageScale(lossy)
}
