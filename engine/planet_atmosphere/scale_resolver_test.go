package planet_atmosphere

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/stretchr/testify/assert"
)

func TestAverageScale(t *testing.T) {
	r := NewScaleResolver()
	assert.Equal(t, float32(2), r.AverageScale([3]float32{1, -2, 3}))
	assert.Equal(t, float32(0), r.AverageScale([3]float32{}))
}

func TestResolve_FirstResolveComputes(t *testing.T) {
	r := NewScaleResolver()
	s := atmosphere.DefaultSettings()

	var state ScaleState
	planet, atmo, changed := r.Resolve(&state, [3]float32{2, 2, 2}, s, false)
	assert.True(t, changed)
	assert.Equal(t, float32(2), planet)
	assert.Equal(t, float32(4), atmo)
	assert.True(t, state.Valid)
}

func TestResolve_CachesUnchangedScale(t *testing.T) {
	r := NewScaleResolver()
	s := atmosphere.DefaultSettings()

	var state ScaleState
	r.Resolve(&state, [3]float32{1, 1, 1}, s, false)

	s.PlanetRadius = 5
	planet, _, changed := r.Resolve(&state, [3]float32{1, 1, 1.0001}, s, false)
	assert.False(t, changed, "scale moved less than the threshold")
	assert.Equal(t, float32(1), planet)

	planet, _, changed = r.Resolve(&state, [3]float32{1, 1, 1}, s, true)
	assert.True(t, changed, "settings change forces recompute")
	assert.Equal(t, float32(5), planet)

	planet, _, changed = r.Resolve(&state, [3]float32{2, 2, 2}, s, false)
	assert.True(t, changed)
	assert.Equal(t, float32(10), planet)
}

func TestResolve_InvalidatedStateRecomputes(t *testing.T) {
	r := NewScaleResolver()
	s := atmosphere.DefaultSettings()

	var state ScaleState
	r.Resolve(&state, [3]float32{1, 1, 1}, s, false)
	s.AtmosphereHeight = 3
	state.Invalidate()

	_, atmo, changed := r.Resolve(&state, [3]float32{1, 1, 1}, s, false)
	assert.True(t, changed)
	assert.Equal(t, float32(4), atmo)
}

func TestResolve_NilSettingsCollapses(t *testing.T) {
	r := NewScaleResolver()
	var state ScaleState
	r.Resolve(&state, [3]float32{1, 1, 1}, atmosphere.DefaultSettings(), false)

	planet, atmo, changed := r.Resolve(&state, [3]float32{1, 1, 1}, nil, false)
	assert.True(t, changed)
	assert.Zero(t, planet)
	assert.Zero(t, atmo)
	assert.False(t, state.Valid)

	_, _, changed = r.Resolve(&state, [3]float32{1, 1, 1}, nil, false)
	assert.False(t, changed)
}

func TestResolve_AtmosphereNeverBelowPlanet(t *testing.T) {
	r := NewScaleResolver()
	s := atmosphere.DefaultSettings()
	s.AtmosphereHeight = -1

	var state ScaleState
	planet, atmo, _ := r.Resolve(&state, [3]float32{3, 3, 3}, s, false)
	assert.Equal(t, planet, atmo)
}

func TestResolve_CustomThreshold(t *testing.T) {
	r := NewScaleResolver(WithChangeThreshold(1))
	s := atmosphere.DefaultSettings()

	var state ScaleState
	r.Resolve(&state, [3]float32{1, 1, 1}, s, false)
	_, _, changed := r.Resolve(&state, [3]float32{1.5, 1, 1}, s, false)
	assert.False(t, changed)
}

func TestVisualRadius(t *testing.T) {
	r := NewScaleResolver()
	s := atmosphere.DefaultSettings()

	assert.Equal(t, float32(4), r.VisualRadius([3]float32{2, 2, 2}, s, 0))
	assert.Equal(t, float32(5), r.VisualRadius([3]float32{2, 2, 2}, s, 0.5))
	assert.Equal(t, float32(2), r.VisualRadius([3]float32{2, 2, 2}, s, -10), "clamped to the planet radius")
	assert.Zero(t, r.VisualRadius([3]float32{2, 2, 2}, nil, 0))
}
