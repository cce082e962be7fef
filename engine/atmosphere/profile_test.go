package atmosphere

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_InternalFactorsDerived(t *testing.T) {
	s := DefaultSettings()
	want := ScaleFactorFromSlider(0.1)
	assert.InDelta(t, 0.00109, want, 1e-7)
	assert.Equal(t, want, s.RayleighScaleFactorInternal())
	assert.Equal(t, want, s.MieScaleFactorInternal())
	assert.Equal(t, want, s.OzoneScaleFactorInternal())
}

func TestScaleFactorFromSlider_Endpoints(t *testing.T) {
	assert.Equal(t, MinScaleFactor, ScaleFactorFromSlider(0))
	assert.InDelta(t, MaxScaleFactor, ScaleFactorFromSlider(1), 1e-9)
}

func TestSettingsValidate_Clamps(t *testing.T) {
	s := &Settings{
		PlanetRadius:            -4,
		AtmosphereHeight:        -1,
		DensityScale:            -2,
		DensityEdgeSmoothness:   3,
		RayleighScaleHeightNorm: 0,
		MieScaleHeightNorm:      5,
		OzoneCenterAltitudeNorm: -1,
		OzoneWidth:              0,
		RayleighScatteringCoeff: [3]float32{-1, 2, 3},
		RayleighScaleFactor:     2,
		MieScatteringCoeff:      [3]float32{1, -2, 3},
		MieScaleFactor:          -1,
		OzoneAbsorptionCoeff:    [3]float32{1, 2, -3},
		OzoneScaleFactor:        0.5,
		MieG:                    1.5,
		SunIntensity:            -1,
		AmbientIntensity:        -1,
		AtmosphereTint:          [3]float32{-1, 1, 1},
	}
	s.Validate()

	assert.Equal(t, MinPlanetRadius, s.PlanetRadius)
	assert.Equal(t, float32(0), s.AtmosphereHeight)
	assert.Equal(t, float32(0), s.DensityScale)
	assert.Equal(t, float32(1), s.DensityEdgeSmoothness)
	assert.Equal(t, float32(0.01), s.RayleighScaleHeightNorm)
	assert.Equal(t, float32(0.99), s.MieScaleHeightNorm)
	assert.Equal(t, float32(0), s.OzoneCenterAltitudeNorm)
	assert.Equal(t, MinOzoneWidth, s.OzoneWidth)
	assert.Equal(t, [3]float32{0, 2, 3}, s.RayleighScatteringCoeff)
	assert.Equal(t, [3]float32{1, 0, 3}, s.MieScatteringCoeff)
	assert.Equal(t, [3]float32{1, 2, 0}, s.OzoneAbsorptionCoeff)
	assert.Equal(t, float32(1), s.RayleighScaleFactor)
	assert.Equal(t, float32(0), s.MieScaleFactor)
	assert.Equal(t, MaxMieG, s.MieG)
	assert.Equal(t, float32(0), s.SunIntensity)
	assert.Equal(t, float32(0), s.AmbientIntensity)
	assert.Equal(t, [3]float32{0, 1, 1}, s.AtmosphereTint)

	assert.Equal(t, ScaleFactorFromSlider(1), s.RayleighScaleFactorInternal())
	assert.Equal(t, ScaleFactorFromSlider(0), s.MieScaleFactorInternal())
	assert.Equal(t, ScaleFactorFromSlider(0.5), s.OzoneScaleFactorInternal())
}

func TestSettings_ScaledCoefficients(t *testing.T) {
	s := DefaultSettings()
	k := s.RayleighScaleFactorInternal()
	got := s.ScaledRayleighCoeff()
	assert.InDeltaSlice(t, []float32{5.8 * k, 13.5 * k, 33.1 * k}, got[:], 1e-9)
	assert.Equal(t, float32(2), s.OuterRadius())
}

func TestSettings_Clone(t *testing.T) {
	s := DefaultSettings()
	c := s.Clone()
	c.PlanetRadius = 9
	assert.Equal(t, float32(1), s.PlanetRadius)
	assert.Equal(t, s.MieScaleFactorInternal(), c.MieScaleFactorInternal())

	var nilSettings *Settings
	assert.Nil(t, nilSettings.Clone())
}

func TestNewProfile_Defaults(t *testing.T) {
	p := NewProfile(WithName("earth"))
	assert.Equal(t, "earth", p.Name())
	require.NotNil(t, p.Settings())
	assert.Equal(t, uint64(0), p.Version())

	invalid := NewProfile(WithSettings(nil))
	assert.Nil(t, invalid.Settings())
}

func TestNewProfile_ValidatesInitialSettings(t *testing.T) {
	s := DefaultSettings()
	s.RayleighScaleFactor = 1
	p := NewProfile(WithSettings(s))
	assert.Equal(t, ScaleFactorFromSlider(1), p.Settings().RayleighScaleFactorInternal())
}

func TestProfile_UpdateRecomputesInternalFactors(t *testing.T) {
	p := NewProfile()
	ok := p.Update(func(s *Settings) {
		s.MieScaleFactor = 0.75
	})
	require.True(t, ok)
	assert.Equal(t, ScaleFactorFromSlider(0.75), p.Settings().MieScaleFactorInternal())
	assert.Equal(t, uint64(1), p.Version())

	invalid := NewProfile(WithSettings(nil))
	assert.False(t, invalid.Update(func(*Settings) {}))
	assert.Equal(t, uint64(0), invalid.Version())
}

func TestProfile_SetSettingsValidates(t *testing.T) {
	p := NewProfile()
	s := &Settings{OzoneScaleFactor: 4}
	p.SetSettings(s)
	assert.Equal(t, float32(1), p.Settings().OzoneScaleFactor)
	assert.Equal(t, ScaleFactorFromSlider(1), p.Settings().OzoneScaleFactorInternal())

	p.SetSettings(nil)
	assert.Nil(t, p.Settings())
	assert.Equal(t, uint64(2), p.Version())
}

func TestProfile_Subscribe(t *testing.T) {
	p := NewProfile()

	var calls []string
	unsubA := p.Subscribe(func(Profile) { calls = append(calls, "a") })
	p.Subscribe(func(changed Profile) {
		assert.Same(t, p, changed)
		calls = append(calls, "b")
	})

	p.Update(func(s *Settings) { s.SunIntensity = 10 })
	assert.Equal(t, []string{"a", "b"}, calls)

	unsubA()
	unsubA()
	p.SetSettings(DefaultSettings())
	assert.Equal(t, []string{"a", "b", "b"}, calls)
}

func TestProfile_SubscriberMayReadProfile(t *testing.T) {
	p := NewProfile()
	var seen uint64
	p.Subscribe(func(changed Profile) {
		seen = changed.Version()
		_ = changed.Settings()
	})
	p.Update(func(s *Settings) { s.MieG = 0.5 })
	assert.Equal(t, uint64(1), seen)
}

func TestProfile_SnapshotIsIndependent(t *testing.T) {
	p := NewProfile()
	snap := p.Snapshot()
	require.NotNil(t, snap)

	p.Update(func(s *Settings) { s.PlanetRadius = 6 })
	assert.Equal(t, float32(1), snap.PlanetRadius)
	assert.Equal(t, float32(6), p.Snapshot().PlanetRadius)

	assert.Nil(t, NewProfile(WithSettings(nil)).Snapshot())
}
