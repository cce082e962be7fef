package atmosphere_pass

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/planet_atmosphere"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSnapshot() planet_atmosphere.Snapshot {
	return planet_atmosphere.Snapshot{
		ID:               1,
		Position:         [3]float32{1, 2, 3},
		Settings:         atmosphere.DefaultSettings(),
		PlanetRadius:     1,
		AtmosphereRadius: 2,
		VisualRadius:     2,
	}
}

func TestBuildParameterSet(t *testing.T) {
	snap := validSnapshot()
	sun := [3]float32{0, 1, 0}

	params, transform, skip := BuildParameterSet(snap, sun)
	require.Equal(t, SkipNone, skip)

	s := snap.Settings
	assert.InDelta(t, s.RayleighScaleHeightNorm, params.RayleighScaleHeight, 1e-6)
	assert.InDelta(t, s.MieScaleHeightNorm, params.MieScaleHeight, 1e-6)
	assert.Equal(t, s.ScaledRayleighCoeff(), params.RayleighScatteringCoeff)
	assert.Equal(t, s.ScaledOzoneCoeff(), params.OzoneAbsorptionCoeff)
	assert.Equal(t, sun, params.SunDirection)
	assert.Equal(t, PassExterior, params.Pass)

	// visual radius 2 on a 0.5 mesh is a uniform scale of 4
	assert.InDelta(t, 4, transform[0], 1e-6)
	assert.InDelta(t, 4, transform[5], 1e-6)
	assert.InDelta(t, 4, transform[10], 1e-6)
	assert.Equal(t, [3]float32{1, 2, 3}, [3]float32{transform[12], transform[13], transform[14]})
}

func TestBuildParameterSet_ScaleHeightFloor(t *testing.T) {
	snap := validSnapshot()
	snap.AtmosphereRadius = snap.PlanetRadius

	params, _, skip := BuildParameterSet(snap, FallbackSunDirection)
	require.Equal(t, SkipNone, skip)
	assert.Equal(t, MinScaleHeight, params.RayleighScaleHeight)
	assert.Equal(t, MinScaleHeight, params.MieScaleHeight)
}

func TestBuildParameterSet_Skips(t *testing.T) {
	snap := validSnapshot()
	snap.Settings = nil
	_, _, skip := BuildParameterSet(snap, FallbackSunDirection)
	assert.Equal(t, SkipInvalidSettings, skip)

	snap = validSnapshot()
	snap.VisualRadius = snap.PlanetRadius + 5e-6
	_, _, skip = BuildParameterSet(snap, FallbackSunDirection)
	assert.Equal(t, SkipDegenerate, skip)

	snap = validSnapshot()
	snap.PlanetRadius = -3
	snap.VisualRadius = -1
	_, _, skip = BuildParameterSet(snap, FallbackSunDirection)
	assert.Equal(t, SkipDegenerate, skip, "non-positive mesh scale")
}

func TestParameterSet_Named(t *testing.T) {
	params, _, _ := BuildParameterSet(validSnapshot(), FallbackSunDirection)
	named := params.WithPass(PassInterior).Named()

	assert.Len(t, named, 19)
	assert.Equal(t, [3]float32{1, 2, 3}, named[ParamPlanetWorldPosition])
	assert.Equal(t, float32(2), named[ParamAtmosphereRadius])
	assert.Equal(t, int32(1), named[ParamShaderPassIndex])
	assert.Equal(t, FallbackSunDirection, named[ParamSunDirection])
}

func TestPassKind_String(t *testing.T) {
	assert.Equal(t, "exterior", PassExterior.String())
	assert.Equal(t, "interior", PassInterior.String())
	assert.Equal(t, "unknown", PassKind(9).String())
}

func TestGPUAtmosphereUniform(t *testing.T) {
	params, transform, _ := BuildParameterSet(validSnapshot(), FallbackSunDirection)
	u := NewGPUAtmosphereUniform(DrawCommand{Transform: transform, Pass: PassInterior, Params: params.WithPass(PassInterior)})

	assert.Equal(t, 192, u.Size())
	buf := u.Marshal()
	require.Len(t, buf, 192)
	assert.Equal(t, uint32(1), u.PassIndex)
	assert.Equal(t, byte(1), buf[180])
}
