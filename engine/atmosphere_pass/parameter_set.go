package atmosphere_pass

import (
	"github.com/Carmen-Shannon/oxy-atmosphere/common"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/planet_atmosphere"
)

const (
	// MinScaleHeight floors the world-space Rayleigh and Mie scale heights.
	MinScaleHeight float32 = 1e-5

	// MeshRadius is the radius of the proxy sphere mesh in model space.
	MeshRadius float32 = 0.5

	// visualRadiusEpsilon is the margin the visual shell must clear above the planet surface.
	visualRadiusEpsilon float32 = 1e-5
)

// Shader parameter names, as bound by the atmosphere shader.
const (
	ParamPlanetWorldPosition     = "_PlanetWorldPosition"
	ParamPlanetRotation          = "_PlanetRotation"
	ParamPlanetRadius            = "_PlanetRadius"
	ParamAtmosphereRadius        = "_AtmosphereRadius"
	ParamRayleighScaleHeight     = "_RayleighScaleHeight"
	ParamMieScaleHeight          = "_MieScaleHeight"
	ParamDensityScale            = "_DensityScale"
	ParamRayleighScatteringCoeff = "_RayleighScatteringCoeff"
	ParamMieScatteringCoeff      = "_MieScatteringCoeff"
	ParamMieG                    = "_MieG"
	ParamOzoneAbsorptionCoeff    = "_OzoneAbsorptionCoeff"
	ParamOzoneCenterAltitudeNorm = "_OzoneCenterAltitudeNorm"
	ParamOzoneWidth              = "_OzoneWidth"
	ParamSunIntensity            = "_SunIntensity"
	ParamSunDirection            = "_SunDirection"
	ParamAtmosphereTint          = "_AtmosphereTint"
	ParamShaderPassIndex         = "_ShaderPassIndex"
	ParamDensityEdgeSmoothness   = "_DensityEdgeSmoothness"
	ParamAmbientIntensity        = "_AmbientIntensity"
)

// SkipReason explains why an active instance produced no draw.
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipInvalidSettings SkipReason = "invalid_settings"
	SkipDegenerate      SkipReason = "degenerate_geometry"
)

// ParameterSet is the per-instance shader input for one frame.
// Both passes share it; only Pass differs between the exterior and interior draw.
type ParameterSet struct {
	Position [3]float32
	Rotation [3]float32

	PlanetRadius        float32
	AtmosphereRadius    float32
	RayleighScaleHeight float32
	MieScaleHeight      float32
	DensityScale        float32

	RayleighScatteringCoeff [3]float32
	MieScatteringCoeff      [3]float32
	OzoneAbsorptionCoeff    [3]float32

	MieG                    float32
	OzoneCenterAltitudeNorm float32
	OzoneWidth              float32
	SunIntensity            float32
	AmbientIntensity        float32
	AtmosphereTint          [3]float32
	DensityEdgeSmoothness   float32

	SunDirection [3]float32
	Pass         PassKind
}

// WithPass returns a copy of the set targeting the given pass.
//
// Parameters:
//   - pass: the pass kind the copy is for
//
// Returns:
//   - ParameterSet: the copy
func (p ParameterSet) WithPass(pass PassKind) ParameterSet {
	p.Pass = pass
	return p
}

// Named returns the parameter bundle keyed by shader parameter name.
// Scalars are float32, vectors [3]float32, and the pass index int32.
//
// Returns:
//   - map[string]any: named shader parameters
func (p ParameterSet) Named() map[string]any {
	return map[string]any{
		ParamPlanetWorldPosition:     p.Position,
		ParamPlanetRotation:          p.Rotation,
		ParamPlanetRadius:            p.PlanetRadius,
		ParamAtmosphereRadius:        p.AtmosphereRadius,
		ParamRayleighScaleHeight:     p.RayleighScaleHeight,
		ParamMieScaleHeight:          p.MieScaleHeight,
		ParamDensityScale:            p.DensityScale,
		ParamRayleighScatteringCoeff: p.RayleighScatteringCoeff,
		ParamMieScatteringCoeff:      p.MieScatteringCoeff,
		ParamMieG:                    p.MieG,
		ParamOzoneAbsorptionCoeff:    p.OzoneAbsorptionCoeff,
		ParamOzoneCenterAltitudeNorm: p.OzoneCenterAltitudeNorm,
		ParamOzoneWidth:              p.OzoneWidth,
		ParamSunIntensity:            p.SunIntensity,
		ParamSunDirection:            p.SunDirection,
		ParamAtmosphereTint:          p.AtmosphereTint,
		ParamShaderPassIndex:         p.Pass.ShaderIndex(),
		ParamDensityEdgeSmoothness:   p.DensityEdgeSmoothness,
		ParamAmbientIntensity:        p.AmbientIntensity,
	}
}

// prepared is one instance's frame input: its parameters and proxy-mesh transform,
// or the reason it is skipped.
type prepared struct {
	id        uint64
	params    ParameterSet
	transform [16]float32
	skip      SkipReason
}

// BuildParameterSet derives the exterior-pass parameters and proxy-mesh transform for one
// instance snapshot.
//
// Parameters:
//   - snap: the instance state for this frame
//   - sunDirection: the frame's normalized direction towards the sun
//
// Returns:
//   - ParameterSet: the exterior parameters, zero when skipped
//   - [16]float32: the column-major model matrix of the proxy sphere
//   - SkipReason: SkipNone when the instance should be drawn
func BuildParameterSet(snap planet_atmosphere.Snapshot, sunDirection [3]float32) (ParameterSet, [16]float32, SkipReason) {
	s := snap.Settings
	if s == nil {
		return ParameterSet{}, [16]float32{}, SkipInvalidSettings
	}
	if snap.VisualRadius <= snap.PlanetRadius+visualRadiusEpsilon {
		return ParameterSet{}, [16]float32{}, SkipDegenerate
	}
	requiredScale := snap.VisualRadius / MeshRadius
	if requiredScale <= 0 {
		return ParameterSet{}, [16]float32{}, SkipDegenerate
	}

	height := max(0, snap.AtmosphereRadius-snap.PlanetRadius)
	params := ParameterSet{
		Position:                snap.Position,
		Rotation:                snap.Rotation,
		PlanetRadius:            snap.PlanetRadius,
		AtmosphereRadius:        snap.AtmosphereRadius,
		RayleighScaleHeight:     max(MinScaleHeight, s.RayleighScaleHeightNorm*height),
		MieScaleHeight:          max(MinScaleHeight, s.MieScaleHeightNorm*height),
		DensityScale:            s.DensityScale,
		RayleighScatteringCoeff: s.ScaledRayleighCoeff(),
		MieScatteringCoeff:      s.ScaledMieCoeff(),
		OzoneAbsorptionCoeff:    s.ScaledOzoneCoeff(),
		MieG:                    s.MieG,
		OzoneCenterAltitudeNorm: s.OzoneCenterAltitudeNorm,
		OzoneWidth:              s.OzoneWidth,
		SunIntensity:            s.SunIntensity,
		AmbientIntensity:        s.AmbientIntensity,
		AtmosphereTint:          s.AtmosphereTint,
		DensityEdgeSmoothness:   s.DensityEdgeSmoothness,
		SunDirection:            sunDirection,
		Pass:                    PassExterior,
	}
	scale := [3]float32{requiredScale, requiredScale, requiredScale}
	return params, common.TRS(snap.Position, snap.Rotation, scale), SkipNone
}
