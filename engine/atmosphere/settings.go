// Package atmosphere holds the physical description of a planetary atmosphere and the
// closed-form density model evaluated from it.
package atmosphere

import (
	"github.com/Carmen-Shannon/oxy-atmosphere/common"
	"github.com/chewxy/math32"
)

const (
	// MinScaleFactor is the internal scale factor produced by an intensity slider at 0.
	MinScaleFactor float32 = 0.0001

	// MaxScaleFactor is the internal scale factor produced by an intensity slider at 1.
	MaxScaleFactor float32 = 0.01

	// MinPlanetRadius is the smallest planet radius a profile may carry.
	MinPlanetRadius float32 = 0.1

	// MinOzoneWidth is the narrowest ozone band a profile may carry.
	MinOzoneWidth float32 = 0.01

	// MaxMieG bounds the absolute Mie phase asymmetry.
	MaxMieG float32 = 0.99
)

// Settings is the physical parameter set for one atmosphere profile.
//
// Settings are shared by reference between every planet instance using the same profile.
// The intensity sliders (RayleighScaleFactor, MieScaleFactor, OzoneScaleFactor) are the
// authored values; the internal scale factors the renderer consumes are derived from them
// and must be refreshed with UpdateInternalScaleFactors (or Validate) after any slider edit.
type Settings struct {
	// PlanetRadius is the radius of the planet body in local units, before transform scaling.
	PlanetRadius float32 `yaml:"planet_radius" toml:"planet_radius"`
	// AtmosphereHeight is the thickness of the atmosphere shell above the surface, before transform scaling.
	AtmosphereHeight float32 `yaml:"atmosphere_height" toml:"atmosphere_height"`

	// DensityScale is the overall multiplier applied to every extinction term.
	DensityScale float32 `yaml:"density_scale" toml:"density_scale"`
	// DensityEdgeSmoothness blends density towards zero at the outer shell (0 = sharp edge, 1 = fully smoothed).
	DensityEdgeSmoothness float32 `yaml:"density_edge_smoothness" toml:"density_edge_smoothness"`

	// RayleighScaleHeightNorm is the Rayleigh scale height as a fraction of AtmosphereHeight.
	RayleighScaleHeightNorm float32 `yaml:"rayleigh_scale_height_norm" toml:"rayleigh_scale_height_norm"`
	// MieScaleHeightNorm is the Mie scale height as a fraction of AtmosphereHeight.
	MieScaleHeightNorm float32 `yaml:"mie_scale_height_norm" toml:"mie_scale_height_norm"`
	// OzoneCenterAltitudeNorm is the normalized altitude of peak ozone density.
	OzoneCenterAltitudeNorm float32 `yaml:"ozone_center_altitude_norm" toml:"ozone_center_altitude_norm"`
	// OzoneWidth is the full width of the ozone band in normalized altitude units.
	OzoneWidth float32 `yaml:"ozone_width" toml:"ozone_width"`

	// RayleighScatteringCoeff is the base Rayleigh scattering coefficient per RGB channel.
	RayleighScatteringCoeff [3]float32 `yaml:"rayleigh_scattering_coeff" toml:"rayleigh_scattering_coeff"`
	// RayleighScaleFactor is the normalized Rayleigh intensity slider in [0, 1].
	RayleighScaleFactor float32 `yaml:"rayleigh_scale_factor" toml:"rayleigh_scale_factor"`

	// MieScatteringCoeff is the base Mie scattering coefficient per RGB channel.
	MieScatteringCoeff [3]float32 `yaml:"mie_scattering_coeff" toml:"mie_scattering_coeff"`
	// MieScaleFactor is the normalized Mie intensity slider in [0, 1].
	MieScaleFactor float32 `yaml:"mie_scale_factor" toml:"mie_scale_factor"`

	// OzoneAbsorptionCoeff is the base ozone absorption coefficient per RGB channel.
	OzoneAbsorptionCoeff [3]float32 `yaml:"ozone_absorption_coeff" toml:"ozone_absorption_coeff"`
	// OzoneScaleFactor is the normalized ozone intensity slider in [0, 1].
	OzoneScaleFactor float32 `yaml:"ozone_scale_factor" toml:"ozone_scale_factor"`

	// MieG is the Mie phase asymmetry (-1 backscatter, 0 isotropic, 1 forward scatter).
	MieG float32 `yaml:"mie_g" toml:"mie_g"`

	// SunIntensity multiplies the incoming sun light.
	SunIntensity float32 `yaml:"sun_intensity" toml:"sun_intensity"`
	// AmbientIntensity scales the approximated secondary scattering that lifts the unlit side.
	AmbientIntensity float32 `yaml:"ambient_intensity" toml:"ambient_intensity"`
	// AtmosphereTint is applied after scattering.
	AtmosphereTint [3]float32 `yaml:"atmosphere_tint" toml:"atmosphere_tint"`

	rayleighScaleFactorInternal float32
	mieScaleFactorInternal      float32
	ozoneScaleFactorInternal    float32
}

// DefaultSettings returns an Earth-like profile with its internal scale factors already derived.
//
// Returns:
//   - *Settings: a new, validated settings value
func DefaultSettings() *Settings {
	s := &Settings{
		PlanetRadius:            1,
		AtmosphereHeight:        1,
		DensityScale:            15,
		DensityEdgeSmoothness:   0.2,
		RayleighScaleHeightNorm: 0.084,
		MieScaleHeightNorm:      0.012,
		OzoneCenterAltitudeNorm: 0.25,
		OzoneWidth:              0.3,
		RayleighScatteringCoeff: [3]float32{5.8, 13.5, 33.1},
		RayleighScaleFactor:     0.1,
		MieScatteringCoeff:      [3]float32{3.9, 3.9, 3.9},
		MieScaleFactor:          0.1,
		OzoneAbsorptionCoeff:    [3]float32{0.6, 1.9, 0.05},
		OzoneScaleFactor:        0.1,
		MieG:                    0.76,
		SunIntensity:            20,
		AmbientIntensity:        0.01,
		AtmosphereTint:          [3]float32{1, 1, 1},
	}
	s.UpdateInternalScaleFactors()
	return s
}

// ScaleFactorFromSlider maps a normalized intensity slider onto the internal scale factor range.
//
// Parameters:
//   - slider: the normalized slider value in [0, 1]
//
// Returns:
//   - float32: lerp(MinScaleFactor, MaxScaleFactor, slider)
func ScaleFactorFromSlider(slider float32) float32 {
	return common.Lerp(MinScaleFactor, MaxScaleFactor, slider)
}

// UpdateInternalScaleFactors re-derives the three internal scale factors from the sliders.
func (s *Settings) UpdateInternalScaleFactors() {
	s.rayleighScaleFactorInternal = ScaleFactorFromSlider(s.RayleighScaleFactor)
	s.mieScaleFactorInternal = ScaleFactorFromSlider(s.MieScaleFactor)
	s.ozoneScaleFactorInternal = ScaleFactorFromSlider(s.OzoneScaleFactor)
}

// Validate clamps every field into its legal range and re-derives the internal scale factors.
// Sliders are clamped before the derivation so the internal factors never leave
// [MinScaleFactor, MaxScaleFactor].
func (s *Settings) Validate() {
	s.RayleighScaleFactor = common.Clamp01(s.RayleighScaleFactor)
	s.MieScaleFactor = common.Clamp01(s.MieScaleFactor)
	s.OzoneScaleFactor = common.Clamp01(s.OzoneScaleFactor)
	s.UpdateInternalScaleFactors()

	s.PlanetRadius = math32.Max(MinPlanetRadius, s.PlanetRadius)
	s.AtmosphereHeight = math32.Max(0, s.AtmosphereHeight)

	s.RayleighScaleHeightNorm = common.Clamp(s.RayleighScaleHeightNorm, 0.01, 0.99)
	s.MieScaleHeightNorm = common.Clamp(s.MieScaleHeightNorm, 0.01, 0.99)
	s.OzoneCenterAltitudeNorm = common.Clamp01(s.OzoneCenterAltitudeNorm)
	s.OzoneWidth = math32.Max(MinOzoneWidth, s.OzoneWidth)

	s.DensityScale = math32.Max(0, s.DensityScale)
	s.DensityEdgeSmoothness = common.Clamp01(s.DensityEdgeSmoothness)

	s.MieG = common.Clamp(s.MieG, -MaxMieG, MaxMieG)
	s.RayleighScatteringCoeff = nonNegative3(s.RayleighScatteringCoeff)
	s.MieScatteringCoeff = nonNegative3(s.MieScatteringCoeff)
	s.OzoneAbsorptionCoeff = nonNegative3(s.OzoneAbsorptionCoeff)
	s.AtmosphereTint = nonNegative3(s.AtmosphereTint)

	s.SunIntensity = math32.Max(0, s.SunIntensity)
	s.AmbientIntensity = math32.Max(0, s.AmbientIntensity)
}

// RayleighScaleFactorInternal returns the derived Rayleigh scale factor.
func (s *Settings) RayleighScaleFactorInternal() float32 {
	return s.rayleighScaleFactorInternal
}

// MieScaleFactorInternal returns the derived Mie scale factor.
func (s *Settings) MieScaleFactorInternal() float32 {
	return s.mieScaleFactorInternal
}

// OzoneScaleFactorInternal returns the derived ozone scale factor.
func (s *Settings) OzoneScaleFactorInternal() float32 {
	return s.ozoneScaleFactorInternal
}

// ScaledRayleighCoeff returns the Rayleigh coefficient pre-multiplied by its internal scale factor.
func (s *Settings) ScaledRayleighCoeff() [3]float32 {
	return common.Scale3(s.RayleighScatteringCoeff, s.rayleighScaleFactorInternal)
}

// ScaledMieCoeff returns the Mie coefficient pre-multiplied by its internal scale factor.
func (s *Settings) ScaledMieCoeff() [3]float32 {
	return common.Scale3(s.MieScatteringCoeff, s.mieScaleFactorInternal)
}

// ScaledOzoneCoeff returns the ozone coefficient pre-multiplied by its internal scale factor.
func (s *Settings) ScaledOzoneCoeff() [3]float32 {
	return common.Scale3(s.OzoneAbsorptionCoeff, s.ozoneScaleFactorInternal)
}

// OuterRadius returns the unscaled physical outer radius of the atmosphere shell.
func (s *Settings) OuterRadius() float32 {
	return s.PlanetRadius + math32.Max(0, s.AtmosphereHeight)
}

// Clone returns an independent copy of the settings, derived factors included.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func nonNegative3(v [3]float32) [3]float32 {
	return [3]float32{math32.Max(0, v[0]), math32.Max(0, v[1]), math32.Max(0, v[2])}
}
