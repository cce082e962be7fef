package atmosphere

import (
	"github.com/Carmen-Shannon/oxy-atmosphere/common"
	"github.com/chewxy/math32"
)

// DefaultSampleCount is the number of altitude steps SampleProfile takes when asked for a
// non-positive count: 101 samples, 0.01 apart.
const DefaultSampleCount = 100

// ExponentialDensity evaluates an exponential falloff layer with an optional smoothed top edge.
//
// The raw layer is exp(-altitude/scaleHeight). The smoothed variant additionally multiplies by
// clamp01(1-normAltitude) so density reaches zero at the outer shell, and edgeSmoothness blends
// linearly between the two. scaleHeight is floored to common.Epsilon.
//
// Parameters:
//   - altitude: height above the planet surface, in the same units as scaleHeight
//   - normAltitude: the same altitude normalized by the atmosphere height, nominally in [0, 1]
//   - scaleHeight: altitude over which the layer decays by a factor of e
//   - edgeSmoothness: blend factor between the raw (0) and smoothed (1) profile
//
// Returns:
//   - float32: the relative density
func ExponentialDensity(altitude, normAltitude, scaleHeight, edgeSmoothness float32) float32 {
	h := math32.Max(common.Epsilon, scaleHeight)
	raw := math32.Exp(-altitude / h)
	smoothed := raw * common.Clamp01(1-normAltitude)
	return common.Lerp(raw, smoothed, edgeSmoothness)
}

// OzoneDensity evaluates the Gaussian ozone absorption band.
//
// Parameters:
//   - normAltitude: normalized altitude in [0, 1]
//   - center: normalized altitude of peak density
//   - width: full width of the band, floored so the half-width is at least common.Epsilon
//
// Returns:
//   - float32: relative density, 1 at the band center
func OzoneDensity(normAltitude, center, width float32) float32 {
	x := (normAltitude - center) / math32.Max(common.Epsilon, width*0.5)
	return math32.Exp(-x * x)
}

// Extinction scales a base RGB coefficient by a layer density.
//
// Parameters:
//   - density: relative layer density
//   - coeff: base RGB coefficient
//   - internalScale: the derived internal scale factor of the layer
//   - densityScale: the profile-wide density multiplier
//
// Returns:
//   - [3]float32: per-channel density * coeff * internalScale * densityScale
func Extinction(density float32, coeff [3]float32, internalScale, densityScale float32) [3]float32 {
	k := density * internalScale * densityScale
	return [3]float32{coeff[0] * k, coeff[1] * k, coeff[2] * k}
}

// LayerDensities holds the relative density of each layer at one altitude.
type LayerDensities struct {
	Rayleigh float32
	Mie      float32
	Ozone    float32
}

// Densities evaluates the three layers of s at a normalized altitude.
// Scale heights are expressed in normalized units so altitude and scale height share a unit.
//
// Parameters:
//   - s: the settings to evaluate, must not be nil
//   - normAltitude: normalized altitude in [0, 1]
//
// Returns:
//   - LayerDensities: the Rayleigh, Mie and ozone densities
func Densities(s *Settings, normAltitude float32) LayerDensities {
	return LayerDensities{
		Rayleigh: ExponentialDensity(normAltitude, normAltitude, s.RayleighScaleHeightNorm, s.DensityEdgeSmoothness),
		Mie:      ExponentialDensity(normAltitude, normAltitude, s.MieScaleHeightNorm, s.DensityEdgeSmoothness),
		Ozone:    OzoneDensity(normAltitude, s.OzoneCenterAltitudeNorm, s.OzoneWidth),
	}
}

// TotalExtinction sums the Rayleigh, Mie and ozone extinction of s at a normalized altitude.
//
// Parameters:
//   - s: the settings to evaluate, must not be nil
//   - normAltitude: normalized altitude in [0, 1]
//
// Returns:
//   - [3]float32: total RGB extinction
func TotalExtinction(s *Settings, normAltitude float32) [3]float32 {
	d := Densities(s, normAltitude)
	r := Extinction(d.Rayleigh, s.RayleighScatteringCoeff, s.rayleighScaleFactorInternal, s.DensityScale)
	m := Extinction(d.Mie, s.MieScatteringCoeff, s.mieScaleFactorInternal, s.DensityScale)
	o := Extinction(d.Ozone, s.OzoneAbsorptionCoeff, s.ozoneScaleFactorInternal, s.DensityScale)
	return [3]float32{r[0] + m[0] + o[0], r[1] + m[1] + o[1], r[2] + m[2] + o[2]}
}

// ProfileSample is one altitude sample of a profile.
type ProfileSample struct {
	// Altitude is the normalized altitude of the sample.
	Altitude float32
	// Densities are the per-layer densities, clamped to [0, 1].
	Densities LayerDensities
	// Extinction is the total RGB extinction at this altitude.
	Extinction [3]float32
}

// ProfileCurves is a sampled altitude profile of a settings value.
type ProfileCurves struct {
	Samples []ProfileSample
	// MaxExtinction is the largest extinction component seen, never below common.Epsilon.
	MaxExtinction float32
}

// SampleProfile samples densities and extinction from the surface to the top of the atmosphere.
//
// Parameters:
//   - s: the settings to sample; nil yields empty curves
//   - samples: number of equal altitude steps, DefaultSampleCount when <= 0
//
// Returns:
//   - ProfileCurves: samples+1 points, the first at the surface and the last at the edge
func SampleProfile(s *Settings, samples int) ProfileCurves {
	curves := ProfileCurves{MaxExtinction: common.Epsilon}
	if s == nil {
		return curves
	}
	if samples <= 0 {
		samples = DefaultSampleCount
	}

	curves.Samples = make([]ProfileSample, samples+1)
	for i := range curves.Samples {
		u := float32(i) / float32(samples)
		d := Densities(s, u)
		ext := TotalExtinction(s, u)
		curves.Samples[i] = ProfileSample{
			Altitude: u,
			Densities: LayerDensities{
				Rayleigh: common.Clamp01(d.Rayleigh),
				Mie:      common.Clamp01(d.Mie),
				Ozone:    common.Clamp01(d.Ozone),
			},
			Extinction: ext,
		}
		curves.MaxExtinction = math32.Max(curves.MaxExtinction, math32.Max(ext[0], math32.Max(ext[1], ext[2])))
	}
	return curves
}
