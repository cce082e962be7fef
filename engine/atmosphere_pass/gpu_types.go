package atmosphere_pass

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUAtmosphereUniform is the per-draw uniform block of the atmosphere shader.
// Matches the WGSL AtmosphereUniform struct layout exactly (192 bytes).
type GPUAtmosphereUniform struct {
	Model [16]float32 // offset   0: proxy sphere model matrix

	PlanetPosition [3]float32 // offset  64
	PlanetRadius   float32    // offset  76

	RayleighCoeff    [3]float32 // offset  80
	AtmosphereRadius float32    // offset  92

	MieCoeff            [3]float32 // offset  96
	RayleighScaleHeight float32    // offset 108

	OzoneCoeff     [3]float32 // offset 112
	MieScaleHeight float32    // offset 124

	SunDirection [3]float32 // offset 128
	DensityScale float32    // offset 140

	Tint [3]float32 // offset 144
	MieG float32    // offset 156

	OzoneCenter      float32 // offset 160
	OzoneWidth       float32 // offset 164
	SunIntensity     float32 // offset 168
	AmbientIntensity float32 // offset 172

	EdgeSmoothness float32 // offset 176
	PassIndex      uint32  // offset 180
	_pad           [2]uint32
}

// NewGPUAtmosphereUniform packs a draw command for upload.
//
// Parameters:
//   - cmd: the draw command
//
// Returns:
//   - GPUAtmosphereUniform: the packed uniform
func NewGPUAtmosphereUniform(cmd DrawCommand) GPUAtmosphereUniform {
	p := cmd.Params
	return GPUAtmosphereUniform{
		Model:               cmd.Transform,
		PlanetPosition:      p.Position,
		PlanetRadius:        p.PlanetRadius,
		RayleighCoeff:       p.RayleighScatteringCoeff,
		AtmosphereRadius:    p.AtmosphereRadius,
		MieCoeff:            p.MieScatteringCoeff,
		RayleighScaleHeight: p.RayleighScaleHeight,
		OzoneCoeff:          p.OzoneAbsorptionCoeff,
		MieScaleHeight:      p.MieScaleHeight,
		SunDirection:        p.SunDirection,
		DensityScale:        p.DensityScale,
		Tint:                p.AtmosphereTint,
		MieG:                p.MieG,
		OzoneCenter:         p.OzoneCenterAltitudeNorm,
		OzoneWidth:          p.OzoneWidth,
		SunIntensity:        p.SunIntensity,
		AmbientIntensity:    p.AmbientIntensity,
		EdgeSmoothness:      p.DensityEdgeSmoothness,
		PassIndex:           uint32(cmd.Pass.ShaderIndex()),
	}
}

// Size returns the size of the GPUAtmosphereUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (192)
func (g *GPUAtmosphereUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into a little-endian byte buffer for GPU upload.
//
// Returns:
//   - []byte: 192-byte buffer ready for GPU upload
func (g *GPUAtmosphereUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := 0
	putF := func(v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	put3 := func(v [3]float32) {
		putF(v[0])
		putF(v[1])
		putF(v[2])
	}

	for _, v := range g.Model {
		putF(v)
	}
	put3(g.PlanetPosition)
	putF(g.PlanetRadius)
	put3(g.RayleighCoeff)
	putF(g.AtmosphereRadius)
	put3(g.MieCoeff)
	putF(g.RayleighScaleHeight)
	put3(g.OzoneCoeff)
	putF(g.MieScaleHeight)
	put3(g.SunDirection)
	putF(g.DensityScale)
	put3(g.Tint)
	putF(g.MieG)
	putF(g.OzoneCenter)
	putF(g.OzoneWidth)
	putF(g.SunIntensity)
	putF(g.AmbientIntensity)
	putF(g.EdgeSmoothness)
	binary.LittleEndian.PutUint32(buf[off:], g.PassIndex)
	return buf
}
