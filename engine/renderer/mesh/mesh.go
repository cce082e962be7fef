package mesh

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-atmosphere/common"
	"github.com/chewxy/math32"
)

// VertexStride is the byte size of one packed vertex (position only, vec3<f32>).
const VertexStride = 12

var ErrTooFewSegments = errors.New("sphere needs at least 3 segments and 2 rings")

// Mesh is an indexed triangle list with counter-clockwise outward-facing winding.
type Mesh struct {
	Positions [][3]float32
	Indices   []uint32
}

// NewUVSphere builds a latitude/longitude sphere centred on the origin.
// The atmosphere proxy uses radius 0.5 so a uniform scale equal to the visual diameter
// places its surface at the visual radius.
//
// Parameters:
//   - radius: sphere radius in object space
//   - segments: number of longitudinal slices (>= 3)
//   - rings: number of latitudinal bands (>= 2)
//
// Returns:
//   - Mesh: the sphere geometry
//   - error: ErrTooFewSegments if the tessellation is degenerate
func NewUVSphere(radius float32, segments, rings int) (Mesh, error) {
	if segments < 3 || rings < 2 {
		return Mesh{}, ErrTooFewSegments
	}

	m := Mesh{
		Positions: make([][3]float32, 0, (segments+1)*(rings+1)),
		Indices:   make([]uint32, 0, segments*rings*6),
	}
	for r := 0; r <= rings; r++ {
		// polar angle runs from the north pole (+Y) down to the south pole
		theta := float32(r) * math32.Pi / float32(rings)
		sinT, cosT := math32.Sincos(theta)
		for s := 0; s <= segments; s++ {
			phi := float32(s) * 2 * math32.Pi / float32(segments)
			sinP, cosP := math32.Sincos(phi)
			m.Positions = append(m.Positions, [3]float32{
				radius * sinT * sinP,
				radius * cosT,
				radius * sinT * cosP,
			})
		}
	}

	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			if r != 0 {
				m.Indices = append(m.Indices, a, b, a+1)
			}
			if r != rings-1 {
				m.Indices = append(m.Indices, a+1, b, b+1)
			}
		}
	}
	return m, nil
}

// IndexCount returns the number of indices in the mesh.
func (m Mesh) IndexCount() int {
	return len(m.Indices)
}

// VertexBytes returns the positions as a byte view for GPU upload. The view shares memory with m.
func (m Mesh) VertexBytes() []byte {
	return common.SliceToBytes(m.Positions)
}

// IndexBytes returns the indices as a byte view for GPU upload. The view shares memory with m.
func (m Mesh) IndexBytes() []byte {
	return common.SliceToBytes(m.Indices)
}
