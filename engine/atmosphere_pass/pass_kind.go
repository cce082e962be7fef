// Package atmosphere_pass decides, per frame and per camera, which atmosphere draws are
// submitted and with which parameters.
package atmosphere_pass

// PassKind selects the shading path for an atmosphere draw.
type PassKind int

const (
	// PassExterior shades the atmosphere shell as seen from outside (the "sky" pass).
	// It runs every frame in which at least one instance is active.
	PassExterior PassKind = iota

	// PassInterior shades the scattering volume around a camera embedded in it (the "haze" pass).
	// It runs only when the camera is inside at least one atmosphere.
	PassInterior
)

func (k PassKind) String() string {
	switch k {
	case PassExterior:
		return "exterior"
	case PassInterior:
		return "interior"
	default:
		return "unknown"
	}
}

// ShaderIndex returns the shader variant index the pass kind maps to.
//
// Returns:
//   - int32: 0 for exterior, 1 for interior
func (k PassKind) ShaderIndex() int32 {
	return int32(k)
}
