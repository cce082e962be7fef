package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-atmosphere/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCamera_Defaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, RenderTypeBase, c.RenderType())
	assert.False(t, c.Preview())
	assert.Equal(t, [3]float32{0, 0, 5}, c.Position())
	assert.Nil(t, c.Controller())

	view := c.ViewMatrix()
	// looking down -Z from +5: the origin lands 5 units in front of the eye
	assert.InDelta(t, -5, view[14], 1e-5)
}

func TestCamera_ViewProjectionIsProjectionTimesView(t *testing.T) {
	c := NewCamera(WithPosition(1, 2, 3), WithLookAt(0, 0, 0), WithAspect(2))
	view, proj := c.ViewMatrix(), c.ProjectionMatrix()

	var want [16]float32
	common.Mul4(want[:], proj[:], view[:])
	got := c.ViewProjectionMatrix()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5)
	}
}

func TestCamera_UpdateFollowsController(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(10), WithElevation(0))
	c := NewCamera(WithController(ctrl))
	assert.InDelta(t, 10, c.Position()[2], 1e-4)

	ctrl.SetRadius(2)
	assert.InDelta(t, 10, c.Position()[2], 1e-4, "position only moves on Update")

	c.Update()
	assert.InDelta(t, 2, c.Position()[2], 1e-4)
}

func TestCamera_UpdateWithoutControllerIsNoop(t *testing.T) {
	c := NewCamera(WithPosition(0, 1, 0))
	c.Update()
	assert.Equal(t, [3]float32{0, 1, 0}, c.Position())
}

func TestCamera_SetAspectIgnoresNonPositive(t *testing.T) {
	c := NewCamera(WithAspect(1.5))
	c.SetAspect(0)
	assert.Equal(t, float32(1.5), c.Aspect())
	c.SetAspect(2)
	assert.Equal(t, float32(2), c.Aspect())
}

func TestCamera_BuilderFlags(t *testing.T) {
	c := NewCamera(WithName("preview"), WithRenderType(RenderTypeOverlay), WithPreview(true))
	assert.Equal(t, "preview", c.Name())
	assert.Equal(t, RenderTypeOverlay, c.RenderType())
	assert.True(t, c.Preview())
	assert.Equal(t, "overlay", c.RenderType().String())
	assert.Equal(t, "offscreen", RenderTypeOffscreen.String())
}

func TestOrbitController_ZoomStaysInBounds(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(2), WithRadiusBounds(0.5, 4), WithZoomSpeed(0.5))
	for range 20 {
		ctrl.Zoom(1)
	}
	assert.Equal(t, float32(0.5), ctrl.Radius())

	for range 20 {
		ctrl.Zoom(-1)
	}
	assert.Equal(t, float32(4), ctrl.Radius())
}

func TestOrbitController_PositionIsRadiusFromTarget(t *testing.T) {
	ctrl := NewOrbitController(WithTarget(1, 1, 1), WithRadius(3), WithAzimuth(0.7), WithElevation(0.3))
	ctrl.OrbitLeft()
	ctrl.OrbitUp()

	d := common.Sub3(ctrl.Position(), ctrl.Target())
	assert.InDelta(t, 3, math32.Sqrt(common.LengthSq3(d)), 1e-4)
}

func TestOrbitController_ElevationClamped(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(1), WithOrbitSpeed(0.5))
	for range 10 {
		ctrl.OrbitUp()
	}
	assert.Less(t, ctrl.Position()[1], float32(1))
	assert.Greater(t, ctrl.Position()[1], float32(0.99))

	for range 20 {
		ctrl.OrbitDown()
	}
	assert.Greater(t, ctrl.Position()[1], float32(-1))
}

func TestGPUCameraUniform_Marshal(t *testing.T) {
	u := GPUCameraUniform{CameraPosition: [3]float32{1, 2, 3}}
	u.ViewProj[0] = 4

	buf := u.Marshal()
	require.Len(t, buf, 80)
	assert.Equal(t, float32(4), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(buf[68:])))
}
