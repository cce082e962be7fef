package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLight_Defaults(t *testing.T) {
	l := NewLight(LightTypeDirectional)
	assert.Equal(t, [3]float32{0, -1, 0}, l.Direction())
	assert.True(t, l.Enabled())
	assert.Equal(t, float32(1), l.Intensity())
	assert.Equal(t, "directional", l.Type().String())
}

func TestLight_DirectionIsNormalized(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithDirection(0, 0, -4))
	assert.Equal(t, [3]float32{0, 0, -1}, l.Direction())

	l.SetDirection(3, 0, 4)
	assert.InDelta(t, 0.6, l.Direction()[0], 1e-6)
	assert.InDelta(t, 0.8, l.Direction()[2], 1e-6)
}

func TestPrincipal(t *testing.T) {
	point := NewLight(LightTypePoint, WithPosition(1, 2, 3))
	disabledSun := NewLight(LightTypeDirectional, WithEnabled(false))
	sun := NewLight(LightTypeDirectional, WithDirection(1, 0, 0))
	moon := NewLight(LightTypeDirectional, WithDirection(-1, 0, 0))

	got, ok := Principal([]Light{point, nil, disabledSun, sun, moon})
	require.True(t, ok)
	assert.Same(t, sun, got)

	_, ok = Principal([]Light{point, disabledSun})
	assert.False(t, ok)

	_, ok = Principal(nil)
	assert.False(t, ok)
}

func TestLight_Setters(t *testing.T) {
	l := NewLight(LightTypePoint)
	l.SetPosition(1, 2, 3)
	l.SetColor(0.5, 0.5, 0)
	l.SetIntensity(3)
	l.SetEnabled(false)

	assert.Equal(t, [3]float32{1, 2, 3}, l.Position())
	assert.Equal(t, [3]float32{0.5, 0.5, 0}, l.Color())
	assert.Equal(t, float32(3), l.Intensity())
	assert.False(t, l.Enabled())
}
