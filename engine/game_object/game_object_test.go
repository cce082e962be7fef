package game_object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGameObject_Defaults(t *testing.T) {
	obj := NewGameObject(WithID(7), WithName("terra"))
	assert.Equal(t, uint64(7), obj.ID())
	assert.Equal(t, "terra", obj.Name())
	assert.True(t, obj.Enabled())
	assert.Equal(t, [3]float32{1, 1, 1}, obj.LossyScale())
	assert.Equal(t, [3]float32{}, obj.Position())
}

func TestGameObject_NotifiesOnTransformChange(t *testing.T) {
	obj := NewGameObject()

	var scales [][3]float32
	unsubscribe := obj.OnTransformChanged(func(changed GameObject) {
		scales = append(scales, changed.LossyScale())
	})

	obj.SetScale(2, 2, 2)
	obj.SetPosition(1, 0, 0)
	assert.Equal(t, [][3]float32{{2, 2, 2}, {2, 2, 2}}, scales)

	obj.SetEnabled(false)
	obj.SetRotationSpeed(0, 1, 0)
	assert.Len(t, scales, 2)

	unsubscribe()
	unsubscribe()
	obj.SetScale(3, 3, 3)
	assert.Len(t, scales, 2)
}

func TestGameObject_Advance(t *testing.T) {
	obj := NewGameObject(WithRotationSpeed(0, 2, 0))

	calls := 0
	obj.OnTransformChanged(func(GameObject) { calls++ })

	obj.Advance(0.5)
	assert.Equal(t, [3]float32{0, 1, 0}, obj.Rotation())
	assert.Equal(t, 1, calls)

	still := NewGameObject()
	still.OnTransformChanged(func(GameObject) { calls++ })
	still.Advance(1)
	assert.Equal(t, 1, calls)
}
