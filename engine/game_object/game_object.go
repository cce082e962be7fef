package game_object

import (
	"sync"
	"sync/atomic"
)

type gameObject struct {
	mu            *sync.Mutex
	id            uint64
	name          string
	enabled       atomic.Bool
	position      [3]float32
	rotation      [3]float32
	rotationSpeed [3]float32
	scale         [3]float32

	nextListenerID uint64
	listeners      map[uint64]func(GameObject)
	listenerOrder  []uint64
}

// GameObject defines the interface for a scene entity carrying a world transform.
//
// A GameObject is the transform provider for planet atmospheres: it exposes world position,
// Euler rotation and lossy (possibly non-uniform) world scale, and notifies listeners
// synchronously whenever any of them changes. Listeners are invoked after the object's lock
// is released so they may read the transform back.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's display name.
	//
	// Returns:
	//   - string: the name, empty if unset
	Name() string

	// Enabled returns whether this object is enabled.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Position returns the world-space position.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Rotation returns the Euler rotation in radians around X, Y and Z.
	//
	// Returns:
	//   - [3]float32: rotation as (rx, ry, rz)
	Rotation() [3]float32

	// RotationSpeed returns the angular velocity applied by Advance, in radians per second.
	//
	// Returns:
	//   - [3]float32: angular velocity as (rx, ry, rz)
	RotationSpeed() [3]float32

	// LossyScale returns the world scale of the object. Components may differ and may be negative.
	//
	// Returns:
	//   - [3]float32: scale as (sx, sy, sz)
	LossyScale() [3]float32

	// SetEnabled enables or disables the object. Listeners are not notified.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetPosition sets the world-space position and notifies listeners.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetRotation sets the Euler rotation in radians and notifies listeners.
	//
	// Parameters:
	//   - rx, ry, rz: rotation angles
	SetRotation(rx, ry, rz float32)

	// SetRotationSpeed sets the angular velocity used by Advance.
	//
	// Parameters:
	//   - rx, ry, rz: angular velocity components in radians per second
	SetRotationSpeed(rx, ry, rz float32)

	// SetScale sets the world scale and notifies listeners.
	//
	// Parameters:
	//   - sx, sy, sz: scale components
	SetScale(sx, sy, sz float32)

	// Advance integrates the rotation speed over dt seconds. Listeners are notified only when the
	// rotation actually changes.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Advance(dt float32)

	// OnTransformChanged registers a listener invoked after every transform change.
	//
	// Parameters:
	//   - fn: the listener
	//
	// Returns:
	//   - func(): removes the listener; safe to call more than once
	OnTransformChanged(fn func(GameObject)) func()
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject with unit scale, enabled, and applies the given options.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:        &sync.Mutex{},
		scale:     [3]float32{1, 1, 1},
		listeners: make(map[uint64]func(GameObject)),
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Position() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func (g *gameObject) Rotation() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation
}

func (g *gameObject) RotationSpeed() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotationSpeed
}

func (g *gameObject) LossyScale() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mutate(func() { g.position = [3]float32{x, y, z} })
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.mutate(func() { g.rotation = [3]float32{rx, ry, rz} })
}

func (g *gameObject) SetRotationSpeed(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotationSpeed = [3]float32{rx, ry, rz}
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mutate(func() { g.scale = [3]float32{sx, sy, sz} })
}

func (g *gameObject) Advance(dt float32) {
	g.mu.Lock()
	speed := g.rotationSpeed
	g.mu.Unlock()
	if speed == ([3]float32{}) || dt == 0 {
		return
	}
	g.mutate(func() {
		g.rotation[0] += speed[0] * dt
		g.rotation[1] += speed[1] * dt
		g.rotation[2] += speed[2] * dt
	})
}

func (g *gameObject) OnTransformChanged(fn func(GameObject)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextListenerID++
	id := g.nextListenerID
	g.listeners[id] = fn
	g.listenerOrder = append(g.listenerOrder, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			delete(g.listeners, id)
			for i, existing := range g.listenerOrder {
				if existing == id {
					g.listenerOrder = append(g.listenerOrder[:i], g.listenerOrder[i+1:]...)
					break
				}
			}
		})
	}
}

// mutate applies fn under the lock, then notifies listeners outside of it.
func (g *gameObject) mutate(fn func()) {
	g.mu.Lock()
	fn()
	listeners := make([]func(GameObject), 0, len(g.listenerOrder))
	for _, id := range g.listenerOrder {
		listeners = append(listeners, g.listeners[id])
	}
	g.mu.Unlock()

	for _, l := range listeners {
		l(g)
	}
}
