package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-atmosphere/common"
	"github.com/chewxy/math32"
)

// RenderType classifies how a camera contributes to a frame.
// Only Base and Overlay cameras receive atmosphere draws.
type RenderType int

const (
	RenderTypeBase RenderType = iota
	RenderTypeOverlay
	RenderTypeOffscreen
)

func (r RenderType) String() string {
	switch r {
	case RenderTypeBase:
		return "base"
	case RenderTypeOverlay:
		return "overlay"
	case RenderTypeOffscreen:
		return "offscreen"
	default:
		return "unknown"
	}
}

type cameraImpl struct {
	mu *sync.Mutex

	name       string
	renderType RenderType
	preview    bool

	position [3]float32
	target   [3]float32
	up       [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32

	controller OrbitController
}

// Camera holds perspective settings and computes view/projection matrices.
// When an OrbitController is attached, Update() pulls the position and target from it.
type Camera interface {
	// Name returns the camera's label.
	//
	// Returns:
	//   - string: the camera name
	Name() string

	// RenderType returns how this camera contributes to a frame.
	//
	// Returns:
	//   - RenderType: base, overlay or offscreen
	RenderType() RenderType

	// Preview reports whether this camera renders an editor or asset preview.
	//
	// Returns:
	//   - bool: true for preview cameras
	Preview() bool

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - [3]float32: world-space position
	Position() [3]float32

	// Target returns the world-space look-at point.
	//
	// Returns:
	//   - [3]float32: look-at point
	Target() [3]float32

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// ViewMatrix returns the current 4x4 view matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the combined view-projection matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the combined matrix
	ViewProjectionMatrix() [16]float32

	// Controller returns the attached OrbitController, or nil.
	//
	// Returns:
	//   - OrbitController: the attached controller or nil
	Controller() OrbitController

	// Update reads position and target from the controller and recomputes matrices.
	// Does nothing if no controller is attached.
	Update()

	// SetPosition places the camera directly and recomputes matrices.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// SetTarget sets the look-at point and recomputes matrices.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetTarget(x, y, z float32)

	// SetAspect sets the aspect ratio and recomputes matrices.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetFov sets the vertical field of view in radians and recomputes matrices.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// Uniform packs the camera state for GPU upload.
	//
	// Returns:
	//   - GPUCameraUniform: view-projection matrix and position
	Uniform() GPUCameraUniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates a base camera at (0, 0, 5) looking at the origin.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		name:     "Main Camera",
		position: [3]float32{0, 0, 5},
		up:       [3]float32{0, 1, 0},
		fov:      math32.Pi / 3,
		aspect:   16.0 / 9.0,
		near:     0.01,
		far:      1000,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller != nil {
		c.position = c.controller.Position()
		c.target = c.controller.Target()
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Name() string {
	return c.name
}

func (c *cameraImpl) RenderType() RenderType {
	return c.renderType
}

func (c *cameraImpl) Preview() bool {
	return c.preview
}

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Controller() OrbitController {
	return c.controller
}

func (c *cameraImpl) Update() {
	if c.controller == nil {
		return
	}
	pos, target := c.controller.Position(), c.controller.Target()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = pos
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewProj:       c.viewProjectionMatrix,
		CameraPosition: c.position,
	}
}

// updateMatrices must be called with c.mu held (or before the camera is shared).
func (c *cameraImpl) updateMatrices() {
	common.LookAt(c.viewMatrix[:], c.position, c.target, c.up)
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
