package atmosphere_pass

import "errors"

const (
	// MeshName is the asset name of the proxy sphere mesh.
	MeshName = "AtmosphereMesh"

	// ShaderName is the asset name of the atmosphere shader.
	ShaderName = "Hidden/Atmosphere"
)

var (
	ErrMeshUnavailable   = errors.New("atmosphere mesh unavailable")
	ErrShaderUnavailable = errors.New("atmosphere shader unavailable")
)

// ResourceStatus reports whether the scheduler has the mesh and shader it draws with.
type ResourceStatus int

const (
	ResourcesNotLoaded ResourceStatus = iota
	ResourcesReady
	ResourcesMeshMissing
	ResourcesShaderMissing
)

func (s ResourceStatus) String() string {
	switch s {
	case ResourcesNotLoaded:
		return "not loaded"
	case ResourcesReady:
		return "ready"
	case ResourcesMeshMissing:
		return "mesh missing"
	case ResourcesShaderMissing:
		return "shader missing"
	default:
		return "unknown"
	}
}

// AssetSource resolves named assets to backend handles.
type AssetSource interface {
	// Mesh looks up a mesh by name.
	//
	// Parameters:
	//   - name: the asset name
	//
	// Returns:
	//   - MeshHandle: the backend handle
	//   - bool: false if no such mesh exists
	Mesh(name string) (MeshHandle, bool)

	// Shader looks up a shader by name.
	//
	// Parameters:
	//   - name: the asset name
	//
	// Returns:
	//   - ShaderHandle: the backend handle
	//   - bool: false if no such shader exists
	Shader(name string) (ShaderHandle, bool)
}

// AssetMap is an in-memory AssetSource.
type AssetMap struct {
	Meshes  map[string]MeshHandle
	Shaders map[string]ShaderHandle
}

var _ AssetSource = AssetMap{}

func (a AssetMap) Mesh(name string) (MeshHandle, bool) {
	h, ok := a.Meshes[name]
	return h, ok
}

func (a AssetMap) Shader(name string) (ShaderHandle, bool) {
	h, ok := a.Shaders[name]
	return h, ok
}

// resources is the resolved mesh and shader pair a scheduler draws with.
type resources struct {
	status ResourceStatus
	mesh   MeshHandle
	shader ShaderHandle
}

func resolveResources(assets AssetSource) (resources, error) {
	if assets == nil {
		return resources{status: ResourcesMeshMissing}, ErrMeshUnavailable
	}
	mesh, ok := assets.Mesh(MeshName)
	if !ok {
		return resources{status: ResourcesMeshMissing}, ErrMeshUnavailable
	}
	shader, ok := assets.Shader(ShaderName)
	if !ok {
		return resources{status: ResourcesShaderMissing}, ErrShaderUnavailable
	}
	return resources{status: ResourcesReady, mesh: mesh, shader: shader}, nil
}
