package planet_atmosphere

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/game_object"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
)

var nextInstanceID atomic.Uint64

// instanceImpl is the implementation of the Instance interface.
type instanceImpl struct {
	mu            *sync.Mutex
	// syncMu orders registry updates across lifecycle steps; it is taken before mu and
	// held while the registry is synchronized, after mu is released.
	syncMu        *sync.Mutex
	id            uint64
	name          string
	enabled       bool
	profile       atmosphere.Profile
	transform     game_object.GameObject
	registry      Registry
	resolver      ScaleResolver
	log           logging.Logger
	visualPadding float32

	scale          ScaleState
	profileVersion uint64
	invalid        bool

	unsubProfile   func()
	unsubTransform func()
}

// Snapshot is a consistent, read-only view of an instance taken under its lock.
type Snapshot struct {
	ID       uint64
	Name     string
	Position [3]float32
	Rotation [3]float32
	// Settings is an independent copy of the profile settings, nil when the instance is invalid.
	Settings *atmosphere.Settings
	// PlanetRadius and AtmosphereRadius are world-space; both are 0 when Settings is nil.
	PlanetRadius     float32
	AtmosphereRadius float32
	// VisualRadius is the world-space radius of the proxy geometry, padding included.
	VisualRadius float32
}

// Instance is one planet's runtime atmosphere: a shared Profile applied at the world scale
// of a GameObject.
//
// An instance keeps its world-space radii in sync with its transform and profile through
// change notification while enabled, and keeps its Registry membership equal to
// Enabled() && profile != nil && profile settings != nil after every lifecycle step.
type Instance interface {
	// ID returns the instance's unique identifier.
	//
	// Returns:
	//   - uint64: the instance ID
	ID() uint64

	// Name returns the instance's display name.
	//
	// Returns:
	//   - string: the name, empty if unset
	Name() string

	// Enabled returns whether the instance is enabled.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Profile returns the referenced profile.
	//
	// Returns:
	//   - atmosphere.Profile: the shared profile, or nil
	Profile() atmosphere.Profile

	// GameObject returns the transform provider of the instance.
	//
	// Returns:
	//   - game_object.GameObject: the transform provider
	GameObject() game_object.GameObject

	// ScaledPlanetRadius returns the cached world-space planet radius.
	//
	// Returns:
	//   - float32: the radius, 0 when invalid or disabled
	ScaledPlanetRadius() float32

	// ScaledAtmosphereRadius returns the cached world-space atmosphere radius.
	//
	// Returns:
	//   - float32: the radius, never below ScaledPlanetRadius, 0 when invalid or disabled
	ScaledAtmosphereRadius() float32

	// VisualPadding returns the extra unscaled radius added to the proxy geometry.
	//
	// Returns:
	//   - float32: the padding
	VisualPadding() float32

	// SetVisualPadding sets the extra unscaled radius added to the proxy geometry.
	//
	// Parameters:
	//   - padding: the padding, may be negative
	SetVisualPadding(padding float32)

	// Enable activates the instance: subscribes to profile and transform changes, forces a
	// resolve and synchronizes registry membership.
	Enable()

	// Disable deactivates the instance: removes it from the registry, drops subscriptions and
	// clears derived state.
	Disable()

	// SetProfile swaps the referenced profile, re-resolves and synchronizes registry membership.
	//
	// Parameters:
	//   - profile: the new profile, or nil
	SetProfile(profile atmosphere.Profile)

	// ResolveAndValidate forces recomputation of the scaled radii and synchronizes registry
	// membership in the same step.
	//
	// Returns:
	//   - bool: true if the instance is enabled and has valid settings
	ResolveAndValidate() bool

	// Snapshot resolves if the profile changed since the last resolve and returns a
	// consistent view for scheduling.
	//
	// Returns:
	//   - Snapshot: the current state
	Snapshot() Snapshot
}

var _ Instance = &instanceImpl{}

// NewInstance creates a disabled Instance bound to a registry. Call Enable to activate it.
// A GameObject at the origin with unit scale is used when none is provided.
//
// Parameters:
//   - registry: the registry the instance keeps its membership in, must not be nil
//   - opts: variadic list of InstanceBuilderOption functions
//
// Returns:
//   - Instance: the new instance
func NewInstance(registry Registry, opts ...InstanceBuilderOption) Instance {
	if registry == nil {
		panic("planet_atmosphere: NewInstance requires a registry")
	}

	i := &instanceImpl{
		mu:       &sync.Mutex{},
		syncMu:   &sync.Mutex{},
		registry: registry,
		log:      logging.Noop(),
	}
	for _, opt := range opts {
		opt(i)
	}

	if i.id == 0 {
		i.id = nextInstanceID.Add(1)
	}
	if i.transform == nil {
		i.transform = game_object.NewGameObject(game_object.WithID(i.id), game_object.WithName(i.name))
	}
	if i.resolver == nil {
		i.resolver = NewScaleResolver()
	}
	i.log = i.log.With(logging.Uint64("instance_id", i.id), logging.String("instance", i.name))
	return i
}

func (i *instanceImpl) ID() uint64 {
	return i.id
}

func (i *instanceImpl) Name() string {
	return i.name
}

func (i *instanceImpl) Enabled() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.enabled
}

func (i *instanceImpl) Profile() atmosphere.Profile {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.profile
}

func (i *instanceImpl) GameObject() game_object.GameObject {
	return i.transform
}

func (i *instanceImpl) ScaledPlanetRadius() float32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.scale.PlanetRadius
}

func (i *instanceImpl) ScaledAtmosphereRadius() float32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.scale.AtmosphereRadius
}

func (i *instanceImpl) VisualPadding() float32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.visualPadding
}

func (i *instanceImpl) SetVisualPadding(padding float32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.visualPadding = padding
}

func (i *instanceImpl) Enable() {
	i.syncMu.Lock()
	defer i.syncMu.Unlock()

	i.mu.Lock()
	i.enabled = true
	i.subscribeLocked()
	i.scale.Invalidate()
	i.resolveLocked(true)
	eligible := i.eligibleLocked()
	i.mu.Unlock()

	i.registry.Synchronize(i, eligible)
}

func (i *instanceImpl) Disable() {
	i.syncMu.Lock()
	defer i.syncMu.Unlock()

	i.mu.Lock()
	i.enabled = false
	i.unsubscribeLocked()
	i.scale.Reset()
	i.profileVersion = 0
	i.mu.Unlock()

	i.registry.Synchronize(i, false)
}

func (i *instanceImpl) SetProfile(profile atmosphere.Profile) {
	i.syncMu.Lock()
	defer i.syncMu.Unlock()

	i.mu.Lock()
	if i.enabled && i.unsubProfile != nil {
		i.unsubProfile()
		i.unsubProfile = nil
	}
	i.profile = profile
	if i.enabled {
		i.subscribeLocked()
		i.resolveLocked(true)
	} else {
		i.scale.Reset()
	}
	eligible := i.eligibleLocked()
	i.mu.Unlock()

	i.registry.Synchronize(i, eligible)
}

func (i *instanceImpl) ResolveAndValidate() bool {
	i.syncMu.Lock()
	defer i.syncMu.Unlock()

	i.mu.Lock()
	if i.enabled {
		i.scale.Invalidate()
		i.resolveLocked(true)
	}
	eligible := i.eligibleLocked()
	i.mu.Unlock()

	i.registry.Synchronize(i, eligible)
	return eligible
}

func (i *instanceImpl) Snapshot() Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()

	snap := Snapshot{
		ID:       i.id,
		Name:     i.name,
		Position: i.transform.Position(),
		Rotation: i.transform.Rotation(),
	}
	if !i.enabled || i.profile == nil {
		return snap
	}

	settings := i.resolveLocked(i.profile.Version() != i.profileVersion)
	if settings == nil {
		return snap
	}

	snap.Settings = settings
	snap.PlanetRadius = i.scale.PlanetRadius
	snap.AtmosphereRadius = i.scale.AtmosphereRadius
	snap.VisualRadius = i.resolver.VisualRadius(i.transform.LossyScale(), settings, i.visualPadding)
	return snap
}

func (i *instanceImpl) onProfileChanged(atmosphere.Profile) {
	i.syncMu.Lock()
	defer i.syncMu.Unlock()

	i.mu.Lock()
	if !i.enabled {
		i.mu.Unlock()
		return
	}
	i.resolveLocked(true)
	eligible := i.eligibleLocked()
	i.mu.Unlock()

	i.registry.Synchronize(i, eligible)
}

func (i *instanceImpl) onTransformChanged(game_object.GameObject) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.enabled {
		return
	}
	i.resolveLocked(false)
}

// resolveLocked must be called with i.mu held. It returns the settings copy it resolved against.
func (i *instanceImpl) resolveLocked(settingsChanged bool) *atmosphere.Settings {
	var settings *atmosphere.Settings
	if i.profile != nil {
		i.profileVersion = i.profile.Version()
		settings = i.profile.Snapshot()
	}

	invalid := i.profile != nil && settings == nil
	if invalid && !i.invalid {
		i.log.Error(context.Background(), "atmosphere profile has no settings; instance excluded from rendering",
			logging.String("profile", i.profile.Name()))
	}
	i.invalid = invalid

	i.resolver.Resolve(&i.scale, i.transform.LossyScale(), settings, settingsChanged)
	return settings
}

// eligibleLocked must be called with i.mu held. The result is applied to the registry once
// i.mu is released.
func (i *instanceImpl) eligibleLocked() bool {
	return i.enabled && i.profile != nil && i.profile.Settings() != nil
}

// subscribeLocked must be called with i.mu held.
func (i *instanceImpl) subscribeLocked() {
	if i.profile != nil && i.unsubProfile == nil {
		i.unsubProfile = i.profile.Subscribe(i.onProfileChanged)
	}
	if i.unsubTransform == nil {
		i.unsubTransform = i.transform.OnTransformChanged(i.onTransformChanged)
	}
}

// unsubscribeLocked must be called with i.mu held.
func (i *instanceImpl) unsubscribeLocked() {
	if i.unsubProfile != nil {
		i.unsubProfile()
		i.unsubProfile = nil
	}
	if i.unsubTransform != nil {
		i.unsubTransform()
		i.unsubTransform = nil
	}
}
