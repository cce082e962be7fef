package atmosphere

import (
	"sync"
)

// profileImpl is the implementation of the Profile interface.
type profileImpl struct {
	mu          *sync.Mutex
	name        string
	settings    *Settings
	version     uint64
	nextSubID   uint64
	subscribers map[uint64]func(Profile)
	order       []uint64
}

// Profile is a named, shareable atmosphere settings asset.
//
// Many planet instances may reference the same Profile at different world scales. A Profile
// owns its Settings pointer and guarantees that every settings value it exposes has been
// validated and has current internal scale factors. Each change bumps Version and notifies
// subscribers synchronously, in subscription order, after the internal lock is released.
//
// A Profile whose Settings is nil is a valid object describing an invalid atmosphere: instances
// referencing it are excluded from rendering.
type Profile interface {
	// Name returns the profile's display name.
	//
	// Returns:
	//   - string: the name given at construction
	Name() string

	// Settings returns the current settings pointer. Callers must treat it as read-only and use
	// Update to mutate it.
	//
	// Returns:
	//   - *Settings: the current settings, or nil if the profile carries no settings
	Settings() *Settings

	// Snapshot returns a copy of the current settings taken under the profile lock. The copy
	// is safe to read while the profile is being updated.
	//
	// Returns:
	//   - *Settings: an independent copy, or nil if the profile carries no settings
	Snapshot() *Settings

	// SetSettings replaces the settings. A non-nil value is validated in place before being stored.
	//
	// Parameters:
	//   - settings: the new settings, or nil to mark the profile invalid
	SetSettings(settings *Settings)

	// Update mutates the current settings under the profile lock, then validates them and notifies
	// subscribers. It is a no-op when the profile carries no settings.
	//
	// Parameters:
	//   - fn: the mutation to apply
	//
	// Returns:
	//   - bool: true if the mutation was applied
	Update(fn func(*Settings)) bool

	// Version returns a counter that increases on every change to the profile.
	//
	// Returns:
	//   - uint64: the current version
	Version() uint64

	// Subscribe registers a callback invoked after every change.
	//
	// Parameters:
	//   - fn: the callback, receiving the changed profile
	//
	// Returns:
	//   - func(): a function that removes the subscription; safe to call more than once
	Subscribe(fn func(Profile)) func()
}

var _ Profile = &profileImpl{}

// NewProfile creates a Profile with DefaultSettings and applies any provided options.
//
// Parameters:
//   - opts: variadic list of ProfileBuilderOption functions to configure the profile
//
// Returns:
//   - Profile: the new profile
func NewProfile(opts ...ProfileBuilderOption) Profile {
	p := &profileImpl{
		mu:          &sync.Mutex{},
		name:        "Atmosphere",
		settings:    DefaultSettings(),
		subscribers: make(map[uint64]func(Profile)),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.settings != nil {
		p.settings.Validate()
	}
	return p
}

func (p *profileImpl) Name() string {
	return p.name
}

func (p *profileImpl) Settings() *Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

func (p *profileImpl) Snapshot() *Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings.Clone()
}

func (p *profileImpl) SetSettings(settings *Settings) {
	if settings != nil {
		settings.Validate()
	}

	p.mu.Lock()
	p.settings = settings
	p.version++
	subs := p.snapshotSubscribers()
	p.mu.Unlock()

	p.notify(subs)
}

func (p *profileImpl) Update(fn func(*Settings)) bool {
	p.mu.Lock()
	if p.settings == nil {
		p.mu.Unlock()
		return false
	}
	fn(p.settings)
	p.settings.Validate()
	p.version++
	subs := p.snapshotSubscribers()
	p.mu.Unlock()

	p.notify(subs)
	return true
}

func (p *profileImpl) Version() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

func (p *profileImpl) Subscribe(fn func(Profile)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextSubID++
	id := p.nextSubID
	p.subscribers[id] = fn
	p.order = append(p.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subscribers, id)
			for i, existing := range p.order {
				if existing == id {
					p.order = append(p.order[:i], p.order[i+1:]...)
					break
				}
			}
		})
	}
}

// snapshotSubscribers must be called with p.mu held.
func (p *profileImpl) snapshotSubscribers() []func(Profile) {
	subs := make([]func(Profile), 0, len(p.order))
	for _, id := range p.order {
		subs = append(subs, p.subscribers[id])
	}
	return subs
}

func (p *profileImpl) notify(subs []func(Profile)) {
	for _, fn := range subs {
		fn(p)
	}
}
