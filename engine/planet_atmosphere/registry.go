package planet_atmosphere

import (
	"slices"
	"sync"
)

// registryImpl is the implementation of the Registry interface.
type registryImpl struct {
	mu       *sync.Mutex
	order    []Instance
	members  map[Instance]struct{}
	onChange func(active int)
}

// Registry is the insertion-ordered, duplicate-free set of atmosphere instances eligible for
// rendering.
//
// A Registry is an owned object injected into instances and the pass scheduler; independent
// registries never observe each other. All methods are safe for concurrent use: mutations are
// serialized and ActiveInstances returns a snapshot copy.
type Registry interface {
	// Register adds inst if it is not already a member.
	//
	// Parameters:
	//   - inst: the instance to add
	//
	// Returns:
	//   - bool: true if inst was added by this call
	Register(inst Instance) bool

	// Unregister removes inst if it is a member.
	//
	// Parameters:
	//   - inst: the instance to remove
	//
	// Returns:
	//   - bool: true if inst was removed by this call
	Unregister(inst Instance) bool

	// Synchronize makes membership of inst match eligible. Lifecycle transitions use this
	// instead of Register/Unregister so membership never diverges from the eligibility
	// computed in the same step.
	//
	// Parameters:
	//   - inst: the instance to synchronize
	//   - eligible: true if inst is enabled and has valid settings
	Synchronize(inst Instance, eligible bool)

	// ActiveInstances returns the members in insertion order.
	//
	// Returns:
	//   - []Instance: a copy safe to iterate while the registry changes
	ActiveInstances() []Instance

	// Contains reports whether inst is a member.
	//
	// Parameters:
	//   - inst: the instance to look up
	//
	// Returns:
	//   - bool: true if inst is a member
	Contains(inst Instance) bool

	// Len returns the number of members.
	//
	// Returns:
	//   - int: the member count
	Len() int
}

var _ Registry = &registryImpl{}

// NewRegistry creates an empty Registry.
//
// Parameters:
//   - opts: variadic list of RegistryBuilderOption functions
//
// Returns:
//   - Registry: the new registry
func NewRegistry(opts ...RegistryBuilderOption) Registry {
	r := &registryImpl{
		mu:      &sync.Mutex{},
		members: make(map[Instance]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *registryImpl) Register(inst Instance) bool {
	if inst == nil {
		return false
	}
	r.mu.Lock()
	added := r.addLocked(inst)
	n := len(r.order)
	r.mu.Unlock()

	if added {
		r.changed(n)
	}
	return added
}

func (r *registryImpl) Unregister(inst Instance) bool {
	if inst == nil {
		return false
	}
	r.mu.Lock()
	removed := r.removeLocked(inst)
	n := len(r.order)
	r.mu.Unlock()

	if removed {
		r.changed(n)
	}
	return removed
}

func (r *registryImpl) Synchronize(inst Instance, eligible bool) {
	if eligible {
		r.Register(inst)
		return
	}
	r.Unregister(inst)
}

func (r *registryImpl) ActiveInstances() []Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

func (r *registryImpl) Contains(inst Instance) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[inst]
	return ok
}

func (r *registryImpl) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

func (r *registryImpl) addLocked(inst Instance) bool {
	if _, ok := r.members[inst]; ok {
		return false
	}
	r.members[inst] = struct{}{}
	r.order = append(r.order, inst)
	return true
}

func (r *registryImpl) removeLocked(inst Instance) bool {
	if _, ok := r.members[inst]; !ok {
		return false
	}
	delete(r.members, inst)
	r.order = slices.DeleteFunc(r.order, func(existing Instance) bool {
		return existing == inst
	})
	return true
}

func (r *registryImpl) changed(active int) {
	if r.onChange != nil {
		r.onChange(active)
	}
}
