package planet_atmosphere

// RegistryBuilderOption is a function that configures a Registry during construction.
type RegistryBuilderOption func(*registryImpl)

// WithOnChange is an option builder that sets a callback invoked with the new member count
// after every membership change. The callback runs outside the registry lock and may read
// registered instances, but must not enable, disable or re-profile them.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - RegistryBuilderOption: a function that applies the callback to a registryImpl
func WithOnChange(fn func(active int)) RegistryBuilderOption {
	return func(r *registryImpl) {
		r.onChange = fn
	}
}
