package atmosphere

// ProfileBuilderOption is a function that configures a Profile during construction.
type ProfileBuilderOption func(*profileImpl)

// WithName is an option builder that sets the display name of the profile.
//
// Parameters:
//   - name: the profile name
//
// Returns:
//   - ProfileBuilderOption: a function that applies the name option to a profileImpl
func WithName(name string) ProfileBuilderOption {
	return func(p *profileImpl) {
		p.name = name
	}
}

// WithSettings is an option builder that sets the initial settings of the profile.
// Passing nil creates a profile that carries no settings, which instances treat as invalid.
// The settings are validated once all options have been applied.
//
// Parameters:
//   - settings: the initial settings, or nil
//
// Returns:
//   - ProfileBuilderOption: a function that applies the settings option to a profileImpl
func WithSettings(settings *Settings) ProfileBuilderOption {
	return func(p *profileImpl) {
		p.settings = settings
	}
}
