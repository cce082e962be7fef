package planet_atmosphere

// ScaleResolverBuilderOption is a function that configures a ScaleResolver during construction.
type ScaleResolverBuilderOption func(*scaleResolverImpl)

// WithChangeThreshold is an option builder that sets the squared-distance threshold above
// which a new lossy scale triggers recomputation.
//
// Parameters:
//   - threshold: the squared distance threshold, negative values are treated as 0
//
// Returns:
//   - ScaleResolverBuilderOption: a function that applies the threshold to a scaleResolverImpl
func WithChangeThreshold(threshold float32) ScaleResolverBuilderOption {
	return func(r *scaleResolverImpl) {
		r.threshold = max(0, threshold)
	}
}
