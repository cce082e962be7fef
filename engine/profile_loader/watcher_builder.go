package profile_loader

import "github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"

// WatcherOption configures a Watcher.
type WatcherOption func(*watcherImpl)

// WithLogger sets the watcher's logger.
//
// Parameters:
//   - log: the logger, nil for none
//
// Returns:
//   - WatcherOption: a function that applies the logger option
func WithLogger(log logging.Logger) WatcherOption {
	return func(w *watcherImpl) {
		w.log = logging.OrNoop(log)
	}
}

// WithOnReload registers a callback run after every reload attempt with its result.
// The callback runs on the watcher goroutine.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - WatcherOption: a function that applies the callback option
func WithOnReload(fn func(err error)) WatcherOption {
	return func(w *watcherImpl) {
		w.onReload = fn
	}
}
