package profile_loader

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
	"github.com/fsnotify/fsnotify"
)

type watcherImpl struct {
	mu      *sync.Mutex
	path    string
	profile atmosphere.Profile
	log     logging.Logger

	onReload func(err error)

	fs     *fsnotify.Watcher
	done   chan struct{}
	closed bool
	wg     sync.WaitGroup
}

// Watcher reloads a profile whenever its file is written or replaced.
type Watcher interface {
	// Path returns the watched file.
	//
	// Returns:
	//   - string: the cleaned file path
	Path() string

	// Close stops watching. Safe to call more than once.
	//
	// Returns:
	//   - error: an error from the underlying file watcher
	Close() error
}

var _ Watcher = &watcherImpl{}

// Watch starts reloading profile from path on every change.
// The containing directory is watched so editors that save through a rename are still seen.
// A file that fails to decode leaves the profile untouched and is reported to the logger.
// An empty file is ignored until it is written again.
//
// Parameters:
//   - path: the profile file
//   - profile: the profile to keep in sync
//   - opts: watcher options
//
// Returns:
//   - Watcher: the running watcher
//   - error: ErrUnsupportedFormat, or an error creating the file watcher
func Watch(path string, profile atmosphere.Profile, opts ...WatcherOption) (Watcher, error) {
	if profile == nil {
		panic("profile_loader: profile must not be nil")
	}
	if _, err := FormatFromPath(path); err != nil {
		return nil, err
	}

	w := &watcherImpl{
		mu:      &sync.Mutex{},
		path:    filepath.Clean(path),
		profile: profile,
		log:     logging.Noop(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(filepath.Dir(w.path)); err != nil {
		fs.Close()
		return nil, err
	}
	w.fs = fs

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcherImpl) Path() string {
	return w.path
}

func (w *watcherImpl) run() {
	defer w.wg.Done()
	ctx := context.Background()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload(ctx)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn(ctx, "profile watcher error", logging.String("path", w.path), logging.Err(err))
		}
	}
}

// reload applies the file to the profile. An empty file is an editor mid-save (truncate, then
// write) and is skipped; the write that follows it triggers the reload.
func (w *watcherImpl) reload(ctx context.Context) {
	if info, err := os.Stat(w.path); err == nil && info.Size() == 0 {
		w.log.Debug(ctx, "profile file empty, reload skipped", logging.String("path", w.path))
		return
	}

	err := Reload(w.path, w.profile)
	if err != nil {
		w.log.Warn(ctx, "profile reload failed", logging.String("path", w.path), logging.Err(err))
	} else {
		w.log.Info(ctx, "profile reloaded",
			logging.String("path", w.path), logging.Uint64("version", w.profile.Version()))
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}

func (w *watcherImpl) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	return err
}
