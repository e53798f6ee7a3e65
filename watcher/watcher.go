package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/wippyai/resource-guard/errors"
	"github.com/wippyai/resource-guard/shared"
)

// Watcher loads an endpoint configuration file and republishes it whenever
// the file changes. Consumers hold read-only views; the watcher's reload
// loop is the single writer.
type Watcher struct {
	owner     *shared.Owner[Config]
	fs        *fsnotify.Watcher
	path      string
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// New loads path and begins watching it for changes. The initial load must
// succeed; later reload failures keep the previous value.
func New(path string) (*Watcher, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Watch(path, err)
	}

	// Watch the directory, not the file: editors replace files on save,
	// which silently drops a file-level watch.
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, errors.Watch(path, err)
	}

	w := &Watcher{
		owner:  shared.NewOwner(cfg),
		fs:     fs,
		path:   path,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go w.watchLoop()

	Logger().Debug("watching config", zap.String("path", path))
	return w, nil
}

// Config returns a read-only live view of the current configuration.
func (w *Watcher) Config() shared.View[Config] {
	return w.owner.View()
}

// Close stops the watch loop and waits for it to finish. Idempotent.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stopCh)
		if cerr := w.fs.Close(); cerr != nil {
			err = errors.Wrap(errors.OpWatch, errors.KindIO, cerr, "close watcher")
		}
		<-w.doneCh
	})
	return err
}

// watchLoop processes filesystem events until Close.
func (w *Watcher) watchLoop() {
	defer close(w.doneCh)

	// Debounce events - editors create multiple events for a single save
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer
	pending := false

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}

			pending = true
			debounceTimer.Reset(50 * time.Millisecond)

		case <-debounceTimer.C:
			if !pending {
				continue
			}
			pending = false
			w.reload()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			Logger().Warn("watch error", zap.Error(errors.Watch(w.path, err)))
		}
	}
}

// reload re-reads the file and publishes the new value. A failed reload
// keeps the previous value and logs why.
func (w *Watcher) reload() {
	cfg, err := load(w.path)
	if err != nil {
		Logger().Warn("config reload failed", zap.Error(err))
		return
	}

	w.owner.Store(cfg)
	Logger().Info("config reloaded",
		zap.String("path", w.path),
		zap.String("hostname", cfg.Hostname),
		zap.Int("port", cfg.Port))
}
