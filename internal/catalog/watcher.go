package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher reloads the recommended models file into a store whenever it changes.
type Watcher struct {
	path     string
	store    *RecommendedStore
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

// NewWatcher watches the directory containing path so that editors which replace the
// file by rename are still observed.
func NewWatcher(path string, store *RecommendedStore, logger zerolog.Logger) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		path:     absPath,
		store:    store,
		logger:   logger,
		watcher:  fsWatcher,
		debounce: defaultDebounce,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching in the background.
func (w *Watcher) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(w.done)
		defer w.watcher.Close()

		var debounceTimer *time.Timer
		defer func() {
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
		}()

		for {
			select {
			case <-w.ctx.Done():
				w.logger.Info().Msg("Recommended models watcher stopped")
				return

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}

				w.logger.Debug().
					Str("file", event.Name).
					Str("op", event.Op.String()).
					Msg("Recommended models file changed")

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(w.debounce, w.reload)

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error().Err(err).Msg("Recommended models watcher error")
			}
		}
	}()

	w.logger.Info().
		Str("path", w.path).
		Msg("Recommended models watcher started")
}

// Stop stops the watcher and waits for the background loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.cancel()
		if w.started.Load() {
			<-w.done
			return
		}
		w.watcher.Close()
	})
}

func (w *Watcher) reload() {
	list, err := LoadRecommended(w.path)
	if err != nil {
		w.logger.Error().
			Err(err).
			Msg("Failed to reload recommended models - keeping current list")
		return
	}

	w.store.Set(list)
	w.logger.Info().Msg("Recommended models reloaded")
}
