// Package watch keeps a theme config current while its file changes on
// disk.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/uitheme/pkg/theme"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Reloader.
type Options struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// Reloader watches a theme config file and reloads it after changes. The
// current snapshot is replaced atomically; a reload that fails leaves the
// previous snapshot in place.
//
// Usage:
//
//	r, err := watch.New("tailwind.config.js", loader, watch.Options{})
//	if err != nil {
//	    return err
//	}
//	defer r.Stop()
//
//	cfg := r.Current()
type Reloader struct {
	path     string
	loader   *theme.Loader
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	current atomic.Pointer[theme.ThemeConfig]

	subsMu sync.Mutex
	subs   []func(*theme.ThemeConfig)

	timerMu  sync.Mutex
	timer    *time.Timer
	inflight sync.WaitGroup

	stopChan chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool
	done     chan struct{}

	reloads  atomic.Int64
	failures atomic.Int64
	errMu    sync.Mutex
	lastErr  error
}

// New loads path and starts watching it. The initial load must succeed.
func New(path string, loader *theme.Loader, opts Options) (*Reloader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve theme path: %w", err)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	cfg, err := loader.Load(absPath)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory: editors that save by rename replace the file,
	// which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	r := &Reloader{
		path:     absPath,
		loader:   loader,
		watcher:  watcher,
		logger:   opts.Logger,
		debounce: opts.Debounce,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	r.current.Store(cfg)

	go r.eventLoop()

	r.logger.Info("theme watcher started", "path", absPath, "debounce", r.debounce)
	return r, nil
}

// Current returns the latest successfully loaded config. Safe for
// concurrent use.
func (r *Reloader) Current() *theme.ThemeConfig {
	return r.current.Load()
}

// Subscribe registers fn to be called with each new snapshot. Callbacks run
// on the reloader's goroutine and should return quickly.
func (r *Reloader) Subscribe(fn func(*theme.ThemeConfig)) {
	r.subsMu.Lock()
	r.subs = append(r.subs, fn)
	r.subsMu.Unlock()
}

// Reload loads the file now. On success the snapshot is swapped and
// subscribers are notified.
func (r *Reloader) Reload() error {
	cfg, err := r.loader.Load(r.path)
	if err != nil {
		r.failures.Add(1)
		r.setLastErr(err)
		r.logger.Warn("theme reload failed, keeping previous config", "path", r.path, "error", err)
		return err
	}

	r.current.Store(cfg)
	r.reloads.Add(1)
	r.setLastErr(nil)
	r.logger.Info("theme reloaded", "path", r.path, "colors", len(cfg.Colors()))

	r.subsMu.Lock()
	subs := slices.Clone(r.subs)
	r.subsMu.Unlock()
	for _, fn := range subs {
		fn(cfg)
	}
	return nil
}

// Stop ends watching and waits for a reload already in progress, so the
// loader may be closed once Stop returns. Safe to call more than once.
func (r *Reloader) Stop() error {
	var err error
	r.stopOnce.Do(func() {
		r.timerMu.Lock()
		r.stopped.Store(true)
		if r.timer != nil {
			r.timer.Stop()
		}
		r.timerMu.Unlock()
		close(r.stopChan)

		err = r.watcher.Close()
		<-r.done
		r.inflight.Wait()
		r.logger.Info("theme watcher stopped", "path", r.path)
	})
	return err
}

func (r *Reloader) eventLoop() {
	defer close(r.done)
	for {
		select {
		case <-r.stopChan:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("theme watcher error", "error", err)
		}
	}
}

func (r *Reloader) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != r.path {
		return
	}

	r.logger.Debug("theme file event", "op", event.Op.String(), "path", event.Name)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		r.scheduleReload()
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A rename-based save is followed by a Create for the same path.
		r.logger.Debug("theme file moved or removed, keeping current config", "path", r.path)
	}
}

// scheduleReload restarts the debounce timer so a burst of events triggers
// one reload.
func (r *Reloader) scheduleReload() {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.fire)
}

// fire runs a debounced reload unless Stop has begun. The stopped check and
// inflight.Add share timerMu with Stop, so Stop either sees the reload in
// flight or the reload sees stopped.
func (r *Reloader) fire() {
	r.timerMu.Lock()
	if r.stopped.Load() {
		r.timerMu.Unlock()
		return
	}
	r.inflight.Add(1)
	r.timerMu.Unlock()
	defer r.inflight.Done()

	_ = r.Reload()
}

func (r *Reloader) setLastErr(err error) {
	r.errMu.Lock()
	r.lastErr = err
	r.errMu.Unlock()
}

// Stats returns reload counters.
func (r *Reloader) Stats() Stats {
	r.errMu.Lock()
	lastErr := ""
	if r.lastErr != nil {
		lastErr = r.lastErr.Error()
	}
	r.errMu.Unlock()

	return Stats{
		Path:      r.path,
		Reloads:   r.reloads.Load(),
		Failures:  r.failures.Load(),
		LastError: lastErr,
		Running:   !r.stopped.Load(),
	}
}

// Stats contains reloader statistics.
type Stats struct {
	Path      string
	Reloads   int64
	Failures  int64
	LastError string
	Running   bool
}
