// Package watcher reports changes to a single file, using fsnotify where
// available and stat polling otherwise. It drives live reload of a local
// entities file: a change is reported only when the file's bytes differ from
// the last reported version, so a save without edits does not reload.
package watcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounceDuration = d }
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets the callback invoked when the file changes.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) { w.forcePoll = force }
}

// snapshot is what the watcher knows about the file at one point in time.
type snapshot struct {
	exists  bool
	modTime time.Time
	size    int64
	sum     [sha256.Size]byte
}

// statDiffers is the cheap check the poller runs every tick.
func (s snapshot) statDiffers(info os.FileInfo) bool {
	return !s.exists || !info.ModTime().Equal(s.modTime) || info.Size() != s.size
}

func fingerprint(path string) (snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return snapshot{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return snapshot{}, err
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return snapshot{}, err
	}
	s := snapshot{exists: true, modTime: info.ModTime(), size: info.Size()}
	copy(s.sum[:], h.Sum(nil))
	return s, nil
}

// Watcher monitors a file for changes using fsnotify with polling fallback.
type Watcher struct {
	path             string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func()
	onError          func(error)
	forcePoll        bool

	mu        sync.RWMutex
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	polling   bool
	started   bool
	cancel    context.CancelFunc
	last      snapshot
	removed   bool

	changeCh chan struct{}
}

// NewWatcher creates a new file watcher for the given path.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:             absPath,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func() {},
		onError:          func(error) {},
		changeCh:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounceDuration)

	return w, nil
}

// Start begins watching the file for changes. A missing file is fine; its
// creation is reported as a change.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	snap, err := fingerprint(w.path)
	switch {
	case err == nil:
		w.last = snap
	case os.IsPermission(err):
		return ErrPermission
	default:
		w.last = snapshot{}
	}
	w.removed = false

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.polling = w.forcePoll || envBool("FREEPARE_FORCE_POLL")
	if !w.polling {
		// Watch the directory: editors and exporters replace the file by rename.
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			if err = fsw.Add(filepath.Dir(w.path)); err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			w.polling = true
		} else {
			w.fsWatcher = fsw
		}
	}

	if w.polling {
		ticker := time.NewTicker(w.pollInterval)
		go func() {
			defer ticker.Stop()
			w.run(ctx, nil, nil, ticker.C)
		}()
	} else {
		go w.run(ctx, w.fsWatcher.Events, w.fsWatcher.Errors, nil)
	}

	w.started = true
	return nil
}

// Stop stops watching the file. The Changed channel stays open; a receiver
// blocked on it is released by the caller's own cancellation.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed returns a channel that receives when the file changes.
// This is an alternative to using the OnChange callback.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Wait blocks until the file changes or ctx is done.
func (w *Watcher) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.changeCh:
		return nil
	}
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

// PollInterval returns the polling interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// run is the event loop for both modes. Exactly one of events and tick is
// non-nil.
func (w *Watcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, tick <-chan time.Time) {
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				// A rename-over shows up as Remove or Rename followed by Create.
				if _, err := os.Stat(w.path); os.IsNotExist(err) {
					w.reportRemoved()
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.debouncer.Trigger(w.settle)
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)

		case <-tick:
			w.poll()
		}
	}
}

// poll compares stat data with the last snapshot and schedules a content
// check when it moved.
func (w *Watcher) poll() {
	info, err := os.Stat(w.path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			w.reportRemoved()
		case os.IsPermission(err):
			w.onError(ErrPermission)
		default:
			w.onError(err)
		}
		return
	}

	w.mu.RLock()
	moved := w.last.statDiffers(info)
	w.mu.RUnlock()
	if moved {
		w.debouncer.Trigger(w.settle)
	}
}

// reportRemoved reports ErrFileRemoved once per disappearance of a file
// that existed.
func (w *Watcher) reportRemoved() {
	w.mu.Lock()
	report := w.last.exists && !w.removed
	w.removed = true
	w.mu.Unlock()
	if report {
		w.onError(ErrFileRemoved)
	}
}

// settle runs after the debounce window. It fingerprints the file and
// notifies only when the content differs from the last notified version.
func (w *Watcher) settle() {
	snap, err := fingerprint(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.onError(err)
		}
		return
	}

	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	same := w.last.exists && snap.sum == w.last.sum
	w.last = snap
	w.removed = false
	w.mu.Unlock()

	if same {
		return
	}

	w.onChange()

	// Non-blocking send to change channel
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
