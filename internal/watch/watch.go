// Package watch notifies subscribers when files change on disk.
//
// Each subscribed file is watched through its parent directory so editors
// that save by writing a temporary file and renaming it over the original
// keep triggering events. Bursts of events for the same file are debounced
// and the file is read once the burst settles.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Defaults for Options.
const (
	DefaultDebounce   = 100 * time.Millisecond
	DefaultRetries    = 10
	DefaultRetryDelay = 50 * time.Millisecond
)

// ErrClosed is returned by Subscribe and Run after Close.
var ErrClosed = errors.New("watcher is closed")

// Event describes a settled change to a subscribed file.
// Content holds the file as read after the change; Err is set when the file
// could not be read, e.g. because it was deleted.
type Event struct {
	Path    string
	Op      fsnotify.Op
	Content []byte
	Err     error
}

// Options configures a Watcher. Zero values select the defaults.
type Options struct {
	Debounce   time.Duration
	Retries    int
	RetryDelay time.Duration
	OnError    func(error) // receives fsnotify errors; nil = ignored
}

// Watcher dispatches file change events to subscribers.
// Callbacks run one at a time on the goroutine calling Run.
type Watcher struct {
	opts Options
	fsw  *fsnotify.Watcher

	mu      sync.Mutex
	subs    map[string][]func(Event) // absolute path -> callbacks
	dirs    map[string]bool
	pending map[string]fsnotify.Op
	closed  bool
}

// New creates a Watcher.
func New(opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		opts:    opts,
		fsw:     fsw,
		subs:    make(map[string][]func(Event)),
		dirs:    make(map[string]bool),
		pending: make(map[string]fsnotify.Op),
	}, nil
}

// Subscribe registers fn for changes to path. The parent directory must exist;
// the file itself may not exist yet.
func (w *Watcher) Subscribe(path string, fn func(Event)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.subs[abs] = append(w.subs[abs], fn)
	return nil
}

// Run dispatches events until ctx is done or the watcher is closed.
// Returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return ErrClosed
	}

	fire := make(chan string)
	stop := make(chan struct{})
	timers := make(map[string]*time.Timer)
	defer func() {
		close(stop)
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev.Op) || !w.track(ev) {
				continue
			}
			if t, ok := timers[ev.Name]; ok {
				t.Reset(w.opts.Debounce)
				continue
			}
			name := ev.Name
			timers[name] = time.AfterFunc(w.opts.Debounce, func() {
				select {
				case fire <- name:
				case <-stop:
				}
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if w.opts.OnError != nil {
				w.opts.OnError(err)
			}

		case name := <-fire:
			delete(timers, name)
			w.dispatch(ctx, name)
		}
	}
}

// Close stops the underlying fsnotify watcher. Run returns shortly after.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}

// track records ev if a subscriber wants it. Ops are accumulated until dispatch.
func (w *Watcher) track(ev fsnotify.Event) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.subs[ev.Name]; !ok {
		return false
	}
	w.pending[ev.Name] |= ev.Op
	return true
}

func (w *Watcher) dispatch(ctx context.Context, name string) {
	w.mu.Lock()
	op, ok := w.pending[name]
	delete(w.pending, name)
	subs := append([]func(Event){}, w.subs[name]...)
	w.mu.Unlock()

	// A timer reset while its send was in flight fires twice; the first
	// dispatch already consumed the ops.
	if !ok {
		return
	}

	content, err := w.readWithRetry(ctx, name)
	ev := Event{Path: name, Op: op, Content: content, Err: err}
	for _, fn := range subs {
		fn(ev)
	}
}

// readWithRetry rereads a file that is briefly missing during an atomic save.
func (w *Watcher) readWithRetry(ctx context.Context, name string) ([]byte, error) {
	var err error
	for range w.opts.Retries {
		var data []byte
		data, err = os.ReadFile(name) // #nosec G304 -- subscribed path
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(w.opts.RetryDelay):
		}
	}
	return nil, err
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) ||
		op.Has(fsnotify.Rename) || op.Has(fsnotify.Remove)
}
