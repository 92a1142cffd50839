package posts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// DefaultWatchDebounce coalesces bursts of filesystem events.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watcher monitors a content root (posts.json and posts/*.md) and publishes a
// ChangeReloaded event once changes settle.
type Watcher struct {
	root        string
	debounce    time.Duration
	logger      interfaces.Logger
	broadcaster *Broadcaster

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchDebounce overrides DefaultWatchDebounce.
func WithWatchDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the module logger.
func WithWatchLogger(logger interfaces.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher prepares a watcher for root; call Start to begin watching.
func NewWatcher(root string, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		root:        filepath.Clean(root),
		debounce:    DefaultWatchDebounce,
		logger:      logging.NoOp(),
		broadcaster: NewBroadcaster(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Subscribe streams reload events until ctx is done.
func (w *Watcher) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return w.broadcaster.Subscribe(ctx)
}

// Start adds the content root and its posts directory to an fsnotify watcher.
// The posts directory is created when missing so new bodies are observed.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		return nil
	}

	postsDir := filepath.Join(w.root, PostsDirName)
	if err := os.MkdirAll(postsDir, 0o755); err != nil {
		return fmt.Errorf("posts watcher: create %s: %w", postsDir, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("posts watcher: %w", err)
	}
	for _, dir := range []string{w.root, postsDir} {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return fmt.Errorf("posts watcher: watch %s: %w", dir, err)
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.watcher = fsw
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.loop(loopCtx, fsw, w.done)

	w.logger.Info("posts.watcher.started", "root", w.root)
	return nil
}

// Stop closes the fsnotify watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	fsw, cancel, done := w.watcher, w.cancel, w.done
	w.watcher, w.cancel, w.done = nil, nil, nil
	w.mu.Unlock()

	if fsw == nil {
		return nil
	}
	cancel()
	err := fsw.Close()
	<-done
	return err
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("posts.watcher.event", "file", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			w.broadcaster.Broadcast(ChangeEvent{Type: ChangeReloaded})
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("posts.watcher.error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if name == MetaFileName {
		return true
	}
	return filepath.Dir(event.Name) == filepath.Join(w.root, PostsDirName) && filepath.Ext(name) == ".md"
}
