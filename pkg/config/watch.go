package config

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

var (
	ErrEmptyPath    = errors.New("config: empty path")
	ErrNilCallback  = errors.New("config: nil callback")
	ErrWatch        = errors.New("config: failed to start watcher")
	ErrAlreadyRuns  = errors.New("config: watcher already started")
	ErrNeverStarted = errors.New("config: watcher never started")
)

const defaultDebounce = 100 * time.Millisecond

// Watcher reacts to changes of a single configuration file. Editors
// typically replace files on save, so the watcher observes the parent
// directory and filters events down to the named file. Bursts of
// events settle for a debounce window before the callback fires once.
type Watcher struct {
	path     string
	onChange func()
	onError  func(error)
	debounce time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	fw        *fsnotify.Watcher
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// WatcherOption adjusts watcher behavior.
type WatcherOption func(*Watcher)

// WithDebounce sets how long events must settle before the callback
// fires. Defaults to 100ms.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler routes filesystem errors to fn instead of the logger.
func WithErrorHandler(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher prepares a watcher for path that invokes onChange after
// the file changes. Call Start to begin watching.
func NewWatcher(path string, onChange func(), opts ...WatcherOption) (*Watcher, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if onChange == nil {
		return nil, ErrNilCallback
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Join(ErrWatch, err)
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		debounce: defaultDebounce,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching in a background goroutine. The watcher runs
// until Stop is called or ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fw != nil {
		return ErrAlreadyRuns
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Join(ErrWatch, err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close() //nolint:errcheck
		return errors.Join(ErrWatch, err)
	}

	w.fw = fw
	w.stopCh = make(chan struct{})
	w.stoppedCh = make(chan struct{})
	go w.run(ctx)
	return nil
}

// Stop halts the watcher and waits for the watch loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fw == nil {
		return ErrNeverStarted
	}

	close(w.stopCh)
	<-w.stoppedCh
	err := w.fw.Close()
	w.fw = nil
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.stoppedCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			} else {
				w.logger.ErrorContext(ctx, "config watch error", slog.String("error", err.Error()))
			}
		case <-fire:
			fire = nil
			w.onChange()
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		}
	}
}
