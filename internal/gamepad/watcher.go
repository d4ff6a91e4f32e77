package gamepad

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/couchsplit/couchsplit/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultInputDir is where the kernel creates event device nodes.
const DefaultInputDir = "/dev/input"

// defaultSettle gives udev time to fix permissions on new nodes before
// a rescan tries to open them.
const defaultSettle = 300 * time.Millisecond

// Watcher reports that event nodes appeared or disappeared. It never
// rescans by itself; the owner of the pad list decides when to rescan.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}
	settle  time.Duration
	logger  *logging.Logger

	mu     sync.Mutex
	timer  *time.Timer
	stopCh chan struct{}
	done   chan struct{}
}

// NewWatcher watches dir (normally DefaultInputDir) for event node changes.
func NewWatcher(dir string, logger *logging.Logger) (*Watcher, error) {
	return newWatcher(dir, defaultSettle, logger)
}

func newWatcher(dir string, settle time.Duration, logger *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	w := &Watcher{
		watcher: fw,
		changes: make(chan struct{}, 1),
		settle:  settle,
		logger:  logger,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Changes delivers one value per burst of device node changes.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.stopCh)
	err := w.watcher.Close()
	<-w.done

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isEventNode(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("input device watcher error", "error", err)
		}
	}
}

// schedule coalesces a burst of node events into a single notification.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settle, func() {
		select {
		case w.changes <- struct{}{}:
		default:
		}
	})
}

func isEventNode(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "event")
}
