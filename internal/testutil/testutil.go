// Package testutil provides fixtures shared by couchsplit tests: prepared
// data directories, game handlers on disk, and recording stand-ins for the
// compositor and the game runner.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/couchsplit/couchsplit/internal/gamepad"
	"github.com/couchsplit/couchsplit/internal/paths"
)

// handlerFile mirrors game.HandlerFile; importing game here would cycle.
const handlerFile = "handler.json"

// Layout returns a prepared data directory under t.TempDir().
func Layout(t *testing.T) paths.Layout {
	t.Helper()
	layout := paths.New(t.TempDir())
	if err := layout.Prepare(); err != nil {
		t.Fatalf("failed to prepare data dir: %v", err)
	}
	return layout
}

// WriteHandler writes handlers/<id>/handler.json under root and returns the
// handler directory.
func WriteHandler(t *testing.T, root, id, body string) string {
	t.Helper()
	dir := filepath.Join(root, "handlers", id)
	WriteFiles(t, dir, map[string]string{handlerFile: body})
	return dir
}

// WriteFiles creates files relative to root. Parent directories are made
// as needed.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write file %s: %v", path, err)
		}
	}
}

// Pad replays queued buttons, one per Poll. It satisfies players.Pad.
type Pad struct {
	Device string
	Queue  []gamepad.Button
}

func (p *Pad) Poll() gamepad.Button {
	if len(p.Queue) == 0 {
		return gamepad.ButtonNone
	}
	b := p.Queue[0]
	p.Queue = p.Queue[1:]
	return b
}

func (p *Pad) Path() string { return p.Device }

// Press queues buttons after any already pending.
func (p *Pad) Press(buttons ...gamepad.Button) {
	p.Queue = append(p.Queue, buttons...)
}

// Scripting records tiling script calls. It satisfies compositor.Scripting.
type Scripting struct {
	mu      sync.Mutex
	LoadID  int32
	LoadErr error
	Paths   []string
	calls   []string
}

func (s *Scripting) LoadScript(path, name string) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "load")
	s.Paths = append(s.Paths, path)
	return s.LoadID, s.LoadErr
}

func (s *Scripting) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "start")
	return nil
}

func (s *Scripting) UnloadScript(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "unload")
	return true, nil
}

// Calls returns the recorded call names in order.
func (s *Scripting) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Runner records composite commands instead of running them. It satisfies
// session.Runner.
type Runner struct {
	mu  sync.Mutex
	Err error
	// During runs while the "game" is running.
	During   func()
	commands []string
}

func (r *Runner) Run(command string) error {
	r.mu.Lock()
	r.commands = append(r.commands, command)
	during := r.During
	r.mu.Unlock()
	if during != nil {
		during()
	}
	return r.Err
}

// Commands returns the recorded commands.
func (r *Runner) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}
