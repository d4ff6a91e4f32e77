package game

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/couchsplit/couchsplit/internal/logging"
	"github.com/couchsplit/couchsplit/internal/paths"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// executablesKey is the array of paths in paths.json.
const executablesKey = "executables"

// Library loads and edits the installed games.
type Library struct {
	layout paths.Layout
	logger *logging.Logger
}

// NewLibrary returns a library over the data directory layout.
func NewLibrary(layout paths.Layout, logger *logging.Logger) *Library {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Library{layout: layout, logger: logger.WithComponent("library")}
}

// Scan loads every handler and executable, sorted by name. Broken handlers
// are logged and skipped. Scan does disk I/O; run it off the UI loop.
func (l *Library) Scan() ([]Game, error) {
	var games []Game

	entries, err := os.ReadDir(l.layout.Handlers())
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to list handlers")
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		h, err := LoadHandler(filepath.Join(l.layout.Handlers(), e.Name()))
		if err != nil {
			l.logger.Warn("skipping handler", "handler", e.Name(), "error", err)
			continue
		}
		games = append(games, h)
	}

	exes, err := l.executables()
	if err != nil {
		return nil, err
	}
	for _, p := range exes {
		games = append(games, Executable{Path: p})
	}

	slices.SortStableFunc(games, func(a, b Game) int {
		return strings.Compare(strings.ToLower(a.Descriptor().Name), strings.ToLower(b.Descriptor().Name))
	})
	l.logger.Info("library scanned", "games", len(games))
	return games, nil
}

// Find returns the game with the given id.
func (l *Library) Find(id string) (Game, error) {
	games, err := l.Scan()
	if err != nil {
		return nil, err
	}
	for _, g := range games {
		if g.Descriptor().ID == id {
			return g, nil
		}
	}
	return nil, errors.NewNotFoundError("game", id)
}

// AddExecutable appends a binary to paths.json.
func (l *Library) AddExecutable(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	exes, err := l.executables()
	if err != nil {
		return err
	}
	if slices.Contains(exes, abs) {
		return nil
	}

	data, err := l.readPaths()
	if err != nil {
		return err
	}
	data, err = sjson.SetBytes(data, executablesKey+".-1", abs)
	if err != nil {
		return errors.Wrap(err, "failed to update paths.json")
	}
	return l.writePaths(data)
}

// Remove deletes a game: handlers lose their directory, executables their
// paths.json entry. The installed files are never touched.
func (l *Library) Remove(id string) error {
	dir := filepath.Join(l.layout.Handlers(), id)
	if _, err := os.Stat(filepath.Join(dir, HandlerFile)); err == nil {
		if err := os.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, "failed to remove handler %s", id)
		}
		l.logger.Info("handler removed", "game_id", id)
		return nil
	}

	exes, err := l.executables()
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(exes, func(p string) bool { return executableID(p) == id })
	if idx < 0 {
		return errors.NewNotFoundError("game", id)
	}

	data, err := l.readPaths()
	if err != nil {
		return err
	}
	data, err = sjson.DeleteBytes(data, executablesKey+"."+strconv.Itoa(idx))
	if err != nil {
		return errors.Wrap(err, "failed to update paths.json")
	}
	if err := l.writePaths(data); err != nil {
		return err
	}
	l.logger.Info("executable removed", "game_id", id)
	return nil
}

func (l *Library) executables() ([]string, error) {
	data, err := l.readPaths()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range gjson.GetBytes(data, executablesKey).Array() {
		if p.String() != "" {
			out = append(out, p.String())
		}
	}
	return out, nil
}

func (l *Library) readPaths() ([]byte, error) {
	data, err := os.ReadFile(l.layout.GamePaths())
	if os.IsNotExist(err) {
		return []byte("{}"), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read paths.json")
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.NewValidationError("invalid JSON").WithField(l.layout.GamePaths())
	}
	return data, nil
}

func (l *Library) writePaths(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(l.layout.GamePaths()), 0755); err != nil {
		return errors.Wrap(err, "failed to create data directory")
	}
	tmp := l.layout.GamePaths() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write paths.json")
	}
	return os.Rename(tmp, l.layout.GamePaths())
}
