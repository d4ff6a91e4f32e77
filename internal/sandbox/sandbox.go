// Package sandbox materializes per-profile views of shared directories so
// concurrent game instances never see each other's files.
package sandbox

import (
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/couchsplit/couchsplit/internal/errors"
	"golang.org/x/sys/unix"
)

// Mount redirects Target to Source inside the launched process.
type Mount struct {
	Source string
	Target string
}

// Args returns the bubblewrap arguments that apply the mount.
func (m Mount) Args() []string {
	return []string{"--bind", m.Source, m.Target}
}

// Isolator gives a process a private view of a shared path.
type Isolator interface {
	// Name identifies the backend in logs.
	Name() string
	// Isolate prepares private as the backing store for shared and returns
	// the mounts a launch must apply, if any.
	Isolate(shared, private string) ([]Mount, error)
}

// BindIsolator redirects the shared path with a bind mount applied by
// bubblewrap at launch. The host filesystem is left untouched apart from
// creating both directories.
type BindIsolator struct{}

func (BindIsolator) Name() string { return "bind" }

func (BindIsolator) Isolate(shared, private string) ([]Mount, error) {
	for _, dir := range []string{private, shared} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.NewSandboxError("failed to create directory", err).WithPath(dir)
		}
	}
	return []Mount{{Source: private, Target: shared}}, nil
}

// HomeRedirector is implemented by backends that cannot remap a path in
// place. Callers place private directories under a per-profile home and
// run the process with HOME pointing there.
type HomeRedirector interface {
	RedirectsHome() bool
}

// HomeIsolator keeps each profile's saves in real directories under a
// private HOME. Nothing under private points back into shared, so writes
// stay with the profile that made them. An existing private directory is
// reused as is.
type HomeIsolator struct{}

func (HomeIsolator) Name() string { return "home" }

func (HomeIsolator) RedirectsHome() bool { return true }

func (HomeIsolator) Isolate(shared, private string) ([]Mount, error) {
	info, err := os.Lstat(private)
	if err == nil && !info.IsDir() {
		return nil, errors.NewSandboxError("private save path is not a directory", nil).WithPath(private)
	}
	if err := os.MkdirAll(private, 0755); err != nil {
		return nil, errors.NewSandboxError("failed to create directory", err).WithPath(private)
	}
	return nil, nil
}

// UsesBubblewrap reports whether launches isolated by iso run inside
// bubblewrap. Backends that redirect HOME are picked when it is missing.
func UsesBubblewrap(iso Isolator) bool {
	hr, ok := iso.(HomeRedirector)
	return !ok || !hr.RedirectsHome()
}

// Mirror builds a symlink tree at dst reflecting src: directories are
// created for real and every file is a symlink into src. Existing entries
// under dst are kept, so a file replaced with a real copy stays. A missing
// src yields an empty dst.
func Mirror(src, dst string) error {
	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dst, 0755); err != nil {
			return errors.NewSandboxError("failed to create directory", err).WithPath(dst)
		}
		return nil
	}
	if err != nil {
		return errors.NewSandboxError("failed to read source tree", err).WithPath(src)
	}
	if !info.IsDir() {
		return errors.NewSandboxError("source is not a directory", nil).WithPath(src)
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if _, err := os.Lstat(target); err == nil {
			return nil
		}
		return os.Symlink(path, target)
	})
	if err != nil {
		return errors.NewSandboxError("failed to mirror directory", err).WithPath(dst)
	}
	return nil
}

// ForPlatform picks the save isolation backend: bind mounts when bubblewrap
// is installed and executable, a private HOME otherwise.
func ForPlatform() Isolator {
	return forPlatform(exec.LookPath)
}

func forPlatform(lookPath func(string) (string, error)) Isolator {
	path, err := lookPath("bwrap")
	if err != nil {
		return HomeIsolator{}
	}
	if unix.Access(path, unix.X_OK) != nil {
		return HomeIsolator{}
	}
	return BindIsolator{}
}
