package session

import (
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/couchsplit/couchsplit/internal/errors"
)

// Runner executes the composite launch command and blocks until every
// instance has exited.
type Runner interface {
	Run(command string) error
}

// ShellRunner runs the command with sh -c. Nil streams use the process's
// own.
type ShellRunner struct {
	mu     sync.Mutex
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// SetStreams replaces the streams used by subsequent runs.
func (r *ShellRunner) SetStreams(stdin io.Reader, stdout, stderr io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Stdin, r.Stdout, r.Stderr = stdin, stdout, stderr
}

// Run returns a ProcessError for spawn failures and non-zero exits.
func (r *ShellRunner) Run(command string) error {
	cmd := exec.Command("sh", "-c", command)
	r.mu.Lock()
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	r.mu.Unlock()
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return errors.NewProcessError("game exited", errors.ErrNonZeroExit).WithExitCode(exitErr.ExitCode())
	}
	return errors.NewProcessError("failed to start game", err)
}
