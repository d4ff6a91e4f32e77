package tui

import (
	"io"

	"github.com/couchsplit/couchsplit/internal/session"
)

// StreamSetter receives the terminal streams handed over by the program
// while a session runs. *session.ShellRunner implements it through
// SetStreams.
type StreamSetter interface {
	SetStreams(stdin io.Reader, stdout, stderr io.Writer)
}

// launchCommand adapts a session launch to tea.ExecCommand.
type launchCommand struct {
	launcher Launcher
	streams  StreamSetter
	req      session.Request

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *launchCommand) Run() error {
	if c.streams != nil {
		c.streams.SetStreams(c.stdin, c.stdout, c.stderr)
	}
	_, err := c.launcher.Launch(c.req)
	return err
}

func (c *launchCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *launchCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *launchCommand) SetStderr(w io.Writer) { c.stderr = w }
