package session

import (
	"bytes"
	"strings"
	"testing"

	"github.com/couchsplit/couchsplit/internal/errors"
)

func TestShellRunner(t *testing.T) {
	var out bytes.Buffer
	r := &ShellRunner{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &out}

	if err := r.Run("echo one & echo one & wait"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Count(out.String(), "one") != 2 {
		t.Errorf("output = %q", out.String())
	}

	err := r.Run("exit 3")
	var perr *errors.ProcessError
	if !errors.As(err, &perr) || perr.ExitCode != 3 {
		t.Fatalf("Run(exit 3) = %v", err)
	}
	if !errors.Is(err, errors.ErrNonZeroExit) {
		t.Error("non-zero exit should wrap ErrNonZeroExit")
	}
}

func TestShellRunner_SetStreams(t *testing.T) {
	var first, second bytes.Buffer
	r := &ShellRunner{Stdout: &first}
	r.SetStreams(strings.NewReader(""), &second, &second)

	if err := r.Run("echo moved"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if first.Len() != 0 {
		t.Errorf("old stdout got %q", first.String())
	}
	if !strings.Contains(second.String(), "moved") {
		t.Errorf("new stdout = %q", second.String())
	}
}
