package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDeviceError(t *testing.T) {
	err := NewDeviceError("set non-blocking", ErrNonBlocking).WithPath("/dev/input/event3")

	if got := err.Error(); got != "device error [path=/dev/input/event3]: set non-blocking: could not set non-blocking mode" {
		t.Errorf("Error() = %q", got)
	}
	if IsFatal(err) {
		t.Error("device errors must not be fatal")
	}
	if IsUserFacing(err) {
		t.Error("device errors are logged, not shown")
	}
	if !Is(err, ErrNonBlocking) {
		t.Error("expected Is(err, ErrNonBlocking)")
	}
}

func TestSandboxError(t *testing.T) {
	cause := fmt.Errorf("mkdir: permission denied")
	err := NewSandboxError("create profile", cause).WithProfile(".Inky").WithPath("/tmp/p")

	msg := err.Error()
	for _, want := range []string{"profile=.Inky", "path=/tmp/p", "permission denied"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
	if !IsFatal(err) {
		t.Error("sandbox errors abort the launch")
	}
	if UserMessage(err) != msg {
		t.Errorf("UserMessage() = %q, want underlying message", UserMessage(err))
	}

	var target *SandboxError
	wrapped := Wrap(err, "launch")
	if !As(wrapped, &target) {
		t.Fatal("As should find SandboxError through Wrap")
	}
	if target.Profile != ".Inky" {
		t.Errorf("Profile = %q", target.Profile)
	}
}

func TestCompositorError_WithFatal(t *testing.T) {
	err := NewCompositorError("unload script", errors.New("dbus closed")).WithScript("splitscreen")
	if !IsFatal(err) {
		t.Error("compositor errors default to fatal")
	}
	err = err.WithFatal(false)
	if IsFatal(err) {
		t.Error("WithFatal(false) should downgrade")
	}
}

func TestProcessError(t *testing.T) {
	err := NewProcessError("game exited", ErrNonZeroExit).WithExitCode(3)
	if !strings.Contains(err.Error(), "exit=3") {
		t.Errorf("Error() = %q, want exit code", err.Error())
	}
	if IsFatal(err) {
		t.Error("process errors are reported after cleanup, not fatal")
	}
	if !Is(err, ErrNonZeroExit) {
		t.Error("expected Is(err, ErrNonZeroExit)")
	}

	noCode := NewProcessError("spawn failed", nil)
	if strings.Contains(noCode.Error(), "exit=") {
		t.Errorf("Error() = %q, should omit unknown exit code", noCode.Error())
	}
}

func TestSessionError_Is(t *testing.T) {
	err := NewSessionError("launch aborted", ErrNoPlayers).WithSessionID("abc").WithGame("celeste")
	if !Is(err, &SessionError{}) {
		t.Error("Is should match any SessionError")
	}
	if Is(err, &SandboxError{}) {
		t.Error("Is should not match SandboxError")
	}
	if !strings.Contains(err.Error(), "session=abc, game=celeste") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("must be between 35 and 200").WithField("render_scale").WithValue(10)
	if got := err.Error(); got != "validation error: render_scale: must be between 35 and 200 (got: 10)" {
		t.Errorf("Error() = %q", got)
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("validation errors wrap ErrInvalidInput")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("game", "celeste")
	if err.Error() != "game 'celeste' not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !IsUserFacing(err) {
		t.Error("not found errors are user-facing")
	}
}

func TestClassification_PlainErrors(t *testing.T) {
	plain := errors.New("boom")
	if !IsFatal(plain) {
		t.Error("unknown errors are treated as fatal")
	}
	if IsUserFacing(plain) {
		t.Error("unknown errors are not user-facing")
	}
	if !strings.HasPrefix(UserMessage(plain), "an internal error occurred") {
		t.Errorf("UserMessage() = %q", UserMessage(plain))
	}
	if IsFatal(nil) || IsUserFacing(nil) || UserMessage(nil) != "" {
		t.Error("nil error helpers should be zero")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if Wrapf(nil, "x %d", 1) != nil {
		t.Error("Wrapf(nil) should be nil")
	}
	err := Wrapf(ErrNoPlayers, "start %s", "celeste")
	if err.Error() != "start celeste: no players assigned" {
		t.Errorf("Wrapf() = %q", err.Error())
	}
	if !Is(err, ErrNoPlayers) {
		t.Error("Wrapf should preserve the chain")
	}
}

func TestIs_WalksCause(t *testing.T) {
	err := NewSessionError("launch failed", NewSandboxError("create profile", ErrInvalidProfileName))
	if !Is(err, &SandboxError{}) || !Is(err, ErrInvalidProfileName) {
		t.Error("Is should reach typed and sentinel causes")
	}
	var sb *SandboxError
	if !As(err, &sb) || sb.msg != "create profile" {
		t.Errorf("As() = %v", sb)
	}
}
