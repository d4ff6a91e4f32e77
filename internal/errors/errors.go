// Package errors defines couchsplit's failure taxonomy and re-exports the
// standard errors helpers so callers need a single import.
//
// Each subsystem has its own error type:
//   - DeviceError: an input device could not be opened or configured. Never fatal.
//   - SandboxError: a profile, save redirect or symlink tree could not be built.
//   - CompositorError: the tiling script could not be loaded or unloaded.
//   - ProcessError: the composite game command exited abnormally.
//   - SessionError: a launch attempt was aborted.
//
// NotFoundError and ValidationError cover lookups and bad input.
//
//	err := errors.NewSandboxError("create profile", cause).WithProfile(".Blinky")
//	status = errors.UserMessage(err)
package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	Is   = errors.Is
	As   = errors.As
	New  = errors.New
	Join = errors.Join
)

// Devices.
var (
	ErrNoDevices   = New("no gamepads found")
	ErrNonBlocking = New("could not set non-blocking mode")
)

// Profiles and sandboxes.
var (
	ErrGuestPoolExhausted = New("guest name pool exhausted")
	ErrInvalidProfileName = New("invalid profile name")
)

// Compositor.
var (
	ErrScriptMissing   = New("tiling script does not exist")
	ErrScriptNotLoaded = New("tiling script not loaded")
	ErrScriptRejected  = New("tiling script rejected")
)

// Sessions.
var (
	ErrNoPlayers        = New("no players assigned")
	ErrLaunchInProgress = New("launch already in progress")
	ErrNonZeroExit      = New("game exited with non-zero status")
)

// ErrInvalidInput is the cause of every ValidationError.
var ErrInvalidInput = New("invalid input")

// classified is implemented by every error type in this package.
type classified interface {
	error
	isFatal() bool
	isUserFacing() bool
}

// detail is the state shared by the typed errors.
type detail struct {
	msg   string
	cause error
	fatal bool
	shown bool
}

func (d *detail) Unwrap() error      { return d.cause }
func (d *detail) isFatal() bool      { return d.fatal }
func (d *detail) isUserFacing() bool { return d.shown }

// render produces "<kind> [k=v, ...]: msg: cause". Pairs with an empty
// value are left out.
func (d *detail) render(kind string, pairs ...string) string {
	var b strings.Builder
	b.WriteString(kind)
	var ctx []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			ctx = append(ctx, pairs[i]+"="+pairs[i+1])
		}
	}
	if len(ctx) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(ctx, ", "))
	}
	b.WriteString(": ")
	b.WriteString(d.msg)
	if d.cause != nil {
		fmt.Fprintf(&b, ": %v", d.cause)
	}
	return b.String()
}

// DeviceError is logged and the device skipped.
type DeviceError struct {
	detail
	Path string
}

func NewDeviceError(msg string, cause error) *DeviceError {
	return &DeviceError{detail: detail{msg: msg, cause: cause}}
}

// WithPath records the device node.
func (e *DeviceError) WithPath(path string) *DeviceError {
	e.Path = path
	return e
}

func (e *DeviceError) Error() string { return e.render("device error", "path", e.Path) }

func (e *DeviceError) Is(target error) bool {
	_, ok := target.(*DeviceError)
	return ok
}

// SandboxError aborts the launch attempt.
type SandboxError struct {
	detail
	Profile string
	Path    string
}

func NewSandboxError(msg string, cause error) *SandboxError {
	return &SandboxError{detail: detail{msg: msg, cause: cause, fatal: true, shown: true}}
}

func (e *SandboxError) WithProfile(name string) *SandboxError {
	e.Profile = name
	return e
}

func (e *SandboxError) WithPath(path string) *SandboxError {
	e.Path = path
	return e
}

func (e *SandboxError) Error() string {
	return e.render("sandbox error", "profile", e.Profile, "path", e.Path)
}

func (e *SandboxError) Is(target error) bool {
	_, ok := target.(*SandboxError)
	return ok
}

// CompositorError is fatal on load. Unload failures are downgraded with
// WithFatal(false).
type CompositorError struct {
	detail
	Script string
}

func NewCompositorError(msg string, cause error) *CompositorError {
	return &CompositorError{detail: detail{msg: msg, cause: cause, fatal: true, shown: true}}
}

func (e *CompositorError) WithScript(script string) *CompositorError {
	e.Script = script
	return e
}

func (e *CompositorError) WithFatal(fatal bool) *CompositorError {
	e.fatal = fatal
	return e
}

func (e *CompositorError) Error() string { return e.render("compositor error", "script", e.Script) }

func (e *CompositorError) Is(target error) bool {
	_, ok := target.(*CompositorError)
	return ok
}

// ProcessError is reported after cleanup has run. ExitCode is -1 when the
// process did not exit normally.
type ProcessError struct {
	detail
	ExitCode int
}

func NewProcessError(msg string, cause error) *ProcessError {
	return &ProcessError{detail: detail{msg: msg, cause: cause, shown: true}, ExitCode: -1}
}

func (e *ProcessError) WithExitCode(code int) *ProcessError {
	e.ExitCode = code
	return e
}

func (e *ProcessError) Error() string {
	code := ""
	if e.ExitCode >= 0 {
		code = strconv.Itoa(e.ExitCode)
	}
	return e.render("process error", "exit", code)
}

func (e *ProcessError) Is(target error) bool {
	_, ok := target.(*ProcessError)
	return ok
}

// SessionError wraps whatever aborted a launch with the session context.
type SessionError struct {
	detail
	SessionID string
	Game      string
}

func NewSessionError(msg string, cause error) *SessionError {
	return &SessionError{detail: detail{msg: msg, cause: cause, fatal: true, shown: true}}
}

func (e *SessionError) WithSessionID(id string) *SessionError {
	e.SessionID = id
	return e
}

func (e *SessionError) WithGame(game string) *SessionError {
	e.Game = game
	return e
}

func (e *SessionError) Error() string {
	return e.render("session error", "session", e.SessionID, "game", e.Game)
}

func (e *SessionError) Is(target error) bool {
	_, ok := target.(*SessionError)
	return ok
}

// NotFoundError renders as "<kind> '<id>' not found".
type NotFoundError struct {
	detail
	ResourceType string
	ResourceID   string
}

func NewNotFoundError(resourceType, id string) *NotFoundError {
	return &NotFoundError{detail: detail{shown: true}, ResourceType: resourceType, ResourceID: id}
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ValidationError always wraps ErrInvalidInput.
type ValidationError struct {
	detail
	Field string
	Value any
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{detail: detail{msg: msg, cause: ErrInvalidInput, shown: true}}
}

func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.msg
	}
	return fmt.Sprintf("validation error: %s: %s (got: %v)", e.Field, e.msg, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// IsFatal reports whether err must abort the launch attempt. Errors from
// outside this package count as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var c classified
	if As(err, &c) {
		return c.isFatal()
	}
	return true
}

// IsUserFacing reports whether err's message is meant for players.
func IsUserFacing(err error) bool {
	var c classified
	return err != nil && As(err, &c) && c.isUserFacing()
}

// UserMessage renders err for a status line.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsUserFacing(err):
		return err.Error()
	default:
		return "an internal error occurred: " + err.Error()
	}
}

// Wrap is fmt.Errorf("%s: %w") that passes nil through.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}
