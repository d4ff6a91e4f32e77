package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/couchsplit/couchsplit/internal/logging"
)

// LockFileName is the lock file inside the data directory.
const LockFileName = "session.lock"

// Lock is an exclusive flock on {data}/session.lock held for the whole
// session. Startup guest cleanup and tmp purging are skipped while another
// process holds it. The file body records who holds it; a file left behind
// by a crashed process carries no flock and is simply taken over.
type Lock struct {
	SessionID string    `json:"session_id"`
	Game      string    `json:"game"`
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`

	path   string
	file   *os.File
	logger *logging.Logger
}

// AcquireLock takes the session lock in dir or fails with
// ErrLaunchInProgress. logger may be nil.
func AcquireLock(dir, sessionID, gameID string, logger *logging.Logger) (*Lock, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	path := filepath.Join(dir, LockFileName)

	f, err := openLocked(path)
	if err != nil {
		return nil, err
	}
	if f == nil {
		holder, _ := ReadLock(path)
		if holder == nil {
			holder = &Lock{}
		}
		return nil, errors.NewSessionError(
			fmt.Sprintf("locked by PID %d on %s", holder.PID, holder.Hostname),
			errors.ErrLaunchInProgress,
		).WithSessionID(holder.SessionID).WithGame(holder.Game)
	}

	host, _ := os.Hostname()
	l := &Lock{
		SessionID: sessionID,
		Game:      gameID,
		PID:       os.Getpid(),
		Hostname:  host,
		StartedAt: time.Now(),
		path:      path,
		file:      f,
		logger:    logger,
	}
	data, _ := json.MarshalIndent(l, "", "  ")
	if err := f.Truncate(0); err == nil {
		_, err = f.WriteAt(data, 0)
	}
	if err != nil {
		l.unlock()
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}

	logger.Info("session lock acquired", "session_id", sessionID, "pid", l.PID)
	return l, nil
}

// openLocked opens path and takes an exclusive flock without blocking. It
// returns a nil file when another process holds the lock. If the file was
// unlinked by a releasing holder between open and flock, it retries on the
// new file.
func openLocked(path string) (*os.File, error) {
	for {
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open lock file: %w", err)
		}
		if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
			f.Close()
			if err == unix.EWOULDBLOCK {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to lock %s: %w", path, err)
		}
		if sameFile(f, path) {
			return f, nil
		}
		f.Close()
	}
}

func sameFile(f *os.File, path string) bool {
	held, err := f.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(path)
	return err == nil && os.SameFile(held, current)
}

// Release removes the lock file and drops the flock. Safe to call more
// than once.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := os.Remove(l.path)
	if os.IsNotExist(err) {
		err = nil
	}
	l.unlock()
	if err == nil {
		l.logger.Info("session lock released", "session_id", l.SessionID)
	}
	return err
}

func (l *Lock) unlock() {
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
	l.file = nil
}

// ReadLock parses the holder recorded in a lock file.
func ReadLock(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l Lock
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse lock file: %w", err)
	}
	l.path = path
	return &l, nil
}

// IsLocked reports whether a running session holds dir, and who it is.
func IsLocked(dir string) (*Lock, bool) {
	path := filepath.Join(dir, LockFileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH|unix.LOCK_NB); err == nil {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		return nil, false
	}
	holder, err := ReadLock(path)
	if err != nil {
		holder = &Lock{path: path}
	}
	return holder, true
}
