package compositor

import (
	"sync"

	"github.com/godbus/dbus/v5"
)

// KWin scripting endpoint.
const (
	kwinService   = "org.kde.KWin"
	kwinPath      = dbus.ObjectPath("/Scripting")
	kwinInterface = "org.kde.kwin.Scripting"
)

// Scripting is the desktop shell's script loader.
type Scripting interface {
	// LoadScript registers the script file under name and returns its id.
	LoadScript(path, name string) (int32, error)
	// Start runs every loaded script.
	Start() error
	// UnloadScript stops and forgets the named script.
	UnloadScript(name string) (bool, error)
}

// DBusScripting talks to KWin over the session bus. The connection is made
// on first use.
type DBusScripting struct {
	mu   sync.Mutex
	conn *dbus.Conn
	dial func() (*dbus.Conn, error)
}

// NewDBusScripting returns a client for the user's session bus.
func NewDBusScripting() *DBusScripting {
	return &DBusScripting{dial: func() (*dbus.Conn, error) { return dbus.ConnectSessionBus() }}
}

func (s *DBusScripting) object() (dbus.BusObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		conn, err := s.dial()
		if err != nil {
			return nil, err
		}
		s.conn = conn
	}
	return s.conn.Object(kwinService, kwinPath), nil
}

func (s *DBusScripting) LoadScript(path, name string) (int32, error) {
	obj, err := s.object()
	if err != nil {
		return 0, err
	}
	var id int32
	err = obj.Call(kwinInterface+".loadScript", 0, path, name).Store(&id)
	return id, err
}

func (s *DBusScripting) Start() error {
	obj, err := s.object()
	if err != nil {
		return err
	}
	return obj.Call(kwinInterface+".start", 0).Err
}

func (s *DBusScripting) UnloadScript(name string) (bool, error) {
	obj, err := s.object()
	if err != nil {
		return false, err
	}
	var ok bool
	err = obj.Call(kwinInterface+".unloadScript", 0, name).Store(&ok)
	return ok, err
}

// Close releases the bus connection.
func (s *DBusScripting) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
