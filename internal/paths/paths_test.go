package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLayout(t *testing.T) {
	l := New("/data")
	tests := map[string]string{
		l.Profiles():       "/data/profiles",
		l.Profile(".Inky"): "/data/profiles/.Inky",
		l.GameSyms():       "/data/gamesyms",
		l.Handlers():       "/data/handlers",
		l.Tmp():            "/data/tmp",
		l.Prefix():         "/data/pfx",
		l.Resources():      "/data/res",
		l.Settings():       "/data/settings.json",
		l.GamePaths():      "/data/paths.json",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestPrepare(t *testing.T) {
	l := New(t.TempDir())

	stale := filepath.Join(l.Tmp(), "kwin.js")
	if err := os.MkdirAll(l.Tmp(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := l.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("tmp should be purged")
	}
	for _, dir := range []string{l.Profiles(), l.GameSyms(), l.Handlers(), l.Tmp(), l.Resources()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s not created", dir)
		}
	}
}

func TestResetDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pfx")
	if err := os.MkdirAll(filepath.Join(dir, "drive_c"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := ResetDir(dir); err != nil {
		t.Fatalf("ResetDir: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty dir, got %d entries", len(entries))
	}
}
