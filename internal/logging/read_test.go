package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

func TestParseLine(t *testing.T) {
	line := `time="2025-03-01 18:22:10" level=WARN msg="unload failed" component=compositor session_id=abc game=celeste error="dbus: \"closed\""`
	e, err := ParseLine(line)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if e.Level != LevelWarn || e.Message != "unload failed" {
		t.Errorf("level/msg = %q/%q", e.Level, e.Message)
	}
	want := time.Date(2025, 3, 1, 18, 22, 10, 0, time.Local)
	if !e.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", e.Time, want)
	}
	if e.Attr("game") != "celeste" || e.Attr("session_id") != "abc" {
		t.Errorf("attrs = %+v", e.Attrs)
	}
	if e.Attr("error") != `dbus: "closed"` {
		t.Errorf("error attr = %q", e.Attr("error"))
	}
}

func TestParseLine_Invalid(t *testing.T) {
	for _, line := range []string{
		"",
		"not a log line",
		`level=INFO msg="unterminated`,
		`msg=hello`,
	} {
		if _, err := ParseLine(line); err == nil {
			t.Errorf("ParseLine(%q) should fail", line)
		}
	}
}

func TestLoggerOutputRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LevelDebug).WithSession("s1").WithGame("celeste")
	logger.WithPlayer(2).Info("profile ready", "profile", ".Inky Pinky")

	e, err := ParseLine(buf.String())
	if err != nil {
		t.Fatalf("ParseLine(%q): %v", buf.String(), err)
	}
	if e.Message != "profile ready" || e.Attr("player") != "2" || e.Attr("profile") != ".Inky Pinky" {
		t.Errorf("entry = %+v", e)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `time="2025-03-01 18:00:00" level=DEBUG msg=scan session_id=aaa111
time="2025-03-01 18:00:01" level=INFO msg=launching session_id=aaa111 game=celeste
garbage line
time="2025-03-01 18:00:02" level=ERROR msg="game exited" session_id=aaa111 game=celeste
time="2025-03-01 19:00:00" level=INFO msg=launching session_id=bbb222 game=towerfall
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter Filter
		tail   int
		want   []string
	}{
		{"all", Filter{}, 0, []string{"scan", "launching", "game exited", "launching"}},
		{"min level", Filter{MinLevel: "info"}, 0, []string{"launching", "game exited", "launching"}},
		{"session prefix", Filter{SessionID: "bbb"}, 0, []string{"launching"}},
		{"game", Filter{Game: "celeste"}, 0, []string{"launching", "game exited"}},
		{"since", Filter{Since: time.Date(2025, 3, 1, 18, 30, 0, 0, time.Local)}, 0, []string{"launching"}},
		{"pattern", Filter{Pattern: regexp.MustCompile("exited")}, 0, []string{"game exited"}},
		{"tail", Filter{}, 2, []string{"game exited", "launching"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ReadFile(path, tt.filter, tt.tail)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			var got []string
			for _, e := range entries {
				got = append(got, e.Message)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}
