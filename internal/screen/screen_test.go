package screen

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/couchsplit/couchsplit/internal/logging"
)

func TestResolution(t *testing.T) {
	tests := []struct {
		name         string
		detect       Detector
		wantW, wantH int
		wantLog      string
	}{
		{
			name:    "detected",
			detect:  func() (int, int, error) { return 2560, 1440, nil },
			wantW:   2560,
			wantH:   1440,
			wantLog: "level=INFO",
		},
		{
			name:    "no display",
			detect:  func() (int, int, error) { return 0, 0, errors.New("no DISPLAY") },
			wantW:   FallbackWidth,
			wantH:   FallbackHeight,
			wantLog: "level=ERROR",
		},
		{
			name:    "zero size",
			detect:  func() (int, int, error) { return 0, 1080, nil },
			wantW:   FallbackWidth,
			wantH:   FallbackHeight,
			wantLog: "level=ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w, h := Resolution(tt.detect, logging.NewWriterLogger(&buf, logging.LevelDebug))
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Resolution() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
			if !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log = %q, want %s", buf.String(), tt.wantLog)
			}
		})
	}
}
