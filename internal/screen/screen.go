// Package screen detects the physical resolution instances are tiled on.
package screen

import (
	"github.com/couchsplit/couchsplit/internal/logging"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Fallback resolution when detection fails.
const (
	FallbackWidth  = 1920
	FallbackHeight = 1080
)

// Detector returns the root screen size.
type Detector func() (width, height int, err error)

// X11 reads the size of the first root window of $DISPLAY.
func X11() (int, int, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return 0, 0, err
	}
	defer conn.Close()

	root := xproto.Setup(conn).DefaultScreen(conn)
	return int(root.WidthInPixels), int(root.HeightInPixels), nil
}

// Resolution detects the screen size, falling back to 1920x1080 with an
// error logged.
func Resolution(detect Detector, logger *logging.Logger) (int, int) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if detect == nil {
		detect = X11
	}
	w, h, err := detect()
	if err != nil || w <= 0 || h <= 0 {
		logger.Error("failed to detect screen resolution, using fallback",
			"error", err,
			"fallback", "1920x1080",
		)
		return FallbackWidth, FallbackHeight
	}
	logger.Info("detected screen resolution", "width", w, "height", h)
	return w, h
}
