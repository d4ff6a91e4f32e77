package config

import (
	"fmt"
	"strings"

	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/couchsplit/couchsplit/internal/logging"
)

// Validate lists every invalid setting.
func (c *Config) Validate() []*errors.ValidationError {
	var bad []*errors.ValidationError

	if c.RenderScale < MinRenderScale || c.RenderScale > MaxRenderScale {
		bad = append(bad, errors.NewValidationError(
			fmt.Sprintf("must be between %d and %d", MinRenderScale, MaxRenderScale),
		).WithField(KeyRenderScale).WithValue(c.RenderScale))
	}

	// ParseLevel falls back to INFO, so a round trip only holds for known names.
	if c.LogLevel != "" && !strings.EqualFold(logging.ParseLevel(c.LogLevel), c.LogLevel) {
		bad = append(bad, errors.NewValidationError("must be one of: debug, info, warn, error").
			WithField(KeyLogLevel).WithValue(c.LogLevel))
	}

	if strings.ContainsAny(c.ProtonVersion, "\n\r") {
		bad = append(bad, errors.NewValidationError("must be a single line").
			WithField(KeyProtonVersion).WithValue(c.ProtonVersion))
	}

	return bad
}

// Check is Validate folded into one error, nil when the config is valid.
func (c *Config) Check() error {
	var errs []error
	for _, e := range c.Validate() {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}
