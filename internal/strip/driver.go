// Package strip is the display sink: anything that can show a frame of pixels.
package strip

import (
	"sunstrip/internal/clock"
)

type Driver interface {
	// Render pushes one full frame to the display.
	Render(frame clock.Frame) error
	// Halt blanks the display.
	Halt() error
	// Close releases resources.
	Close() error
}
