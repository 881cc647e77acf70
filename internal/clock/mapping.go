// Package clock maps wall-clock time onto strip pixel indices and paints the
// 24-hour clock frame. Everything here is pure arithmetic over the frame; no
// clock reads and no I/O.
package clock

import (
	"fmt"
	"time"
)

const (
	SecondsPerDay = 24 * 60 * 60
	MinutesPerDay = 24 * 60
)

// Mapping divides the day into N equal pixel-sized slices. 86400/N truncates,
// so the last pixel covers the remainder seconds on top of its own slice.
type Mapping struct {
	pixels          int
	secondsPerPixel int
}

func NewMapping(pixels int) (Mapping, error) {
	if pixels <= 0 || pixels > SecondsPerDay {
		return Mapping{}, fmt.Errorf("pixel count %d out of range [1,%d]", pixels, SecondsPerDay)
	}
	return Mapping{
		pixels:          pixels,
		secondsPerPixel: SecondsPerDay / pixels,
	}, nil
}

func (m Mapping) Pixels() int {
	return m.pixels
}

func (m Mapping) SecondsPerPixel() int {
	return m.secondsPerPixel
}

// PixelOfSecond maps a second-of-day onto a pixel index in [0, N-1].
func (m Mapping) PixelOfSecond(second int) int {
	return m.clamp(second / m.secondsPerPixel)
}

// PixelOfMinute maps a minute-of-day onto a pixel index in [0, N-1].
func (m Mapping) PixelOfMinute(minute int) int {
	return m.clamp(minute * 60 / m.secondsPerPixel)
}

func (m Mapping) clamp(pixel int) int {
	if pixel < 0 {
		return 0
	}
	if pixel >= m.pixels {
		return m.pixels - 1
	}
	return pixel
}

// ParseClock converts an HH:MM literal to a minute-of-day.
func ParseClock(value string) (int, error) {
	var hours, minutes int
	if _, err := fmt.Sscanf(value, "%d:%d", &hours, &minutes); err != nil {
		return 0, fmt.Errorf("clock literal %q: %w", value, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock literal %q out of range", value)
	}
	return hours*60 + minutes, nil
}

// SecondOfDay extracts the second-of-day from a wall-clock reading.
func SecondOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
