package clock

import (
	"sunstrip/internal/sun"
)

type Color struct {
	R, G, B uint8
}

// Frame is one full strip's worth of pixels, rebuilt from scratch every paint.
type Frame []Color

var (
	ColorOff      = Color{}
	ColorDaylight = Color{R: 0, G: 0, B: 8}
	ColorHourTick = Color{R: 32, G: 0, B: 0}
	ColorSolstice = Color{R: 0, G: 255, B: 0}
	ColorNow      = Color{R: 255, G: 255, B: 0}
)

func (f Frame) LitCount() int {
	n := 0
	for _, c := range f {
		if c != ColorOff {
			n++
		}
	}
	return n
}

// Painter turns a second-of-day plus sun data into a frame. The solstice
// marker pixels are fixed for the painter's lifetime.
type Painter struct {
	mapping        Mapping
	solsticePixels []int
}

// NewPainter precomputes pixel indices for the given solstice minute-of-day
// markers.
func NewPainter(mapping Mapping, solsticeMinutes []int) *Painter {
	pixels := make([]int, 0, len(solsticeMinutes))
	for _, m := range solsticeMinutes {
		pixels = append(pixels, mapping.PixelOfMinute(m))
	}
	return &Painter{
		mapping:        mapping,
		solsticePixels: pixels,
	}
}

// Paint builds the frame for one tick. Later layers win: daylight span, hour
// ticks, solstice markers, then the current-time marker. The solar-noon pixel
// is never lit by any layer.
func (p *Painter) Paint(secondOfDay int, data *sun.Data) Frame {
	if data == nil {
		data = &sun.Data{}
	}

	frame := make(Frame, p.mapping.Pixels())

	sunrisePixel := p.mapping.PixelOfMinute(data.SunriseMinutes)
	sunsetPixel := p.mapping.PixelOfMinute(data.SunsetMinutes)
	noonPixel := p.mapping.PixelOfMinute(data.SolarNoonMinutes)
	nowPixel := p.mapping.PixelOfSecond(secondOfDay)

	// Daylight span, inclusive of both endpoints, clamped to the buffer.
	lo, hi := sunrisePixel, sunsetPixel
	if lo < 0 {
		lo = 0
	}
	if hi > len(frame)-1 {
		hi = len(frame) - 1
	}
	for i := lo; i <= hi; i++ {
		if i == noonPixel || frame[i] != ColorOff {
			continue
		}
		frame[i] = ColorDaylight
	}

	// Hour ticks.
	for hour := 0; hour < 24; hour++ {
		pixel := p.mapping.PixelOfSecond(hour * 3600)
		if pixel >= 0 && pixel < len(frame) && pixel != noonPixel {
			frame[pixel] = ColorHourTick
		}
	}

	// Solstice markers overwrite anything beneath them, except the forced-off
	// solar-noon pixel.
	for _, pixel := range p.solsticePixels {
		if pixel >= 0 && pixel < len(frame) && pixel != noonPixel {
			frame[pixel] = ColorSolstice
		}
	}

	// Current time, only while the sun is up and never on the noon pixel.
	if nowPixel >= 0 && nowPixel < len(frame) &&
		nowPixel != noonPixel &&
		nowPixel >= sunrisePixel && nowPixel <= sunsetPixel {
		frame[nowPixel] = ColorNow
	}

	return frame
}

// Markers reports where a given sun dataset lands on the strip, for
// diagnostics and the API.
func (p *Painter) Markers(data *sun.Data) (sunrisePixel, noonPixel, sunsetPixel int) {
	if data == nil {
		data = &sun.Data{}
	}
	return p.mapping.PixelOfMinute(data.SunriseMinutes),
		p.mapping.PixelOfMinute(data.SolarNoonMinutes),
		p.mapping.PixelOfMinute(data.SunsetMinutes)
}
