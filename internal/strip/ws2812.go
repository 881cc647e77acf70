package strip

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"sunstrip/internal/clock"
)

// WS2812 drives an NRZ LED strip through an SPI port. Global brightness is
// applied in software before the frame is encoded.
type WS2812 struct {
	drawer     display.Drawer
	port       spi.PortCloser
	pixels     int
	brightness uint8
}

type WS2812Config struct {
	// SPIDev is the SPI port name, e.g. /dev/spidev0.0. Empty selects the
	// first available port.
	SPIDev     string
	Pixels     int
	SpeedKHz   int
	Brightness uint8
}

func OpenWS2812(cfg WS2812Config) (*WS2812, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	port, err := spireg.Open(cfg.SPIDev)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", cfg.SPIDev, err)
	}

	speed := cfg.SpeedKHz
	if speed <= 0 {
		speed = 2500
	}

	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: cfg.Pixels,
		Channels:  3,
		Freq:      physic.Frequency(speed) * physic.KiloHertz,
	})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("init nrzled: %w", err)
	}

	return &WS2812{
		drawer:     dev,
		port:       port,
		pixels:     cfg.Pixels,
		brightness: cfg.Brightness,
	}, nil
}

func (w *WS2812) Render(frame clock.Frame) error {
	bounds := w.drawer.Bounds()
	img := image.NewNRGBA(bounds)
	for i, c := range frame {
		if i >= bounds.Dx() {
			break
		}
		img.SetNRGBA(i, 0, color.NRGBA{
			R: scale(c.R, w.brightness),
			G: scale(c.G, w.brightness),
			B: scale(c.B, w.brightness),
			A: 255,
		})
	}
	if err := w.drawer.Draw(bounds, img, image.Point{}); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

func (w *WS2812) Halt() error {
	return w.drawer.Halt()
}

func (w *WS2812) Close() error {
	if err := w.drawer.Halt(); err != nil {
		w.port.Close()
		return err
	}
	return w.port.Close()
}

func scale(value, brightness uint8) uint8 {
	return uint8(uint16(value) * uint16(brightness) / 255)
}
