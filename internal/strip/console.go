package strip

import (
	"fmt"
	"io"
	"os"

	"sunstrip/internal/clock"
)

// Console prints a compact summary of each frame instead of driving hardware.
// Useful for headless runs and the render subcommand.
type Console struct {
	Count int

	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (d *Console) Render(frame clock.Frame) error {
	d.Count++

	now, solstices := -1, []int{}
	for i, c := range frame {
		switch c {
		case clock.ColorNow:
			now = i
		case clock.ColorSolstice:
			solstices = append(solstices, i)
		}
	}

	_, err := fmt.Fprintf(d.w, "[frame %04d] lit=%d/%d now=%d solstices=%v\n",
		d.Count, frame.LitCount(), len(frame), now, solstices)
	return err
}

func (d *Console) Halt() error {
	_, err := fmt.Fprintln(d.w, "[halt]")
	return err
}

func (d *Console) Close() error {
	return nil
}
