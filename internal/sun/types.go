package sun

import (
	"context"
	"fmt"
	"time"
)

type Provider interface {
	Fetch(ctx context.Context) (*Data, error)
}

// Data is one day's sun times, already converted to minute-of-day in the
// deployment's clock location. It is replaced wholesale on every successful
// fetch and never partially mutated.
type Data struct {
	Provider         string    `json:"provider"`
	SunriseMinutes   int       `json:"sunrise_minutes"`
	SunsetMinutes    int       `json:"sunset_minutes"`
	SolarNoonMinutes int       `json:"solar_noon_minutes"`
	DayLengthSeconds int       `json:"day_length_seconds"`
	FetchedAt        time.Time `json:"fetched_at"`
}

// Expired reports whether a fetch is due: never fetched, or older than maxAge.
func (d *Data) Expired(now time.Time, maxAge time.Duration) bool {
	if d == nil || d.FetchedAt.IsZero() {
		return true
	}
	return now.Sub(d.FetchedAt) > maxAge
}

func (d *Data) Validate() error {
	for _, m := range []struct {
		name  string
		value int
	}{
		{"sunrise", d.SunriseMinutes},
		{"sunset", d.SunsetMinutes},
		{"solar noon", d.SolarNoonMinutes},
	} {
		if m.value < 0 || m.value >= 1440 {
			return fmt.Errorf("%s minute %d out of range [0,1440)", m.name, m.value)
		}
	}
	if d.DayLengthSeconds < 0 || d.DayLengthSeconds > 86400 {
		return fmt.Errorf("day length %ds out of range [0,86400]", d.DayLengthSeconds)
	}
	return nil
}

// FormatMinutes renders a minute-of-day as HH:MM for diagnostics.
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func minuteOfDay(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	return local.Hour()*60 + local.Minute()
}
