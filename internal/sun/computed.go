package sun

import (
	"context"
	"fmt"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// ComputedProvider calculates sun times locally instead of calling the web
// API. Useful for offline deployments; selected with sun.provider "computed".
type ComputedProvider struct {
	latitude  float64
	longitude float64
	location  *time.Location
}

func NewComputedProvider(latitude, longitude float64, location *time.Location) *ComputedProvider {
	if location == nil {
		location = time.UTC
	}
	return &ComputedProvider{
		latitude:  latitude,
		longitude: longitude,
		location:  location,
	}
}

func (p *ComputedProvider) Fetch(ctx context.Context) (*Data, error) {
	now := time.Now().In(p.location)

	rise, set := sunrise.SunriseSunset(p.latitude, p.longitude, now.Year(), now.Month(), now.Day())
	if rise.IsZero() || set.IsZero() {
		return nil, fmt.Errorf("no sunrise/sunset at %.4f,%.4f on %s (polar day or night)",
			p.latitude, p.longitude, now.Format("2006-01-02"))
	}

	noon := rise.Add(set.Sub(rise) / 2)

	data := &Data{
		Provider:         "computed",
		SunriseMinutes:   minuteOfDay(rise, p.location),
		SunsetMinutes:    minuteOfDay(set, p.location),
		SolarNoonMinutes: minuteOfDay(noon, p.location),
		DayLengthSeconds: int(set.Sub(rise).Seconds()),
		FetchedAt:        time.Now(),
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("computed sun data: %w", err)
	}

	return data, nil
}
