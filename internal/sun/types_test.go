package sun_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sunstrip/internal/sun"
)

func TestExpired(t *testing.T) {
	now := time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC)
	maxAge := 24 * time.Hour

	var nilData *sun.Data
	assert.True(t, nilData.Expired(now, maxAge), "nil data")
	assert.True(t, (&sun.Data{}).Expired(now, maxAge), "never fetched")

	fresh := &sun.Data{FetchedAt: now.Add(-time.Hour)}
	assert.False(t, fresh.Expired(now, maxAge))

	// Exactly at the boundary is not yet expired; one instant past is.
	boundary := &sun.Data{FetchedAt: now.Add(-maxAge)}
	assert.False(t, boundary.Expired(now, maxAge))
	stale := &sun.Data{FetchedAt: now.Add(-maxAge - time.Millisecond)}
	assert.True(t, stale.Expired(now, maxAge))
}

func TestValidate(t *testing.T) {
	good := &sun.Data{
		SunriseMinutes:   527,
		SunsetMinutes:    962,
		SolarNoonMinutes: 744,
		DayLengthSeconds: 26131,
	}
	assert.NoError(t, good.Validate())
	assert.NoError(t, (&sun.Data{}).Validate(), "zero value is in range")

	tests := []struct {
		name string
		data sun.Data
	}{
		{"negative sunrise", sun.Data{SunriseMinutes: -1}},
		{"sunset past midnight", sun.Data{SunsetMinutes: 1440}},
		{"noon out of range", sun.Data{SolarNoonMinutes: 5000}},
		{"negative day length", sun.Data{DayLengthSeconds: -1}},
		{"day length over a day", sun.Data{DayLengthSeconds: 86401}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.data.Validate())
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "00:00", sun.FormatMinutes(0))
	assert.Equal(t, "08:47", sun.FormatMinutes(527))
	assert.Equal(t, "12:24", sun.FormatMinutes(744))
	assert.Equal(t, "23:59", sun.FormatMinutes(1439))
}
