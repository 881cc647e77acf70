package storage

import (
	"time"

	"gorm.io/gorm"
)

// SunReading is one successful sun-data fetch.
type SunReading struct {
	gorm.Model
	FetchedAt time.Time `gorm:"index" json:"fetched_at"`
	Provider  string    `json:"provider"`

	SunriseMinutes   int `json:"sunrise_minutes"`
	SunsetMinutes    int `json:"sunset_minutes"`
	SolarNoonMinutes int `json:"solar_noon_minutes"`
	DayLengthSeconds int `json:"day_length_seconds"`
}
