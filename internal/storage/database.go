package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sunstrip/internal/sun"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(path string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(&SunReading{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) SaveReading(data *sun.Data) error {
	reading := &SunReading{
		FetchedAt:        data.FetchedAt,
		Provider:         data.Provider,
		SunriseMinutes:   data.SunriseMinutes,
		SunsetMinutes:    data.SunsetMinutes,
		SolarNoonMinutes: data.SolarNoonMinutes,
		DayLengthSeconds: data.DayLengthSeconds,
	}

	return d.db.Create(reading).Error
}

func (d *Database) GetLatestReading() (*SunReading, error) {
	var reading SunReading
	result := d.db.Order("fetched_at desc").First(&reading)
	if result.Error != nil {
		return nil, result.Error
	}
	return &reading, nil
}

func (d *Database) GetReadingsWithLimit(limit int) ([]SunReading, error) {
	var readings []SunReading
	result := d.db.Order("fetched_at desc").Limit(limit).Find(&readings)
	if result.Error != nil {
		return nil, result.Error
	}
	return readings, nil
}

func (d *Database) GetReadingsByRange(from, to time.Time) ([]SunReading, error) {
	var readings []SunReading
	result := d.db.Where("fetched_at BETWEEN ? AND ?", from, to).
		Order("fetched_at desc").
		Find(&readings)
	if result.Error != nil {
		return nil, result.Error
	}
	return readings, nil
}

func (d *Database) CleanOldReadings(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return d.db.Where("fetched_at < ?", cutoff).Delete(&SunReading{}).Error
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
