package renderer

import (
	"context"
	"log"
	"sync"
	"time"

	"sunstrip/internal/clock"
	"sunstrip/internal/mqtt"
	"sunstrip/internal/storage"
	"sunstrip/internal/strip"
	"sunstrip/internal/sun"
)

// Renderer owns the render loop: once per tick it refreshes sun data when
// stale, paints the frame, and pushes it to the strip. One goroutine owns the
// frame and the cached sun data; the mutex only guards the snapshot read by
// the API.
type Renderer struct {
	provider  sun.Provider
	driver    strip.Driver
	painter   *clock.Painter
	mapping   clock.Mapping
	db        *storage.Database
	publisher *mqtt.Publisher
	interval  time.Duration
	refresh   time.Duration
	retention time.Duration
	location  *time.Location
	enabled   bool

	mu          sync.RWMutex
	sunData     *sun.Data
	latestFrame clock.Frame
	lastPixel   int
	isRunning   bool
}

type RendererConfig struct {
	Provider  sun.Provider
	Driver    strip.Driver
	Painter   *clock.Painter
	Mapping   clock.Mapping
	Database  *storage.Database
	Publisher *mqtt.Publisher
	Interval  time.Duration
	Refresh   time.Duration
	Retention time.Duration
	Location  *time.Location
	Enabled   bool
}

func NewRenderer(cfg RendererConfig) *Renderer {
	interval := cfg.Interval
	if interval == 0 {
		interval = time.Second
	}
	refresh := cfg.Refresh
	if refresh == 0 {
		refresh = 24 * time.Hour
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	return &Renderer{
		provider:  cfg.Provider,
		driver:    cfg.Driver,
		painter:   cfg.Painter,
		mapping:   cfg.Mapping,
		db:        cfg.Database,
		publisher: cfg.Publisher,
		interval:  interval,
		refresh:   refresh,
		retention: cfg.Retention,
		location:  location,
		enabled:   cfg.Enabled,
		lastPixel: -1,
	}
}

func (r *Renderer) Start(ctx context.Context) error {
	if !r.enabled {
		log.Println("Renderer is disabled")
		return nil
	}

	r.mu.Lock()
	r.isRunning = true
	r.mu.Unlock()

	log.Printf("Starting renderer with interval %s (%d pixels, %ds per pixel)",
		r.interval, r.mapping.Pixels(), r.mapping.SecondsPerPixel())

	// Initial tick
	r.tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Renderer stopped")
			r.mu.Lock()
			r.isRunning = false
			r.mu.Unlock()
			return nil
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Renderer) tick(ctx context.Context) {
	now := time.Now().In(r.location)

	data := r.GetSunData()
	if data.Expired(now, r.refresh) {
		data = r.refreshSun(ctx, data)
	}

	secondOfDay := clock.SecondOfDay(now)
	pixel := r.mapping.PixelOfSecond(secondOfDay)
	frame := r.painter.Paint(secondOfDay, data)

	if err := r.driver.Render(frame); err != nil {
		log.Printf("Error rendering frame: %v", err)
		return
	}

	r.mu.Lock()
	r.latestFrame = frame
	moved := pixel != r.lastPixel
	r.lastPixel = pixel
	r.mu.Unlock()

	sunrisePixel, noonPixel, sunsetPixel := r.painter.Markers(data)
	log.Printf("Current LED: %d (Hour: %d, Minute: %d)", pixel, now.Hour(), now.Minute())
	log.Printf("Sunrise: %s (LED: %d), Solar Noon: %s (LED: %d), Sunset: %s (LED: %d)",
		sun.FormatMinutes(data.SunriseMinutes), sunrisePixel,
		sun.FormatMinutes(data.SolarNoonMinutes), noonPixel,
		sun.FormatMinutes(data.SunsetMinutes), sunsetPixel)

	if moved && r.publisher != nil {
		if err := r.publisher.PublishPixel(pixel); err != nil {
			log.Printf("Error publishing pixel: %v", err)
		}
	}
}

// refreshSun fetches a new day of sun data. On any failure the previous data
// is kept untouched; stale data is the degraded mode, not an error state.
func (r *Renderer) refreshSun(ctx context.Context, previous *sun.Data) *sun.Data {
	data, err := r.provider.Fetch(ctx)
	if err != nil {
		log.Printf("Error fetching sun data: %v (keeping previous)", err)
		return previous
	}

	r.mu.Lock()
	r.sunData = data
	r.mu.Unlock()

	log.Printf("Sun data updated: sunrise=%s sunset=%s solar_noon=%s day_length=%ds",
		sun.FormatMinutes(data.SunriseMinutes),
		sun.FormatMinutes(data.SunsetMinutes),
		sun.FormatMinutes(data.SolarNoonMinutes),
		data.DayLengthSeconds)

	if r.db != nil {
		if err := r.db.SaveReading(data); err != nil {
			log.Printf("Error saving sun reading: %v", err)
		}
		// Fetches land at most once a day, so retention runs on the same
		// cadence.
		if r.retention > 0 {
			if err := r.db.CleanOldReadings(r.retention); err != nil {
				log.Printf("Error cleaning old sun readings: %v", err)
			}
		}
	}

	if r.publisher != nil {
		if err := r.publisher.PublishSun(data); err != nil {
			log.Printf("Error publishing sun data: %v", err)
		}
	}

	return data
}

// GetSunData returns the cached sun data; a zero-value Data before the first
// successful fetch.
func (r *Renderer) GetSunData() *sun.Data {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.sunData == nil {
		return &sun.Data{}
	}
	return r.sunData
}

func (r *Renderer) GetLatestFrame() clock.Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latestFrame
}

func (r *Renderer) CurrentPixel() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastPixel
}

func (r *Renderer) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isRunning
}

func (r *Renderer) Mapping() clock.Mapping {
	return r.mapping
}

// RenderOnce runs a single fetch-and-paint cycle at the given wall-clock
// time, for the render subcommand.
func (r *Renderer) RenderOnce(ctx context.Context, at time.Time) (clock.Frame, error) {
	data := r.GetSunData()
	if data.Expired(at, r.refresh) {
		data = r.refreshSun(ctx, data)
	}

	frame := r.painter.Paint(clock.SecondOfDay(at.In(r.location)), data)
	if err := r.driver.Render(frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func (r *Renderer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.driver != nil {
		if err := r.driver.Halt(); err != nil {
			log.Printf("Error halting strip: %v", err)
		}
		r.driver.Close()
	}
	if r.publisher != nil {
		r.publisher.Close()
	}
	if r.db != nil {
		r.db.Close()
	}
}
