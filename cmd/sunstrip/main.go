package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sunstrip/config"
	"sunstrip/internal/api"
	"sunstrip/internal/clock"
	"sunstrip/internal/mqtt"
	"sunstrip/internal/renderer"
	"sunstrip/internal/storage"
	"sunstrip/internal/strip"
	"sunstrip/internal/sun"

	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sunstrip",
		Short: "LED strip daylight clock",
		Long:  "Drives an addressable LED strip as a 24-hour clock showing daylight span, hour ticks, solstice markers and the current time",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(testCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clock",
		Long:  "Start the render loop, API server, and MQTT publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			location, err := loadLocation(cfg)
			if err != nil {
				return err
			}

			mapping, painter, err := buildPainter(cfg)
			if err != nil {
				return err
			}

			driver, err := openDriver(cfg)
			if err != nil {
				return fmt.Errorf("failed to open strip driver: %w", err)
			}

			provider, err := buildProvider(cfg, location)
			if err != nil {
				return err
			}

			db, err := storage.NewDatabase(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			log.Printf("Database opened at %s", cfg.Database.Path)

			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      cfg.MQTT.Broker,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Enabled:     cfg.MQTT.Enabled,
			})
			if err != nil {
				log.Printf("Warning: MQTT connection failed: %v", err)
			} else if cfg.MQTT.Enabled {
				log.Printf("MQTT connected to %s", cfg.MQTT.Broker)
			}

			rend := renderer.NewRenderer(renderer.RendererConfig{
				Provider:  provider,
				Driver:    driver,
				Painter:   painter,
				Mapping:   mapping,
				Database:  db,
				Publisher: publisher,
				Interval:  cfg.Renderer.Interval,
				Refresh:   cfg.Sun.RefreshInterval,
				Retention: cfg.Database.Retention,
				Location:  location,
				Enabled:   cfg.Renderer.Enabled,
			})

			// Setup context for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Handle signals
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			// Start renderer in goroutine
			rendererDone := make(chan error, 1)
			go func() {
				rendererDone <- rend.Start(ctx)
			}()

			// Start API server if enabled
			var server *api.Server
			if cfg.API.Enabled {
				server = api.NewServer(api.ServerConfig{
					Port:     cfg.API.Port,
					Renderer: rend,
					Database: db,
				})

				go func() {
					if err := server.Start(); err != nil && err != http.ErrServerClosed {
						log.Printf("API server error: %v", err)
					}
				}()
			}

			log.Println("Sunstrip started. Press Ctrl+C to stop.")

			// Wait for signal
			<-sigChan
			log.Println("Shutting down...")
			cancel()

			// Let any tick in flight finish before the driver goes away.
			if err := <-rendererDone; err != nil {
				log.Printf("Renderer error: %v", err)
			}

			if server != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := server.Stop(shutdownCtx); err != nil {
					log.Printf("API server shutdown error: %v", err)
				}
				shutdownCancel()
			}

			rend.Stop()

			return nil
		},
	}
}

func renderCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a single frame",
		Long:  "Fetch sun data, paint one frame to the console driver, and print where everything lands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			location, err := loadLocation(cfg)
			if err != nil {
				return err
			}

			mapping, painter, err := buildPainter(cfg)
			if err != nil {
				return err
			}

			provider, err := buildProvider(cfg, location)
			if err != nil {
				return err
			}

			when := time.Now().In(location)
			if at != "" {
				parsed, err := time.ParseInLocation("15:04:05", at, location)
				if err != nil {
					return fmt.Errorf("invalid --at value %q: %w", at, err)
				}
				when = time.Date(when.Year(), when.Month(), when.Day(),
					parsed.Hour(), parsed.Minute(), parsed.Second(), 0, location)
			}

			rend := renderer.NewRenderer(renderer.RendererConfig{
				Provider: provider,
				Driver:   strip.NewConsole(os.Stdout),
				Painter:  painter,
				Mapping:  mapping,
				Location: location,
				Refresh:  cfg.Sun.RefreshInterval,
				Enabled:  true,
			})

			frame, err := rend.RenderOnce(cmd.Context(), when)
			if err != nil {
				return fmt.Errorf("failed to render: %w", err)
			}

			data := rend.GetSunData()
			sunrisePixel, noonPixel, sunsetPixel := painter.Markers(data)
			fmt.Printf("Time %s -> LED %d of %d (%ds per LED)\n",
				when.Format("15:04:05"), mapping.PixelOfSecond(clock.SecondOfDay(when)),
				mapping.Pixels(), mapping.SecondsPerPixel())
			fmt.Printf("Sunrise: %s (LED: %d)\n", sun.FormatMinutes(data.SunriseMinutes), sunrisePixel)
			fmt.Printf("Solar Noon: %s (LED: %d)\n", sun.FormatMinutes(data.SolarNoonMinutes), noonPixel)
			fmt.Printf("Sunset: %s (LED: %d)\n", sun.FormatMinutes(data.SunsetMinutes), sunsetPixel)
			fmt.Printf("Lit pixels: %d\n", frame.LitCount())

			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "render for this wall-clock time (HH:MM:SS) instead of now")
	return cmd
}

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch sun data once",
		Long:  "Call the configured sun data provider once and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			location, err := loadLocation(cfg)
			if err != nil {
				return err
			}

			provider, err := buildProvider(cfg, location)
			if err != nil {
				return err
			}

			data, err := provider.Fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch sun data: %w", err)
			}

			output, _ := json.MarshalIndent(data, "", "  ")
			fmt.Println(string(output))

			return nil
		},
	}
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the strip",
		Long:  "Walk a short test pattern over the configured strip driver and blank it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fmt.Printf("Testing %d-pixel strip on driver %q...\n", cfg.Strip.Pixels, cfg.Strip.Driver)

			driver, err := openDriver(cfg)
			if err != nil {
				fmt.Printf("Driver open FAILED: %v\n", err)
				return err
			}
			defer driver.Close()

			for _, c := range []clock.Color{
				clock.ColorHourTick,
				clock.ColorSolstice,
				clock.ColorDaylight,
			} {
				frame := make(clock.Frame, cfg.Strip.Pixels)
				for i := range frame {
					frame[i] = c
				}
				if err := driver.Render(frame); err != nil {
					fmt.Printf("Render FAILED: %v\n", err)
					return err
				}
				time.Sleep(500 * time.Millisecond)
			}

			if err := driver.Halt(); err != nil {
				fmt.Printf("Halt FAILED: %v\n", err)
				return err
			}

			fmt.Println("Strip test SUCCESS!")
			return nil
		},
	}
}

func loadLocation(cfg *config.Config) (*time.Location, error) {
	location, err := time.LoadLocation(cfg.Clock.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid clock timezone %q: %w", cfg.Clock.Timezone, err)
	}
	return location, nil
}

func buildPainter(cfg *config.Config) (clock.Mapping, *clock.Painter, error) {
	mapping, err := clock.NewMapping(cfg.Strip.Pixels)
	if err != nil {
		return clock.Mapping{}, nil, fmt.Errorf("invalid strip config: %w", err)
	}

	var solsticeMinutes []int
	for _, literal := range []string{
		cfg.Solstice.WinterSunrise,
		cfg.Solstice.WinterSunset,
		cfg.Solstice.SummerSunrise,
		cfg.Solstice.SummerSunset,
	} {
		minute, err := clock.ParseClock(literal)
		if err != nil {
			return clock.Mapping{}, nil, fmt.Errorf("invalid solstice config: %w", err)
		}
		solsticeMinutes = append(solsticeMinutes, minute)
	}

	return mapping, clock.NewPainter(mapping, solsticeMinutes), nil
}

func buildProvider(cfg *config.Config, location *time.Location) (sun.Provider, error) {
	switch cfg.Sun.Provider {
	case "api", "":
		return sun.NewAPIClient(cfg.Location.Latitude, cfg.Location.Longitude, location, cfg.Sun.Timeout), nil
	case "computed":
		return sun.NewComputedProvider(cfg.Location.Latitude, cfg.Location.Longitude, location), nil
	default:
		return nil, fmt.Errorf("unknown sun provider %q", cfg.Sun.Provider)
	}
}

func openDriver(cfg *config.Config) (strip.Driver, error) {
	switch cfg.Strip.Driver {
	case "console", "":
		return strip.NewConsole(os.Stdout), nil
	case "ws2812":
		return strip.OpenWS2812(strip.WS2812Config{
			SPIDev:     cfg.Strip.SPIDev,
			Pixels:     cfg.Strip.Pixels,
			SpeedKHz:   cfg.Strip.SpeedKHz,
			Brightness: cfg.Strip.Brightness,
		})
	default:
		return nil, fmt.Errorf("unknown strip driver %q", cfg.Strip.Driver)
	}
}
