package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Strip    StripConfig    `mapstructure:"strip"`
	Location LocationConfig `mapstructure:"location"`
	Sun      SunConfig      `mapstructure:"sun"`
	Clock    ClockConfig    `mapstructure:"clock"`
	Renderer RendererConfig `mapstructure:"renderer"`
	Solstice SolsticeConfig `mapstructure:"solstice"`
	API      APIConfig      `mapstructure:"api"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Database DatabaseConfig `mapstructure:"database"`
}

type StripConfig struct {
	Driver     string `mapstructure:"driver"`
	Pixels     int    `mapstructure:"pixels"`
	SPIDev     string `mapstructure:"spi_dev"`
	SpeedKHz   int    `mapstructure:"speed_khz"`
	Brightness uint8  `mapstructure:"brightness"`
}

type LocationConfig struct {
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

type SunConfig struct {
	Provider        string        `mapstructure:"provider"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type ClockConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type RendererConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Enabled  bool          `mapstructure:"enabled"`
}

// SolsticeConfig holds the four fixed marker times as HH:MM strings,
// taken from timeanddate.com for the configured location.
type SolsticeConfig struct {
	WinterSunrise string `mapstructure:"winter_sunrise"`
	WinterSunset  string `mapstructure:"winter_sunset"`
	SummerSunrise string `mapstructure:"summer_sunrise"`
	SummerSunset  string `mapstructure:"summer_sunset"`
}

type APIConfig struct {
	Port    int  `mapstructure:"port"`
	Enabled bool `mapstructure:"enabled"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type DatabaseConfig struct {
	Path      string        `mapstructure:"path"`
	Retention time.Duration `mapstructure:"retention"`
}

func Load(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/sunstrip")
	}

	// Set defaults
	viper.SetDefault("strip.driver", "console")
	viper.SetDefault("strip.pixels", 332)
	viper.SetDefault("strip.spi_dev", "")
	viper.SetDefault("strip.speed_khz", 2500)
	viper.SetDefault("strip.brightness", 50)
	viper.SetDefault("location.latitude", 51.4785810)
	viper.SetDefault("location.longitude", -0.0012920)
	viper.SetDefault("sun.provider", "api")
	viper.SetDefault("sun.refresh_interval", "24h")
	viper.SetDefault("sun.timeout", "10s")
	// The reference deployment synced its clock with a zero UTC offset,
	// so "local" time is UTC unless a deployment overrides it.
	viper.SetDefault("clock.timezone", "UTC")
	viper.SetDefault("renderer.interval", "1s")
	viper.SetDefault("renderer.enabled", true)
	viper.SetDefault("solstice.winter_sunrise", "08:47")
	viper.SetDefault("solstice.winter_sunset", "16:02")
	viper.SetDefault("solstice.summer_sunrise", "03:47")
	viper.SetDefault("solstice.summer_sunset", "20:34")
	viper.SetDefault("api.port", 8046)
	viper.SetDefault("api.enabled", true)
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic_prefix", "sunstrip")
	viper.SetDefault("mqtt.client_id", "sunstrip")
	viper.SetDefault("database.path", "./sunstrip.db")
	viper.SetDefault("database.retention", "8760h")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
