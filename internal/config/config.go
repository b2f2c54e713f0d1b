package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration, loaded from configs/config.yaml
// with environment-variable overrides.
type Config struct {
	Environment   string `mapstructure:"environment"`
	ServerAddress string `mapstructure:"server_address"`

	// DBSource is the Postgres/PostGIS connection string for the local
	// landmark database. Optional: when empty, reverse geocoding skips the
	// landmark fallback.
	DBSource string `mapstructure:"db_source"`

	Backend BackendConfig `mapstructure:"backend"`
	Geocode GeocodeConfig `mapstructure:"geocode"`
	Tracker TrackerConfig `mapstructure:"tracker"`
}

// BackendConfig selects the upstream pressing API by deployment environment.
// The fallback URL is used when the primary fails the /ping probe.
type BackendConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	FallbackURL string        `mapstructure:"fallback_url"`
	Token       string        `mapstructure:"token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// GeocodeConfig configures the third-party reverse-geocoding provider.
type GeocodeConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	AccessToken string        `mapstructure:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// TrackerConfig carries the real-time tracking defaults.
type TrackerConfig struct {
	AutoSaveThresholdM float64       `mapstructure:"auto_save_threshold_m"`
	HistorySize        int           `mapstructure:"history_size"`
	WatchTimeout       time.Duration `mapstructure:"watch_timeout"`
}

// LoadConfig reads configuration from the given directory.
func LoadConfig(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("environment", "dev")
	viper.SetDefault("server_address", "0.0.0.0:8080")
	viper.SetDefault("backend.timeout", "10s")
	viper.SetDefault("geocode.timeout", "4s")
	viper.SetDefault("tracker.auto_save_threshold_m", 50.0)
	viper.SetDefault("tracker.history_size", 10)
	viper.SetDefault("tracker.watch_timeout", "12s")

	viper.AutomaticEnv()

	var config Config
	if err := viper.ReadInConfig(); err != nil {
		return config, err
	}
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	// Dev environments talk to a local backend and should fail fast.
	if config.Environment == "dev" && !viper.IsSet("backend.timeout") {
		config.Backend.Timeout = 5 * time.Second
	}

	return config, nil
}
