package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	// DataDir is where the item store and imported images live.
	DataDir string `mapstructure:"DATA_DIR"`

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Snooze is how far a snoozed reminder is pushed into the future.
	Snooze time.Duration `mapstructure:"SNOOZE"`

	// QueryDebounce is the settle time for free-text search input.
	QueryDebounce time.Duration `mapstructure:"QUERY_DEBOUNCE"`

	// FetchTimeout bounds thumbnail and preview fetches.
	FetchTimeout time.Duration `mapstructure:"FETCH_TIMEOUT"`

	// PreviewEdge is the long-edge bound for notification preview images.
	PreviewEdge int `mapstructure:"PREVIEW_EDGE"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("DATA_DIR", "./sharebin_data")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SNOOZE", 10*time.Minute)
	viper.SetDefault("QUERY_DEBOUNCE", 200*time.Millisecond)
	viper.SetDefault("FETCH_TIMEOUT", 5*time.Second)
	viper.SetDefault("PREVIEW_EDGE", 512)

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err = viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err = viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if config.DataDir == "" {
		return Config{}, fmt.Errorf("DATA_DIR is not set")
	}
	if config.Snooze <= 0 {
		return Config{}, fmt.Errorf("SNOOZE must be positive, got %s", config.Snooze)
	}

	return config, nil
}
