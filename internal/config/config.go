// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port int `mapstructure:"port"`
	Data struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"data"`
	Watch struct {
		Interval            int  `mapstructure:"interval"`              // minutes between reconcile passes
		FetchDelay          int  `mapstructure:"fetch_delay"`           // seconds between per-creator fetches
		FallbackFirstResult bool `mapstructure:"fallback_first_result"` // accept the top search hit when no exact match
	} `mapstructure:"watch"`
	Cache struct {
		TTL           int `mapstructure:"ttl"`            // minutes before a cached lookup expires
		SweepInterval int `mapstructure:"sweep_interval"` // minutes between sweeps of expired entries
	} `mapstructure:"cache"`
	Directory struct {
		ID       string `mapstructure:"id"` // "bilibili" or "mockbili"
		BaseURL  string `mapstructure:"base_url"`
		SpaceURL string `mapstructure:"space_url"`
		Timeout  int    `mapstructure:"timeout"` // seconds
		Cookie   string `mapstructure:"cookie"`
	} `mapstructure:"directory"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with a "BILISEARCH_"
	// prefix. e.g., BILISEARCH_DATA_PATH overrides the `data.path` key.
	viper.SetEnvPrefix("BILISEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("data.path", "./watchlist.json")
	viper.SetDefault("watch.interval", 10)
	viper.SetDefault("watch.fetch_delay", 3)
	viper.SetDefault("watch.fallback_first_result", true)
	viper.SetDefault("cache.ttl", 3)
	viper.SetDefault("cache.sweep_interval", 3)
	viper.SetDefault("directory.id", "bilibili")
	viper.SetDefault("directory.base_url", "https://api.bilibili.com")
	viper.SetDefault("directory.space_url", "https://api.bilibili.com")
	viper.SetDefault("directory.timeout", 10)
	viper.SetDefault("directory.cookie", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
