// This test file verifies the configuration loading logic using Viper.

package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults when no config file", func(t *testing.T) {
		// Ensure no config file exists for this test
		os.Remove("config.yml")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		// Check if default values are set
		if cfg.Port != 8080 {
			t.Errorf("Expected default port 8080, got %d", cfg.Port)
		}
		if cfg.Data.Path != "./watchlist.json" {
			t.Errorf("Expected default data path './watchlist.json', got '%s'", cfg.Data.Path)
		}
		if cfg.Watch.Interval != 10 {
			t.Errorf("Expected default watch interval 10, got %d", cfg.Watch.Interval)
		}
		if cfg.Cache.TTL != 3 {
			t.Errorf("Expected default cache TTL 3, got %d", cfg.Cache.TTL)
		}
		if cfg.Directory.Timeout != 10 {
			t.Errorf("Expected default directory timeout 10, got %d", cfg.Directory.Timeout)
		}
		if !cfg.Watch.FallbackFirstResult {
			t.Error("Expected fallback_first_result to default to true")
		}
	})

	t.Run("Loads from config file", func(t *testing.T) {
		// Create a temporary config file for this test
		configContent := `
port: 9999
data:
  path: "/tmp/test-watchlist.json"
watch:
  interval: 5
  fetch_delay: 1
directory:
  base_url: "http://localhost:9000"
unknown_setting: "should be ignored"
`
		// Create the config file in the current directory so Viper can find it.
		// Note: `t.TempDir()` is not used here because Viper looks in the CWD.
		configPath := "config.yml"
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write test config file: %v", err)
		}
		// Clean up the file after the test
		defer os.Remove(configPath)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		// Check if values from the file were loaded
		if cfg.Port != 9999 {
			t.Errorf("Expected port 9999, got %d", cfg.Port)
		}
		if cfg.Data.Path != "/tmp/test-watchlist.json" {
			t.Errorf("Expected data path '/tmp/test-watchlist.json', got '%s'", cfg.Data.Path)
		}
		if cfg.Watch.Interval != 5 {
			t.Errorf("Expected watch interval 5, got %d", cfg.Watch.Interval)
		}
		if cfg.Directory.BaseURL != "http://localhost:9000" {
			t.Errorf("Expected directory base_url 'http://localhost:9000', got '%s'", cfg.Directory.BaseURL)
		}
		if cfg.Cache.SweepInterval != 3 {
			t.Errorf("Expected default cache sweep interval of 3, got %d", cfg.Cache.SweepInterval)
		}
	})
}
