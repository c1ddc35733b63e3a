package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

func ExampleConfig() *Config {
	interval60, interval300 := 60, 300
	timeout5, timeout10 := 5.0, 10.0
	sla := 3000.0
	disabled := false
	maxPerHour := 5

	return &Config{
		LogLevel:             "INFO",
		LogFormat:            "text",
		MaxHistoryDays:       30,
		DefaultTimeout:       10,
		DefaultInterval:      300,
		DefaultRetries:       3,
		ShutdownGraceSeconds: 10,
		Server: ServerConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8080,
			Mode:    "release",
		},
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			User:          "apimonitor",
			Password:      "apimonitor",
			DBName:        "apimonitor",
			SSLMode:       "disable",
			MaxConns:      4,
			RetentionDays: 90,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Endpoints: []EndpointConfig{
			{
				ID:                   "api_health",
				URL:                  "https://httpbin.org/status/200",
				Method:               "GET",
				CheckIntervalSeconds: &interval60,
				ExpectedStatusCodes:  []int{200},
				TimeoutSeconds:       &timeout5,
			},
			{
				ID:                   "api_slow",
				URL:                  "https://httpbin.org/delay/2",
				Method:               "GET",
				CheckIntervalSeconds: &interval300,
				ExpectedStatusCodes:  []int{200},
				SLAResponseTimeMs:    &sla,
				TimeoutSeconds:       &timeout10,
			},
		},
		Notifications: map[string]NotificationConfig{
			"console": {
				Type: "console",
			},
			"slack": {
				Type:                    "slack",
				Enabled:                 &disabled,
				MaxNotificationsPerHour: &maxPerHour,
				Settings: map[string]interface{}{
					"webhook_url": "https://hooks.slack.com/services/YOUR/SLACK/WEBHOOK",
				},
			},
		},
	}
}

// Write stores c at path. The format follows the file extension (yaml, yml
// or json). An existing file is only replaced when overwrite is set.
func (c *Config) Write(path string, overwrite bool) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	var values map[string]interface{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	v := viper.New()
	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if overwrite {
		err = v.WriteConfigAs(path)
	} else {
		err = v.SafeWriteConfigAs(path)
	}
	if err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
