package config

import (
	"github.com/spf13/viper"
)

const EnvEndpointID = "env_endpoint"

// applyEnvEndpoint builds a one endpoint setup from APIMONITOR_URL,
// APIMONITOR_TIMEOUT, APIMONITOR_INTERVAL and APIMONITOR_SLACK_WEBHOOK.
func applyEnvEndpoint(v *viper.Viper, cfg *Config) {
	_ = v.BindEnv("env.url", EnvPrefix+"_URL")
	_ = v.BindEnv("env.timeout", EnvPrefix+"_TIMEOUT")
	_ = v.BindEnv("env.interval", EnvPrefix+"_INTERVAL")
	_ = v.BindEnv("env.slack_webhook", EnvPrefix+"_SLACK_WEBHOOK")

	url := v.GetString("env.url")
	if url == "" {
		return
	}

	endpoint := EndpointConfig{ID: EnvEndpointID, URL: url}
	if v.IsSet("env.timeout") {
		timeout := v.GetFloat64("env.timeout")
		endpoint.TimeoutSeconds = &timeout
	}
	if v.IsSet("env.interval") {
		interval := v.GetInt("env.interval")
		endpoint.CheckIntervalSeconds = &interval
	}
	cfg.Endpoints = []EndpointConfig{endpoint}

	if cfg.Notifications == nil {
		cfg.Notifications = make(map[string]NotificationConfig)
	}
	if _, ok := cfg.Notifications["console"]; !ok {
		cfg.Notifications["console"] = NotificationConfig{Type: "console"}
	}

	if webhook := v.GetString("env.slack_webhook"); webhook != "" {
		cfg.Notifications["slack"] = NotificationConfig{
			Type:     "slack",
			Settings: map[string]interface{}{"webhook_url": webhook},
		}
	}
}
