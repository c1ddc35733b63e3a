package config

import (
	"ApiMonitor/internal/monitor/domain"
	"ApiMonitor/internal/shared/constants"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const EnvPrefix = "APIMONITOR"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	LogLevel             string  `mapstructure:"log_level" json:"log_level"`
	LogFormat            string  `mapstructure:"log_format" json:"log_format"`
	MaxHistoryDays       int     `mapstructure:"max_history_days" json:"max_history_days"`
	DefaultTimeout       float64 `mapstructure:"default_timeout_seconds" json:"default_timeout_seconds"`
	DefaultInterval      int     `mapstructure:"default_interval_seconds" json:"default_interval_seconds"`
	DefaultRetries       int     `mapstructure:"default_retries" json:"default_retries"`
	ShutdownGraceSeconds int     `mapstructure:"shutdown_grace_seconds" json:"shutdown_grace_seconds"`

	Server   ServerConfig   `mapstructure:"server" json:"server"`
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Redis    RedisConfig    `mapstructure:"redis" json:"redis"`

	Endpoints     []EndpointConfig              `mapstructure:"endpoints" json:"endpoints"`
	// Notifications is keyed by channel id. Viper lowercases map keys when
	// reading a file, so "Slack_Critical" in YAML becomes "slack_critical".
	Notifications map[string]NotificationConfig `mapstructure:"notifications" json:"notifications"`

	specs    []domain.EndpointSpec
	channels []domain.ChannelConfig
}

type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Host    string `mapstructure:"host" json:"host"`
	Port    int    `mapstructure:"port" json:"port"`
	Mode    string `mapstructure:"mode" json:"mode"`
}

type DatabaseConfig struct {
	Enabled       bool   `mapstructure:"enabled" json:"enabled"`
	URL           string `mapstructure:"url" json:"url,omitempty"`
	Host          string `mapstructure:"host" json:"host"`
	Port          int    `mapstructure:"port" json:"port"`
	User          string `mapstructure:"user" json:"user"`
	Password      string `mapstructure:"password" json:"password"`
	DBName        string `mapstructure:"dbname" json:"dbname"`
	SSLMode       string `mapstructure:"sslmode" json:"sslmode"`
	MaxConns      int32  `mapstructure:"max_conns" json:"max_conns"`
	RetentionDays int    `mapstructure:"retention_days" json:"retention_days"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" json:"addr"`
	Password string `mapstructure:"password" json:"password"`
	DB       int    `mapstructure:"db" json:"db"`
}

// EndpointConfig is the file form of an endpoint. Nil fields take the global defaults.
type EndpointConfig struct {
	ID                     string            `mapstructure:"id" json:"id"`
	URL                    string            `mapstructure:"url" json:"url"`
	Method                 string            `mapstructure:"method" json:"method,omitempty"`
	Headers                map[string]string `mapstructure:"headers" json:"headers,omitempty"`
	Body                   string            `mapstructure:"body" json:"body,omitempty"`
	TimeoutSeconds         *float64          `mapstructure:"timeout_seconds" json:"timeout_seconds,omitempty"`
	CheckIntervalSeconds   *int              `mapstructure:"check_interval_seconds" json:"check_interval_seconds,omitempty"`
	MaxRetries             *int              `mapstructure:"max_retries" json:"max_retries,omitempty"`
	ExpectedStatusCodes    []int             `mapstructure:"expected_status_codes" json:"expected_status_codes,omitempty"`
	ResponseContains       string            `mapstructure:"response_contains" json:"response_contains,omitempty"`
	ExpectedResponseTimeMs *float64          `mapstructure:"expected_response_time_ms" json:"expected_response_time_ms,omitempty"`
	SLAResponseTimeMs      *float64          `mapstructure:"sla_response_time_ms" json:"sla_response_time_ms,omitempty"`
	SLAUptimePercentage    *float64          `mapstructure:"sla_uptime_percentage" json:"sla_uptime_percentage,omitempty"`
	DNSServer              string            `mapstructure:"dns_server" json:"dns_server,omitempty"`
	FollowRedirects        *bool             `mapstructure:"follow_redirects" json:"follow_redirects,omitempty"`
	VerifyTLS              *bool             `mapstructure:"verify_tls" json:"verify_tls,omitempty"`
}

// NotificationConfig is the file form of a channel. Settings holds the
// type specific keys and is decoded by decodeSettings.
type NotificationConfig struct {
	Type                    string                 `mapstructure:"type" json:"type"`
	Enabled                 *bool                  `mapstructure:"enabled" json:"enabled,omitempty"`
	OnFailure               *bool                  `mapstructure:"on_failure" json:"on_failure,omitempty"`
	OnRecovery              *bool                  `mapstructure:"on_recovery" json:"on_recovery,omitempty"`
	OnDegraded              *bool                  `mapstructure:"on_degraded" json:"on_degraded,omitempty"`
	MaxNotificationsPerHour *int                   `mapstructure:"max_notifications_per_hour" json:"max_notifications_per_hour,omitempty"`
	CooldownMinutes         *float64               `mapstructure:"cooldown_minutes" json:"cooldown_minutes,omitempty"`
	Settings                map[string]interface{} `mapstructure:"config" json:"config,omitempty"`
}

const (
	DefaultMaxNotificationsPerHour = 10
	DefaultCooldownMinutes         = 5
)

// Load reads path, or ./configs/monitor.{yaml,json} when path is empty.
// Without a config file the single endpoint environment mode is used.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("monitor")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		slog.Warn("config file not found, using environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Endpoints) == 0 {
		applyEnvEndpoint(v, &cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("configuration loaded",
		"config_file", v.ConfigFileUsed(),
		"endpoints", len(cfg.specs),
		"channels", len(cfg.channels),
	)
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_format", "text")
	v.SetDefault("max_history_days", 30)
	v.SetDefault("default_timeout_seconds", 10.0)
	v.SetDefault("default_interval_seconds", 300)
	v.SetDefault("default_retries", constants.DefaultMaxRetries)
	v.SetDefault("shutdown_grace_seconds", int(constants.ShutdownGrace/time.Second))

	// server defaults
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	// database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "apimonitor")
	v.SetDefault("database.password", "apimonitor")
	v.SetDefault("database.dbname", "apimonitor")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.retention_days", 90)

	// redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// EndpointSpecs returns the validated endpoints in file order.
func (c *Config) EndpointSpecs() []domain.EndpointSpec {
	return c.specs
}

// Channels returns the validated notification channels.
func (c *Config) Channels() []domain.ChannelConfig {
	return c.channels
}

func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownGraceSeconds) * time.Second
}

// UsesRedis reports whether any enabled channel publishes to Redis.
func (c *Config) UsesRedis() bool {
	for _, ch := range c.channels {
		if ch.Enabled && ch.Type == domain.ChannelRedis {
			return true
		}
	}
	return false
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GetDSN returns URL when set, otherwise a key/value DSN built from the fields.
func (d *DatabaseConfig) GetDSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func (r *RedisConfig) GetRedisOptions() *redis.Options {
	return &redis.Options{
		Addr:            r.Addr,
		Password:        r.Password,
		DB:              r.DB,
		DisableIdentity: true,
	}
}
