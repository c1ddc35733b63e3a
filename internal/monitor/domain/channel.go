package domain

import "time"

type ChannelType string

const (
	ChannelConsole ChannelType = "console"
	ChannelSlack   ChannelType = "slack"
	ChannelDiscord ChannelType = "discord"
	ChannelWebhook ChannelType = "webhook"
	ChannelEmail   ChannelType = "email"
	ChannelRedis   ChannelType = "redis"
)

// ChannelConfig describes one notification channel. Settings holds the
// type-specific part and always matches Type once the config is validated.
type ChannelConfig struct {
	ID                      string          `json:"id"`
	Type                    ChannelType     `json:"type"`
	Enabled                 bool            `json:"enabled"`
	OnFailure               bool            `json:"on_failure"`
	OnRecovery              bool            `json:"on_recovery"`
	OnDegraded              bool            `json:"on_degraded"`
	MaxNotificationsPerHour int             `json:"max_notifications_per_hour"`
	Cooldown                time.Duration   `json:"cooldown"`
	Settings                ChannelSettings `json:"settings,omitempty"`
}

// Triggers reports whether the channel subscribes to events of the given kind.
func (c *ChannelConfig) Triggers(kind EventKind) bool {
	switch kind {
	case EventFailure:
		return c.OnFailure
	case EventRecovery:
		return c.OnRecovery
	case EventDegraded:
		return c.OnDegraded
	}
	return false
}

// ChannelSettings is implemented only by the variants below.
type ChannelSettings interface {
	ChannelType() ChannelType
}

type ConsoleSettings struct{}

type SlackSettings struct {
	WebhookURL string `mapstructure:"webhook_url" json:"webhook_url"`
	Channel    string `mapstructure:"channel" json:"channel,omitempty"`
	Username   string `mapstructure:"username" json:"username,omitempty"`
}

type DiscordSettings struct {
	WebhookURL string `mapstructure:"webhook_url" json:"webhook_url"`
	Username   string `mapstructure:"username" json:"username,omitempty"`
}

type WebhookSettings struct {
	URL     string            `mapstructure:"url" json:"url"`
	Method  string            `mapstructure:"method" json:"method,omitempty"`
	Headers map[string]string `mapstructure:"headers" json:"headers,omitempty"`
}

type EmailSettings struct {
	SMTPHost  string   `mapstructure:"smtp_host" json:"smtp_host"`
	SMTPPort  int      `mapstructure:"smtp_port" json:"smtp_port"`
	Username  string   `mapstructure:"username" json:"username,omitempty"`
	Password  string   `mapstructure:"password" json:"-"`
	FromEmail string   `mapstructure:"from_email" json:"from_email"`
	ToEmails  []string `mapstructure:"to_emails" json:"to_emails"`
	UseTLS    bool     `mapstructure:"use_tls" json:"use_tls"`
}

type RedisSettings struct {
	Channel string `mapstructure:"channel" json:"channel"`
}

func (ConsoleSettings) ChannelType() ChannelType { return ChannelConsole }
func (SlackSettings) ChannelType() ChannelType   { return ChannelSlack }
func (DiscordSettings) ChannelType() ChannelType { return ChannelDiscord }
func (WebhookSettings) ChannelType() ChannelType { return ChannelWebhook }
func (EmailSettings) ChannelType() ChannelType   { return ChannelEmail }
func (RedisSettings) ChannelType() ChannelType   { return ChannelRedis }
