package config

import (
	"ApiMonitor/internal/monitor/domain"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-multierror"
)

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// toChannel converts the file form into a typed channel. Every problem found
// is returned, not only the first.
func (n NotificationConfig) toChannel(id string) (domain.ChannelConfig, error) {
	var errs *multierror.Error

	channel := domain.ChannelConfig{
		ID:                      id,
		Type:                    domain.ChannelType(strings.ToLower(n.Type)),
		Enabled:                 boolOr(n.Enabled, true),
		OnFailure:               boolOr(n.OnFailure, true),
		OnRecovery:              boolOr(n.OnRecovery, true),
		OnDegraded:              boolOr(n.OnDegraded, false),
		MaxNotificationsPerHour: DefaultMaxNotificationsPerHour,
		Cooldown:                DefaultCooldownMinutes * time.Minute,
	}

	if n.MaxNotificationsPerHour != nil {
		if *n.MaxNotificationsPerHour < 0 {
			errs = multierror.Append(errs, fmt.Errorf("notification %q: max_notifications_per_hour must not be negative", id))
		}
		channel.MaxNotificationsPerHour = *n.MaxNotificationsPerHour
	}

	if n.CooldownMinutes != nil {
		if *n.CooldownMinutes < 0 {
			errs = multierror.Append(errs, fmt.Errorf("notification %q: cooldown_minutes must not be negative", id))
		}
		channel.Cooldown = time.Duration(*n.CooldownMinutes * float64(time.Minute))
	}

	settings, err := decodeSettings(channel.Type, n.Settings)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("notification %q: %w", id, err))
	} else {
		channel.Settings = settings
		for _, e := range validateSettings(settings) {
			errs = multierror.Append(errs, fmt.Errorf("notification %q: %w", id, e))
		}
	}

	return channel, errs.ErrorOrNil()
}

func decodeSettings(channelType domain.ChannelType, raw map[string]interface{}) (domain.ChannelSettings, error) {
	switch channelType {
	case domain.ChannelConsole:
		return domain.ConsoleSettings{}, nil
	case domain.ChannelSlack:
		var s domain.SlackSettings
		err := decode(raw, &s)
		return s, err
	case domain.ChannelDiscord:
		var s domain.DiscordSettings
		err := decode(raw, &s)
		return s, err
	case domain.ChannelWebhook:
		var s domain.WebhookSettings
		err := decode(raw, &s)
		return s, err
	case domain.ChannelEmail:
		var s domain.EmailSettings
		err := decode(raw, &s)
		if err == nil && s.SMTPPort == 0 {
			s.SMTPPort = 587
		}
		return s, err
	case domain.ChannelRedis:
		var s domain.RedisSettings
		err := decode(raw, &s)
		if err == nil && s.Channel == "" {
			s.Channel = "apimonitor.events"
		}
		return s, err
	case "":
		return nil, fmt.Errorf("type is required")
	default:
		return nil, fmt.Errorf("unknown notification type %q", channelType)
	}
}

func decode(raw map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
