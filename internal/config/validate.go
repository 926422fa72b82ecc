package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Telegram.validate(); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.Admin.Enabled && len(c.Admin.JWTSecret) < 32 {
		return fmt.Errorf("admin.jwt_secret must be at least 32 characters (got %d)", len(c.Admin.JWTSecret))
	}
	if c.Admin.RateLimitPerMinute <= 0 {
		return fmt.Errorf("admin.rate_limit_per_minute must be > 0 (got %d)", c.Admin.RateLimitPerMinute)
	}
	return nil
}

func (t *TelegramConfig) validate() error {
	if strings.TrimSpace(t.Token) == "" {
		return fmt.Errorf("token is required")
	}
	if t.ChannelID == 0 {
		return fmt.Errorf("channel_id is required")
	}

	switch t.Mode {
	case ModePolling:
	case ModeWebhook:
		if t.WebhookURL == "" {
			return fmt.Errorf("webhook_url is required in webhook mode")
		}
		if t.WebhookSecret == "" {
			return fmt.Errorf("webhook_secret is required in webhook mode")
		}
	default:
		return fmt.Errorf("mode must be %q or %q (got %q)", ModePolling, ModeWebhook, t.Mode)
	}

	if t.PollTimeout < 0 {
		return fmt.Errorf("poll_timeout must be >= 0 (got %d)", t.PollTimeout)
	}
	if t.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must be >= 0 (got %v)", t.RetryDelay)
	}

	ids, err := ParseAdminIDs(t.AdminIDsRaw)
	if err != nil {
		return fmt.Errorf("admin_ids: %w", err)
	}
	t.AdminIDs = ids

	return nil
}

func (d *DatabaseConfig) validate() error {
	switch d.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("driver must be %q or %q (got %q)", DriverSQLite, DriverPostgres, d.Driver)
	}
	if strings.TrimSpace(d.DSN) == "" {
		return fmt.Errorf("dsn is required")
	}
	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("max_open_conns must be > 0 (got %d)", d.MaxOpenConns)
	}
	return nil
}

// ParseAdminIDs parses a comma-separated list of Telegram user IDs
// (e.g. "123,456"). An empty string returns a nil slice.
func ParseAdminIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", p, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
