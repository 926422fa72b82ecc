package config

import (
	"slices"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
}

// Receive modes of the Telegram transport.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Supported catalogue store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// TelegramConfig holds bot credentials and the source channel.
type TelegramConfig struct {
	Token           string        `yaml:"token"            env:"BOT_TOKEN"              env-required:"true"`
	ChannelID       int64         `yaml:"channel_id"       env:"CHANNEL_CHAT_ID"        env-required:"true"`
	ChannelUsername string        `yaml:"channel_username" env:"CHANNEL_USERNAME"`
	Mode            string        `yaml:"mode"             env:"TELEGRAM_MODE"          env-default:"polling"`
	PollTimeout     int           `yaml:"poll_timeout"     env:"TELEGRAM_POLL_TIMEOUT"  env-default:"60"`
	RetryDelay      time.Duration `yaml:"retry_delay"      env:"TELEGRAM_RETRY_DELAY"   env-default:"3s"`
	WebhookURL      string        `yaml:"webhook_url"      env:"TELEGRAM_WEBHOOK_URL"`
	WebhookSecret   string        `yaml:"webhook_secret"   env:"TELEGRAM_WEBHOOK_SECRET"`
	AdminIDsRaw     string        `yaml:"admin_ids"        env:"TELEGRAM_ADMIN_IDS"`
	APIEndpoint     string        `yaml:"api_endpoint"     env:"TELEGRAM_API_ENDPOINT"  env-default:"https://api.telegram.org/bot%s/%s"`
	Debug           bool          `yaml:"debug"            env:"TELEGRAM_DEBUG"         env-default:"false"`

	// AdminIDs is parsed from AdminIDsRaw during validation.
	AdminIDs []int64 `yaml:"-" env:"-"`
}

// IsAdmin reports whether the Telegram user may register posts.
// With no admins configured every user is allowed.
func (c TelegramConfig) IsAdmin(userID int64) bool {
	if len(c.AdminIDs) == 0 {
		return true
	}
	return slices.Contains(c.AdminIDs, userID)
}

// DatabaseConfig holds catalogue store connection settings.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"            env:"DATABASE_DRIVER"            env-default:"sqlite"`
	DSN             string        `yaml:"dsn"               env:"DATABASE_DSN"               env-default:"channel_posts.db"`
	MaxOpenConns    int           `yaml:"max_open_conns"    env:"DATABASE_MAX_OPEN_CONNS"    env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns"    env:"DATABASE_MAX_IDLE_CONNS"    env-default:"2"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DATABASE_CONN_MAX_LIFETIME" env-default:"1h"`
	BusyTimeout     time.Duration `yaml:"busy_timeout"      env:"DATABASE_BUSY_TIMEOUT"      env-default:"5s"`
}

// ServerConfig holds HTTP server settings. The server carries health,
// metrics, the admin API and, in webhook mode, the Telegram webhook.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// AdminConfig holds settings of the token-protected admin API.
type AdminConfig struct {
	Enabled            bool          `yaml:"enabled"               env:"ADMIN_API_ENABLED"          env-default:"false"`
	JWTSecret          string        `yaml:"jwt_secret"            env:"ADMIN_JWT_SECRET"`
	JWTIssuer          string        `yaml:"jwt_issuer"            env:"ADMIN_JWT_ISSUER"           env-default:"recobot"`
	TokenTTL           time.Duration `yaml:"token_ttl"             env:"ADMIN_TOKEN_TTL"            env-default:"720h"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute" env:"ADMIN_RATE_LIMIT_PER_MINUTE" env-default:"60"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
