package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	QStash   QStashConfig   `mapstructure:"qstash"`
	Push     PushConfig     `mapstructure:"push"`
	Reset    ResetConfig    `mapstructure:"reset"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// ShutdownTimeout returns the shutdown timeout as a duration.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" validate:"gte=0"` // minutes
}

// AuthConfig contains the session token settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	CookieName           string `mapstructure:"cookie_name"            validate:"required"`
}

// QStashConfig configures the delayed message queue used for reminders.
// An empty Token leaves reminder scheduling disabled.
type QStashConfig struct {
	BaseURL           string `mapstructure:"base_url"            validate:"required,url"`
	Token             string `mapstructure:"token"`
	CallbackURL       string `mapstructure:"callback_url"        validate:"required_with=Token,omitempty,url"`
	CurrentSigningKey string `mapstructure:"current_signing_key"`
	NextSigningKey    string `mapstructure:"next_signing_key"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"     validate:"gte=1,lte=30"`
	TestDelaySeconds  int    `mapstructure:"test_delay_seconds"  validate:"gte=1"`
}

// Enabled reports whether the queue is configured for publishing.
func (c QStashConfig) Enabled() bool {
	return c.Token != "" && c.CallbackURL != ""
}

// Timeout returns the outbound request timeout.
func (c QStashConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// VerifiesSignatures reports whether incoming callbacks must carry a valid signature.
func (c QStashConfig) VerifiesSignatures() bool {
	return c.CurrentSigningKey != "" || c.NextSigningKey != ""
}

// PushConfig configures Web Push delivery.
// Empty VAPID keys leave push delivery disabled.
type PushConfig struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key" validate:"required_with=VAPIDPublicKey"`
	Subject         string `mapstructure:"subject"           validate:"required"`
	Icon            string `mapstructure:"icon"`
	Badge           string `mapstructure:"badge"`
	ClickURL        string `mapstructure:"click_url"         validate:"required"`
	TTLSeconds      int    `mapstructure:"ttl_seconds"       validate:"gte=0"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"   validate:"gte=1,lte=30"`
	Concurrency     int    `mapstructure:"concurrency"       validate:"gte=1,lte=64"`
}

// Enabled reports whether VAPID keys are configured.
func (c PushConfig) Enabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

// Timeout returns the outbound push request timeout.
func (c PushConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResetConfig configures how the reset pass is triggered.
type ResetConfig struct {
	// Schedule is an optional cron expression for running the reset pass in-process.
	Schedule string `mapstructure:"schedule"`
	// TriggerToken, when set, lets an external cron call the reset endpoint
	// with "Authorization: Bearer <token>" instead of a session token.
	TriggerToken string `mapstructure:"trigger_token" validate:"omitempty,min=16"`
}
