package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the service reads,
// e.g. TASKS_DATABASE_URL for database.url.
const EnvPrefix = "TASKS"

// DefaultQStashBaseURL is the public Upstash QStash endpoint.
const DefaultQStashBaseURL = "https://qstash.upstash.io"

// Load configuration from defaults, an optional config.yaml in the working
// directory and environment variables. Environment variables take precedence
// over values from the config file.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom works like Load but looks for config.yaml in dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are
// given) into the process environment without overriding variables that are
// already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// setDefaults registers every key so that AutomaticEnv can populate it on Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60*24*7)
	v.SetDefault("auth.cookie_name", "authToken")

	v.SetDefault("qstash.base_url", DefaultQStashBaseURL)
	v.SetDefault("qstash.token", "")
	v.SetDefault("qstash.callback_url", "")
	v.SetDefault("qstash.current_signing_key", "")
	v.SetDefault("qstash.next_signing_key", "")
	v.SetDefault("qstash.timeout_seconds", 5)
	v.SetDefault("qstash.test_delay_seconds", 30)

	v.SetDefault("push.vapid_public_key", "")
	v.SetDefault("push.vapid_private_key", "")
	v.SetDefault("push.subject", "mailto:admin@example.com")
	v.SetDefault("push.icon", "/icon-192.png")
	v.SetDefault("push.badge", "/icon-192.png")
	v.SetDefault("push.click_url", "/panel/tasks")
	v.SetDefault("push.ttl_seconds", 3600)
	v.SetDefault("push.timeout_seconds", 5)
	v.SetDefault("push.concurrency", 8)

	v.SetDefault("reset.schedule", "")
	v.SetDefault("reset.trigger_token", "")
}
