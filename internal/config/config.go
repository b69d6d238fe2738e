// Package config loads pageforge settings from the environment and an
// optional pageforge.yaml file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dmitrymomot/pageforge/pkg/oauth"
)

// ErrInvalid is returned when a loaded value is out of range.
var ErrInvalid = errors.New("config: invalid value")

// Config holds every runtime setting.
type Config struct {
	GitHub               oauth.Config `mapstructure:"github"`
	Google               oauth.Config `mapstructure:"google"`
	AppEnv               string       `mapstructure:"app_env"`
	AuthSecret           string       `mapstructure:"auth_secret"`
	AuthCookieName       string       `mapstructure:"auth_cookie_name"`
	AppRoot              string       `mapstructure:"app_root"`
	PublicDir            string       `mapstructure:"public_dir"`
	RoutesFile           string       `mapstructure:"routes_file"`
	RedisURL             string       `mapstructure:"redis_url"`
	SentryDSN            string       `mapstructure:"sentry_dsn"`
	LogLevel             string       `mapstructure:"log_level"`
	MetricsPath          string       `mapstructure:"metrics_path"`
	Port                 int          `mapstructure:"port"`
	SessionLifetimeHours int          `mapstructure:"session_lifetime_hours"`
	MaxContentLengthMB   int          `mapstructure:"max_content_length_mb"`
	CacheTTL             int          `mapstructure:"cache_ttl"`
	CacheEnabled         bool         `mapstructure:"cache_enabled"`
	MetricsEnabled       bool         `mapstructure:"metrics_enabled"`
}

// Production reports whether APP_ENV is "production".
func (c *Config) Production() bool { return c.AppEnv == "production" }

// Addr returns the listen address.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// SessionLifetime returns the session lifetime.
func (c *Config) SessionLifetime() time.Duration {
	return time.Duration(c.SessionLifetimeHours) * time.Hour
}

// CacheTTLDuration returns the default page cache TTL.
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// MaxBodyBytes returns the request body limit in bytes.
func (c *Config) MaxBodyBytes() int64 {
	return int64(c.MaxContentLengthMB) << 20
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("port", 5091)
	v.SetDefault("session_lifetime_hours", 7)
	v.SetDefault("max_content_length_mb", 16)
	v.SetDefault("cache_enabled", false)
	v.SetDefault("cache_ttl", 600)
	v.SetDefault("auth_secret", "change-me")
	v.SetDefault("auth_cookie_name", "session")
	v.SetDefault("app_root", "src/app")
	v.SetDefault("public_dir", "public")
	v.SetDefault("routes_file", "settings/routes.yaml")
	v.SetDefault("redis_url", "")
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("metrics_path", "/metrics")

	for _, p := range []string{"github", "google"} {
		v.SetDefault(p+".client_id", "")
		v.SetDefault(p+".client_secret", "")
		v.SetDefault(p+".redirect_url", "")
		v.SetDefault(p+".scopes", []string{})
	}
}

// Load reads configuration. Environment variables win over the file.
// An empty file means ./pageforge.yaml when present.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("pageforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Nested keys map to underscored env names: github.client_id -> GITHUB_CLIENT_ID.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("github.redirect_url", "GITHUB_REDIRECT_URI")
	_ = v.BindEnv("google.redirect_url", "GOOGLE_REDIRECT_URI")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Port)
	case c.SessionLifetimeHours <= 0:
		return fmt.Errorf("%w: session_lifetime_hours %d", ErrInvalid, c.SessionLifetimeHours)
	case c.MaxContentLengthMB <= 0:
		return fmt.Errorf("%w: max_content_length_mb %d", ErrInvalid, c.MaxContentLengthMB)
	case c.CacheTTL < 0:
		return fmt.Errorf("%w: cache_ttl %d", ErrInvalid, c.CacheTTL)
	}
	return nil
}
