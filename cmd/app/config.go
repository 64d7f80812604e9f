package main

import (
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/fennwick/pressroom/internal/common"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`

	DBHost      string `mapstructure:"POSTGRES_HOST"`
	DBPort      string `mapstructure:"POSTGRES_PORT"`
	DBUser      string `mapstructure:"POSTGRES_USER"`
	DBPassword  string `mapstructure:"POSTGRES_PASSWORD"`
	DBName      string `mapstructure:"POSTGRES_DB"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`

	AdminEmail        string `mapstructure:"ADMIN_ALLOWED_EMAIL"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`

	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`

	RebuildHookURL     string `mapstructure:"REBUILD_HOOK_URL"`
	TelemetryServerURL string `mapstructure:"TELEMETRY_SERVER_URL"`
	AllowTelemetry     string `mapstructure:"ALLOW_TELEMETRY"`

	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`
}

func loadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// dsn prefers the full DATABASE_URL override and falls back to assembling one
// from the discrete POSTGRES_* parts.
func (c *Config) dsn() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return common.DSN(c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// telemetryEnabled reports whether events should be sent. Telemetry is on by
// default; only an explicit "false" opts out.
func (c *Config) telemetryEnabled() bool {
	return !strings.EqualFold(c.AllowTelemetry, "false")
}

// siteDomain is the hostname reported on telemetry events, derived from the
// public base URL so it never needs separate configuration.
func (c *Config) siteDomain() string {
	u, err := url.Parse(c.PublicBaseURL)
	if err != nil || u.Host == "" {
		return c.PublicBaseURL
	}
	return u.Host
}
