package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the settings of the intake application
type Config struct {
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	LogFile   string `mapstructure:"LOG_FILE"`

	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	Environment     string        `mapstructure:"ENVIRONMENT"`
	OTLPEndpoint    string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELEnabled     bool          `mapstructure:"OTEL_ENABLED"`
	MetricsInterval time.Duration `mapstructure:"OTEL_METRICS_EXPORT_INTERVAL"`
}

var keys = []string{
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	"RABBITMQ_URL",
	"ENVIRONMENT", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_ENABLED", "OTEL_METRICS_EXPORT_INTERVAL",
}

// Load reads the configuration and requires database credentials
func Load(envFile string) (*Config, error) {
	cfg, err := Read(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads configuration from an optional .env file and the environment.
// Environment variables win over the file. Nothing is validated.
func Read(envFile string) (*Config, error) {
	v := viper.New()
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
	}
	v.AutomaticEnv()

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_METRICS_EXPORT_INTERVAL", 30*time.Second)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if envFile != "" {
		if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
		if cfg.IsDev() {
			cfg.LogFormat = "console"
		}
	}
	return cfg, nil
}

// Validate reports missing database credentials
func (c *Config) Validate() error {
	if c.DBHost == "" || c.DBUser == "" || c.DBPassword == "" || c.DBName == "" {
		return fmt.Errorf("missing required database configuration (DB_HOST, DB_USER, DB_PASSWORD, DB_NAME)")
	}
	return nil
}

// DSN returns the lib/pq connection string. Values are quoted so
// passwords may contain spaces, quotes and backslashes.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quote(c.DBHost), c.DBPort, quote(c.DBUser), quote(c.DBPassword), quote(c.DBName), quote(c.DBSSLMode),
	)
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quote(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}

// a missing .env file is fine, anything else is not
func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func (c *Config) IsDev() bool {
	return c.Environment == "development"
}
