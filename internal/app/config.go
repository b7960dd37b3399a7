package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mitanshu610/chat-threads/internal/db"
	"github.com/mitanshu610/chat-threads/internal/observability"
	"github.com/mitanshu610/chat-threads/internal/platform/envutil"
)

// ConfigPathEnv names the variable holding an optional YAML config file.
const ConfigPathEnv = "CHAT_THREADS_CONFIG"

type Config struct {
	LogMode     string                   `yaml:"log_mode"`
	LogLevel    string                   `yaml:"log_level"`
	AutoMigrate bool                     `yaml:"auto_migrate"`
	DB          db.Config                `yaml:"db"`
	Otel        observability.OtelConfig `yaml:"otel"`
}

func DefaultConfig() Config {
	return Config{
		LogMode:     "development",
		LogLevel:    "info",
		AutoMigrate: true,
		DB: db.Config{
			Driver:   db.DriverPostgres,
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Name:     "chat_threads",
			SSLMode:  "disable",
			LogLevel: "silent",
		},
		Otel: observability.OtelConfig{
			ServiceName: "chat-threads",
			Environment: "development",
			SampleRatio: 0.1,
		},
	}
}

// LoadConfig layers defaults, the YAML file at path (skipped when path is
// empty) and environment variables, in that order.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFromEnv reads the file named by CHAT_THREADS_CONFIG, if any.
func LoadConfigFromEnv() (Config, error) {
	return LoadConfig(os.Getenv(ConfigPathEnv))
}

func (c *Config) applyEnv() {
	c.LogMode = envutil.String("LOG_MODE", c.LogMode)
	c.LogLevel = envutil.String("LOG_LEVEL", c.LogLevel)
	c.AutoMigrate = envutil.Bool("AUTO_MIGRATE", c.AutoMigrate)

	c.DB.Driver = envutil.String("DB_DRIVER", c.DB.Driver)
	c.DB.DSN = envutil.String("DATABASE_URL", c.DB.DSN)
	c.DB.Host = envutil.String("POSTGRES_HOST", c.DB.Host)
	c.DB.Port = envutil.String("POSTGRES_PORT", c.DB.Port)
	c.DB.User = envutil.String("POSTGRES_USER", c.DB.User)
	c.DB.Password = envutil.String("POSTGRES_PASSWORD", c.DB.Password)
	c.DB.Name = envutil.String("POSTGRES_NAME", c.DB.Name)
	c.DB.SSLMode = envutil.String("POSTGRES_SSLMODE", c.DB.SSLMode)
	c.DB.LogLevel = envutil.String("DB_LOG_LEVEL", c.DB.LogLevel)
	c.DB.MaxOpenConns = envutil.Int("DB_MAX_OPEN_CONNS", c.DB.MaxOpenConns)

	c.Otel.Enabled = envutil.Bool("OTEL_ENABLED", c.Otel.Enabled)
	c.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", c.Otel.ServiceName)
	c.Otel.Environment = envutil.String("APP_ENV", c.Otel.Environment)
	c.Otel.Version = envutil.String("APP_VERSION", c.Otel.Version)
	c.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", c.Otel.Endpoint)
	c.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", c.Otel.Headers)
	c.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", c.Otel.Insecure)
	c.Otel.SampleRatio = envutil.Float("OTEL_TRACES_SAMPLER_ARG", c.Otel.SampleRatio)
}

func (c Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DB.Driver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	return nil
}
