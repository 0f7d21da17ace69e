// Package config loads runtime settings from defaults, an optional YAML file,
// a local .env file and FARM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// DevSessionSecret is used when no secret is configured. Never deploy with it.
	DevSessionSecret = "dev-insecure-secret-change"

	// DefaultConfigFile is read from the working directory when --config is not given.
	DefaultConfigFile = "farmrecords.yaml"

	envPrefix = "FARM"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"db"`
	Session  SessionConfig  `mapstructure:"session"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Debug           bool          `mapstructure:"debug"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type SessionConfig struct {
	Secret       string        `mapstructure:"secret"`
	Cookie       string        `mapstructure:"cookie"`
	TTL          time.Duration `mapstructure:"ttl"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
}

type SecurityConfig struct {
	CSRF bool `mapstructure:"csrf"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8081",
			ShutdownTimeout: 10 * time.Second,
		},
		DB: DBConfig{
			Driver:      DriverSQLite,
			DSN:         "farmrecords.db",
			AutoMigrate: true,
		},
		Session: SessionConfig{
			Secret: DevSessionSecret,
			Cookie: "farm_session",
		},
		Security: SecurityConfig{CSRF: true},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown db.driver %q (want %s or %s)", c.DB.Driver, DriverSQLite, DriverPostgres)
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("db.dsn is empty")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log.format %q (want console or json)", c.Log.Format)
	}
	if c.Session.Secret == "" {
		return errors.New("session.secret is empty")
	}
	if c.Session.Cookie == "" {
		return errors.New("session.cookie is empty")
	}
	if c.Session.TTL < 0 {
		return errors.New("session.ttl must not be negative")
	}
	return nil
}

// InsecureSecret reports whether the development fallback secret is in use.
func (c *Config) InsecureSecret() bool {
	return c.Session.Secret == DevSessionSecret
}

// Load builds a Config. Precedence: env > config file > defaults. A .env file
// in the working directory is loaded first without overriding the real
// environment. An explicit path that does not exist is an error; the default
// file is optional.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.debug", d.Server.Debug)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("db.driver", d.DB.Driver)
	v.SetDefault("db.dsn", d.DB.DSN)
	v.SetDefault("db.auto_migrate", d.DB.AutoMigrate)
	v.SetDefault("session.secret", d.Session.Secret)
	v.SetDefault("session.cookie", d.Session.Cookie)
	v.SetDefault("session.ttl", d.Session.TTL)
	v.SetDefault("session.secure_cookie", d.Session.SecureCookie)
	v.SetDefault("security.csrf", d.Security.CSRF)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		v.SetConfigFile(path)
	} else if _, err := os.Stat(DefaultConfigFile); err == nil {
		v.SetConfigFile(DefaultConfigFile)
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
