package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.True(t, cfg.InsecureSecret())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farm.yaml")
	yaml := `
server:
  addr: ":9000"
  debug: true
db:
  driver: postgres
  dsn: "host=localhost dbname=farm"
session:
  secret: s3cret
  ttl: 12h
log:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "host=localhost dbname=farm", cfg.DB.DSN)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.InsecureSecret())
	// untouched keys keep their defaults
	assert.Equal(t, "farm_session", cfg.Session.Cookie)
	assert.True(t, cfg.Security.CSRF)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db:\n  dsn: from-file.db\n"), 0o600))
	t.Setenv("FARM_DB_DSN", "from-env.db")
	t.Setenv("FARM_SECURITY_CSRF", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.DB.DSN)
	assert.False(t, cfg.Security.CSRF)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.DB.Driver = "mysql" }},
		{"dsn", func(c *Config) { c.DB.DSN = "  " }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
		{"secret", func(c *Config) { c.Session.Secret = "" }},
		{"cookie", func(c *Config) { c.Session.Cookie = "" }},
		{"ttl", func(c *Config) { c.Session.TTL = -time.Second }},
	}
	assert.NoError(t, Defaults().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
