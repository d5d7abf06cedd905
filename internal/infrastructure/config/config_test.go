package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Pastaboard", cfg.App.Name)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "local", cfg.Storage.Provider)
	assert.Equal(t, "static/upload", cfg.Storage.UploadDir)
	assert.Equal(t, "data.jsonl", cfg.Storage.DataFile)
	assert.Equal(t, "jsonl", cfg.Database.Driver)
	assert.Equal(t, "pastaboard_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "0.0.0.0:5000", cfg.ListenAddr())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte("server:\n  port: 9000\nsession:\n  backend: redis\ndatabase:\n  driver: sqlite\n  sqlite_path: recipes.db\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("PASTABOARD_SERVER_PORT", "9100")
	t.Setenv("PASTABOARD_APP_ENVIRONMENT", "production")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "recipes.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Name: "Pastaboard"},
			Server:   ServerConfig{Port: 5000},
			Storage:  StorageConfig{Provider: "local", UploadDir: "static/upload", DataFile: "data.jsonl"},
			Database: DatabaseConfig{Driver: "jsonl"},
			Session:  SessionConfig{CookieName: "sid", Backend: "memory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing name", func(c *Config) { c.App.Name = "" }, "app.name"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"unknown provider", func(c *Config) { c.Storage.Provider = "ftp" }, "storage.provider"},
		{"s3 without bucket", func(c *Config) { c.Storage.Provider = "s3" }, "storage.s3_bucket"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, "database.driver"},
		{"sqlite without path", func(c *Config) { c.Database.Driver = "sqlite" }, "database.sqlite_path"},
		{"unknown backend", func(c *Config) { c.Session.Backend = "memcached" }, "session.backend"},
		{"empty cookie", func(c *Config) { c.Session.CookieName = "" }, "session.cookie_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
