package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "DATABASE_URL", "PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD",
		"DB_NAME", "DB_SSLMODE", "DB_MAX_CONNS", "LOGIN_RATE_PER_MIN")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=cashless sslmode=disable", cfg.DSN())
	assert.Equal(t, int32(20), cfg.DB.MaxConns)
	assert.Equal(t, 30, cfg.LoginRatePerMin)
}

func TestDBSettingsIgnoreBareNames(t *testing.T) {
	unsetEnv(t, "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE")
	t.Setenv("PORT", "8080")
	t.Setenv("USER", "root")
	t.Setenv("HOST", "build-runner")
	t.Setenv("NAME", "shell")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=cashless sslmode=disable", cfg.DSN())
}

func TestDBSettingsFromEnv(t *testing.T) {
	unsetEnv(t, "DATABASE_URL")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6432")
	t.Setenv("DB_USER", "cashless")
	t.Setenv("DB_NAME", "festival")
	t.Setenv("DB_MAX_CONNS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Contains(t, cfg.DSN(), "host=db port=6432 user=cashless")
	assert.Contains(t, cfg.DSN(), "dbname=festival")
	assert.Equal(t, int32(5), cfg.DB.MaxConns)
}

func TestDatabaseURLWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x?sslmode=require")
	t.Setenv("DB_HOST", "ignored")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/x?sslmode=require", cfg.DSN())
	assert.Equal(t, "ignored", cfg.DB.Host)
}

func TestAddrAcceptsHostPort(t *testing.T) {
	assert.Equal(t, "127.0.0.1:9000", Config{Port: "127.0.0.1:9000"}.Addr())
	assert.Equal(t, ":3000", Config{Port: "3000"}.Addr())
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, Config{LogLevel: in}.SlogLevel(), in)
	}
}
