package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"REVENGINE_DB_PATH", "REVENGINE_LISTEN_ADDR", "REVENGINE_LOG_LEVEL", "REVENGINE_ENV",
		"REVENGINE_RATE_LIMIT_RPS", "REVENGINE_RATE_LIMIT_BURST", "REVENGINE_DIFF_WORKER_LIMIT",
		"REVENGINE_READ_POOL_SIZE", "REVENGINE_CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "revengine.sqlite", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100.0, cfg.RateLimitRPS)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.Equal(t, 4, cfg.ReadPoolSize)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.NotEmpty(t, cfg.Warnings, "dev-mode default should emit a warning")
}

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("REVENGINE_DB_PATH", "/tmp/test.sqlite")
	t.Setenv("REVENGINE_LISTEN_ADDR", ":9090")
	t.Setenv("REVENGINE_LOG_LEVEL", "debug")
	t.Setenv("REVENGINE_RATE_LIMIT_RPS", "50")
	t.Setenv("REVENGINE_RATE_LIMIT_BURST", "75")
	t.Setenv("REVENGINE_DIFF_WORKER_LIMIT", "8")
	t.Setenv("REVENGINE_READ_POOL_SIZE", "2")
	t.Setenv("REVENGINE_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.sqlite", cfg.DBPath)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50.0, cfg.RateLimitRPS)
	assert.Equal(t, 75, cfg.RateLimitBurst)
	assert.Equal(t, 8, cfg.DiffWorkerLimit)
	assert.Equal(t, 2, cfg.ReadPoolSize)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadFromEnv_ProductionRejectsWildcardCORS(t *testing.T) {
	clearEnv(t)
	t.Setenv("REVENGINE_ENV", "production")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS wildcard")
}

func TestLoadFromEnv_ProductionWithExplicitOriginsOK(t *testing.T) {
	clearEnv(t)
	t.Setenv("REVENGINE_ENV", "production")
	t.Setenv("REVENGINE_CORS_ALLOWED_ORIGINS", "https://app.example.com")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Empty(t, cfg.Warnings)
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]bool{
		"debug": true,
		"warn":  true,
		"error": true,
		"info":  true,
		"":      true,
		"bogus": true,
	}
	for level := range cases {
		cfg := &Config{LogLevel: level}
		_ = cfg.SlogLevel() // just exercise every branch without panicking
	}
}

func TestLoadDotEnv_FileNotFound(t *testing.T) {
	err := LoadDotEnv("/nonexistent/.env")
	if err != nil {
		t.Errorf("expected no error for missing .env, got: %v", err)
	}
}

func TestLoadDotEnv_ParsesKeyValue(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	err := os.WriteFile(envFile, []byte("TEST_KEY=test_value\n"), 0644)
	if err != nil {
		t.Fatalf("write .env: %v", err)
	}

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if val := os.Getenv("TEST_KEY"); val != "test_value" {
		t.Errorf("TEST_KEY = %q, want %q", val, "test_value")
	}
	_ = os.Unsetenv("TEST_KEY")
}

func TestLoadDotEnv_SkipsComments(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	err := os.WriteFile(envFile, []byte("# comment\nTEST_COMMENT_KEY=value\n"), 0644)
	if err != nil {
		t.Fatalf("write .env: %v", err)
	}

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if val := os.Getenv("TEST_COMMENT_KEY"); val != "value" {
		t.Errorf("TEST_COMMENT_KEY = %q, want %q", val, "value")
	}
	_ = os.Unsetenv("TEST_COMMENT_KEY")
}

func TestLoadDotEnv_EnvVarPrecedence(t *testing.T) {
	t.Setenv("TEST_PRECEDENCE_KEY", "from_env")

	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	err := os.WriteFile(envFile, []byte("TEST_PRECEDENCE_KEY=from_file\n"), 0644)
	if err != nil {
		t.Fatalf("write .env: %v", err)
	}

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if val := os.Getenv("TEST_PRECEDENCE_KEY"); val != "from_env" {
		t.Errorf("TEST_PRECEDENCE_KEY = %q, want %q (env precedence)", val, "from_env")
	}
}
