package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("TASKBOARD_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("TASKBOARD_DATABASE_DRIVER", "postgres")
	t.Setenv("TASKBOARD_DATABASE_DSN", "postgres://localhost/taskboard")
	t.Setenv("PORT", "")
	v := viper.New()
	Bind(v)
	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Server.Port != 5000 || cfg.Server.AllowedOrigin != "*" || cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Auth.JWTSecret != "s3cret" || cfg.Database.Driver != DriverPostgres {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestPlainPortFallback(t *testing.T) {
	t.Setenv("PORT", "8081")
	v := viper.New()
	Bind(v)
	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Fatalf("expected PORT fallback, got %d", cfg.Server.Port)
	}

	t.Setenv("TASKBOARD_SERVER_PORT", "9000")
	v = viper.New()
	Bind(v)
	cfg, err = Load(v, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("prefixed port should win, got %d", cfg.Server.Port)
	}
}

func TestLoadFileAndValidate(t *testing.T) {
	t.Setenv("PORT", "")
	dir := t.TempDir()
	file := filepath.Join(dir, DefaultFile)
	content := "server:\n  port: 7000\n  shutdown_timeout: 10s\nauth:\n  jwt_secret: abc\nlog:\n  format: console\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	v := viper.New()
	Bind(v)
	cfg, err := Load(v, file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7000 || cfg.Server.ShutdownTimeout != 10*time.Second || cfg.Log.Format != "console" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	cfg.Auth.JWTSecret = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Fatalf("expected jwt_secret error, got %v", err)
	}

	if _, err := Load(viper.New(), filepath.Join(dir, "missing.yml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestGenerateDefaultRoundTrip(t *testing.T) {
	out, err := GenerateDefault()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	cfg, err := FromYAML([]byte(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Port != 5000 || cfg.Database.Driver != DriverSQLite || cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Fatalf("unexpected round trip %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TASKBOARD_TEST_DOTENV=yes\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("TASKBOARD_TEST_DOTENV") })
	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("load: %v", err)
	}
	if os.Getenv("TASKBOARD_TEST_DOTENV") != "yes" {
		t.Fatalf("expected variable from .env")
	}
}
