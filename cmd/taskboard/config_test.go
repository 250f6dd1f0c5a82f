package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskboard/internal/config"
)

func TestValidateConfigFile(t *testing.T) {
	dir := t.TempDir()
	generated, err := config.GenerateDefault()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	blank := filepath.Join(dir, "blank.yml")
	if err := os.WriteFile(blank, []byte(generated), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := validateConfigFile(blank); err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Fatalf("expected missing jwt_secret, got %v", err)
	}

	good := filepath.Join(dir, "good.yml")
	if err := os.WriteFile(good, []byte("server:\n  port: 7001\nauth:\n  jwt_secret: abc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := validateConfigFile(good)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Server.Port != 7001 || cfg.Database.Driver != config.DriverSQLite {
		t.Fatalf("expected file values over defaults, got %+v", cfg)
	}

	if _, err := validateConfigFile(filepath.Join(dir, "missing.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
