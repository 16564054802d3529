package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAbsentFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "./data" || cfg.StateDocument != "portal_state.json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.BackupDir != filepath.Join("./data", "backups") {
		t.Fatalf("backup dir not derived: %q", cfg.BackupDir)
	}
	if cfg.ErrorLog != filepath.Join("./data", "error_log.txt") {
		t.Fatalf("error log not derived: %q", cfg.ErrorLog)
	}
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "data_dir: /var/lib/backoffice\nbackend_dsn: \"memory:\"\nmetrics_addr: \":9999\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/var/lib/backoffice" || cfg.BackendDSN != "memory:" || cfg.MetricsAddr != ":9999" {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.BackupDir != filepath.Join("/var/lib/backoffice", "backups") {
		t.Fatalf("backup dir should derive from the configured data dir: %q", cfg.BackupDir)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("data_dir: /from/file\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BACKOFFICE_DATA_DIR", "/from/env")
	t.Setenv("BACKOFFICE_ERROR_LOG", "/var/log/backoffice.log")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/from/env" {
		t.Fatalf("env should win over file: %q", cfg.DataDir)
	}
	if cfg.ErrorLog != "/var/log/backoffice.log" {
		t.Fatalf("explicit error log should not be re-derived: %q", cfg.ErrorLog)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("data_dir: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}
