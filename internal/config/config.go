package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the explicit configuration object every component receives
// at construction. Values come from an optional YAML file overridden
// by BACKOFFICE_* environment variables; nothing reads ambient state
// after construction.
type Config struct {
	DataDir       string `yaml:"data_dir"`
	BackupDir     string `yaml:"backup_dir"`
	ErrorLog      string `yaml:"error_log"`
	BackendDSN    string `yaml:"backend_dsn"`
	StateDocument string `yaml:"state_document"`
	MetricsAddr   string `yaml:"metrics_addr"`
}

func Default() Config {
	return Config{
		DataDir:       "./data",
		StateDocument: "portal_state.json",
		MetricsAddr:   ":9190",
	}
}

// Load reads the YAML file at path (ignored when absent), applies the
// environment overrides, and fills the derived defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, err
			}
		}
	}
	applyEnv(&cfg)

	if strings.TrimSpace(cfg.BackupDir) == "" {
		cfg.BackupDir = filepath.Join(cfg.DataDir, "backups")
	}
	if strings.TrimSpace(cfg.ErrorLog) == "" {
		cfg.ErrorLog = filepath.Join(cfg.DataDir, "error_log.txt")
	}
	if strings.TrimSpace(cfg.StateDocument) == "" {
		cfg.StateDocument = "portal_state.json"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setIfEnv(&cfg.DataDir, "BACKOFFICE_DATA_DIR")
	setIfEnv(&cfg.BackupDir, "BACKOFFICE_BACKUP_DIR")
	setIfEnv(&cfg.ErrorLog, "BACKOFFICE_ERROR_LOG")
	setIfEnv(&cfg.BackendDSN, "BACKOFFICE_BACKEND_DSN")
	setIfEnv(&cfg.StateDocument, "BACKOFFICE_STATE_DOCUMENT")
	setIfEnv(&cfg.MetricsAddr, "BACKOFFICE_METRICS_ADDR")
}

func setIfEnv(target *string, name string) {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		*target = value
	}
}
