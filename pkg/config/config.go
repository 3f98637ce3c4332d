package config

import (
	"os"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Config holds process-level configuration. Library and import folder paths
// are runtime settings stored in the database (see pkg/settings), not here.
type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	Hostname                  string        `koanf:"-"`
	ScanIntervalMinutes       int           `koanf:"scan_interval_minutes"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
	WorkerProcesses           int           `koanf:"worker_processes"`
}

const configFileENV = "CONFIG_FILE"

// New loads configuration with the following precedence: defaults, then the
// YAML file pointed at by CONFIG_FILE, then environment variables.
func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        5,
		Hostname:                  hostname,
		ScanIntervalMinutes:       60,
		ServerHost:                "0.0.0.0",
		ServerPort:                3689,
		WorkerProcesses:           2,
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = "/config/kanade.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "config file error")
		}
	}

	// Environment variables override the file. DATABASE_FILE_PATH maps to
	// database_file_path and so on.
	err = k.Load(env.Provider("", ".", strings.ToLower), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = k.Unmarshal("", cfg)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if cfg.DatabaseFilePath == "" {
		name := "DatabaseFilePath"
		return nil, errors.Errorf("missing required config: %s (%s)", strings.ToUpper(toSnakeCase(name)), toSnakeCase(name))
	}

	return cfg, nil
}

// NewForTest returns a config suitable for tests: in-memory database, a
// single worker process, and a loopback server host.
func NewForTest() *Config {
	return &Config{
		DatabaseBusyTimeout:       time.Second,
		DatabaseConnectRetryCount: 1,
		DatabaseConnectRetryDelay: time.Millisecond,
		DatabaseFilePath:          ":memory:",
		DatabaseMaxRetries:        3,
		ScanIntervalMinutes:       60,
		ServerHost:                "127.0.0.1",
		WorkerProcesses:           1,
	}
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
