// Package config resolves client settings from an optional YAML file with
// environment-variable overrides.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	appNameVar  = "APP_NAME"
	baseURLVar  = "API_BASE"
	dataDirVar  = "DATA_DIR"
	logLevelVar = "LOG_LEVEL"
)

// Config is what the rest of the client reads its settings through.
type Config interface {
	GetAppName() string
	GetBaseURL() string
	GetDataDir() string
	GetLogLevel() string
	GetSessionDBPath() string
}

type fileValues struct {
	AppName  string `yaml:"app_name"`
	BaseURL  string `yaml:"base_url"`
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
}

type mainConfig struct {
	file fileValues
}

// New builds a Config from environment variables only.
func New() Config {
	return mainConfig{}
}

// Load builds a Config from a YAML file; environment variables still win
// over file values. A missing file is not an error; env and defaults apply.
func Load(path string) (Config, error) {
	cfg := mainConfig{}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[config.Load] open config file")
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg.file); err != nil {
		return nil, errors.Wrap(err, "[config.Load] decode config file")
	}
	return cfg, nil
}

func (c mainConfig) GetAppName() string {
	return c.resolve(appNameVar, c.file.AppName, "Biolaureat")
}

func (c mainConfig) GetBaseURL() string {
	return c.resolve(baseURLVar, c.file.BaseURL, "http://127.0.0.1:5000")
}

func (c mainConfig) GetDataDir() string {
	fallback := "./data"
	if home, err := os.UserHomeDir(); err == nil {
		fallback = filepath.Join(home, ".learn-client")
	}
	return c.resolve(dataDirVar, c.file.DataDir, fallback)
}

func (c mainConfig) GetLogLevel() string {
	return c.resolve(logLevelVar, c.file.LogLevel, "info")
}

func (c mainConfig) GetSessionDBPath() string {
	return filepath.Join(c.GetDataDir(), "session.db")
}

func (c mainConfig) resolve(envVar, fileValue, defaultValue string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// GetEnv reads an environment variable with a default.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
