// Package config handles loading and saving freepare configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/freepare/config.yaml
//   - State:   ~/.local/state/freepare/ (log files)
//
// Values are layered: defaults, then the config file, then environment
// variables (a .env file in the working directory is loaded first without
// overriding the real environment), then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the production backend.
const DefaultBaseURL = "https://api.freepare.com"

// Environment variables read by ApplyEnv.
const (
	EnvAPIURL       = "FREEPARE_API_URL"
	EnvToken        = "FREEPARE_TOKEN"
	EnvLogLevel     = "FREEPARE_LOG_LEVEL"
	EnvLogFile      = "FREEPARE_LOG_FILE"
	EnvEntitiesFile = "FREEPARE_ENTITIES_FILE"
	EnvRetries      = "FREEPARE_API_RETRIES"
)

// APIConfig describes the REST backend.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url" validate:"required,url"`
	Timeout    time.Duration `yaml:"timeout,omitempty" validate:"min=0"`
	Retries    int           `yaml:"retries" validate:"min=0,max=10"`
	RetryDelay time.Duration `yaml:"retry_delay,omitempty" validate:"min=0"`
}

// AuthConfig locates the session token.
type AuthConfig struct {
	TokenFile string `yaml:"token_file,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	SearchVisible bool   `yaml:"search_visible"`
	Theme         string `yaml:"theme,omitempty" validate:"omitempty,oneof=auto dark light"` // auto, dark, light
}

// LogConfig controls the event log. An empty file disables logging.
type LogConfig struct {
	File  string `yaml:"file,omitempty"`
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=none error warn info debug"`
}

// DataConfig selects an offline entity source instead of the API.
type DataConfig struct {
	EntitiesFile string `yaml:"entities_file,omitempty"`
}

// Config is the top-level configuration for freepare.
type Config struct {
	API  APIConfig  `yaml:"api"`
	Auth AuthConfig `yaml:"auth,omitempty"`
	UI   UIConfig   `yaml:"ui"`
	Log  LogConfig  `yaml:"log,omitempty"`
	Data DataConfig `yaml:"data,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:    DefaultBaseURL,
			Timeout:    15 * time.Second,
			Retries:    2,
			RetryDelay: 500 * time.Millisecond,
		},
		UI: UIConfig{
			SearchVisible: true,
			Theme:         "auto",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ConfigDir returns the XDG config directory for freepare.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "freepare")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "freepare")
}

// StateDir returns the XDG state directory for freepare.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "freepare")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "freepare")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultLogPath is where the init wizard suggests writing the event log.
func DefaultLogPath() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "freepare.log")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Auth.TokenFile = expandHome(cfg.Auth.TokenFile)
	cfg.Log.File = expandHome(cfg.Log.File)
	cfg.Data.EntitiesFile = expandHome(cfg.Data.EntitiesFile)

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are left alone and a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg. getenv is usually
// os.Getenv. Malformed numeric values are reported and leave cfg unchanged.
func ApplyEnv(cfg Config, getenv func(string) string) (Config, error) {
	if v := strings.TrimSpace(getenv(EnvAPIURL)); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvLogFile)); v != "" {
		cfg.Log.File = expandHome(v)
	}
	if v := strings.TrimSpace(getenv(EnvEntitiesFile)); v != "" {
		cfg.Data.EntitiesFile = expandHome(v)
	}
	if v := strings.TrimSpace(getenv(EnvRetries)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvRetries, err)
		}
		cfg.API.Retries = n
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the merged configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
