package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrIncomplete is returned when the server URL or API token is missing.
var ErrIncomplete = errors.New("linkify is not configured")

const defaultDebounceMS = 250

// Settings holds the connection settings and local preferences.
type Settings struct {
	Server     string `mapstructure:"server" yaml:"server"`
	Token      string `mapstructure:"token" yaml:"token"`
	DebounceMS int    `mapstructure:"debounce_ms" yaml:"debounce_ms,omitempty"`
	LogFile    string `mapstructure:"log_file" yaml:"log_file,omitempty"`
	Outbox     string `mapstructure:"outbox" yaml:"outbox,omitempty"`
}

// Complete reports whether both server and token are set.
func (s Settings) Complete() bool {
	return strings.TrimSpace(s.Server) != "" && strings.TrimSpace(s.Token) != ""
}

// BaseURL returns the server URL without a trailing slash.
func (s Settings) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(s.Server), "/")
}

// Debounce returns the keystroke debounce window.
func (s Settings) Debounce() time.Duration {
	if s.DebounceMS <= 0 {
		return defaultDebounceMS * time.Millisecond
	}
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// Validate returns human-readable problems with the settings.
func (s Settings) Validate() []string {
	var problems []string
	if strings.TrimSpace(s.Server) == "" {
		problems = append(problems, "server is not set")
	} else if u, err := url.Parse(s.BaseURL()); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("server %q is not an http(s) URL", s.Server))
	}
	if strings.TrimSpace(s.Token) == "" {
		problems = append(problems, "token is not set")
	}
	if s.DebounceMS < 0 {
		problems = append(problems, "debounce_ms must not be negative")
	}
	return problems
}

// Dir returns the config directory: ~/.config/linkify
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "linkify"), nil
}

// DefaultPath returns the default settings file: ~/.config/linkify/config.yaml
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads settings from path, overlaid with LINKIFY_* environment
// variables. A missing file is not an error; the result is then only as
// complete as the environment makes it.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("debounce_ms", defaultDebounceMS)
	_ = v.BindEnv("server", "LINKIFY_SERVER")
	_ = v.BindEnv("token", "LINKIFY_TOKEN", "LINKIFY_API_KEY")
	_ = v.BindEnv("log_file", "LINKIFY_LOG_FILE")
	_ = v.BindEnv("outbox", "LINKIFY_OUTBOX")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("stat config: %w", err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}

	dir := filepath.Dir(path)
	if s.LogFile == "" {
		s.LogFile = filepath.Join(dir, "ly.log")
	}
	if s.Outbox == "" {
		s.Outbox = filepath.Join(dir, "outbox.db")
	}

	return s, nil
}

// Save writes settings to path, readable only by the owner.
func Save(path string, s Settings) error {
	dir := filepath.Dir(path)
	if s.LogFile == filepath.Join(dir, "ly.log") {
		s.LogFile = ""
	}
	if s.Outbox == filepath.Join(dir, "outbox.db") {
		s.Outbox = ""
	}
	if s.DebounceMS == defaultDebounceMS {
		s.DebounceMS = 0
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0600)
}
