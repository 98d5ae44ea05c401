package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Environment variables prefixed with LOOPAUTH_ override values from the file, see [ApplyEnv].
type Config struct {
	Listener ListenerConfig `toml:"listener"`
	Provider ProviderConfig `toml:"provider"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// ListenerConfig contains loopback redirect listener settings.
type ListenerConfig struct {
	Port    uint16 `toml:"port" env:"LOOPAUTH_PORT"`
	Path    string `toml:"path" env:"LOOPAUTH_PATH"`
	Timeout string `toml:"timeout" env:"LOOPAUTH_TIMEOUT"`
}

// ProviderConfig describes the identity provider's authorization endpoint.
type ProviderConfig struct {
	AuthURL  string   `toml:"auth_url" env:"LOOPAUTH_AUTH_URL"`
	ClientID string   `toml:"client_id" env:"LOOPAUTH_CLIENT_ID"`
	Scopes   []string `toml:"scopes" env:"LOOPAUTH_SCOPES" envSeparator:","`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"LOOPAUTH_DB_PATH"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig controls the logger level.
type LogConfig struct {
	Level string `toml:"level" env:"LOOPAUTH_LOG_LEVEL"`
}

// WaitTimeout parses [ListenerConfig.Timeout]. An empty value means no timeout and yields zero.
func (c ListenerConfig) WaitTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: listener timeout %q", ErrInvalidConfig, c.Timeout)
	}
	return d, nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyEnv overwrites config fields whose LOOPAUTH_* environment variable is set.
func ApplyEnv(config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config", ErrNilArgument)
	}
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config", ErrNilArgument)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}
