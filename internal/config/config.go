// Package config loads the coordinator settings from skury.yaml and the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/skury/pkg/gemini"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "skury.yaml"

// Environment overrides.
const (
	EnvAPIKey    = "SKURY_GEMINI_API_KEY"
	EnvModel     = "SKURY_MODEL"
	EnvStore     = "SKURY_STORE"
	EnvRedisAddr = "SKURY_REDIS_ADDR"
	EnvLogLevel  = "SKURY_LOG_LEVEL"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Credential backends.
const (
	CredentialStore   = "store"
	CredentialKeyring = "keyring"
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every tunable of a coordinator.
type Config struct {
	Model          string        `yaml:"model"`
	Endpoint       string        `yaml:"endpoint"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ReplyTimeout   time.Duration `yaml:"reply_timeout"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	LogLevel       string        `yaml:"log_level"`

	Store      StoreConfig `yaml:"store"`
	Credential string      `yaml:"credential"`
	// EncryptionKey is a hex encoded 32 byte AES key for stored credentials.
	EncryptionKey string `yaml:"encryption_key"`

	HTTP HTTPConfig `yaml:"http"`
	MCP  MCPConfig  `yaml:"mcp"`

	// APIKey is only read from the environment and never written back.
	APIKey string `yaml:"-"`
}

// StoreConfig selects the preference store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Redis   struct {
		Addr   string `yaml:"addr"`
		DB     int    `yaml:"db"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`
}

// HTTPConfig configures `skury serve`.
type HTTPConfig struct {
	// Host is the listen address. Loopback unless set explicitly.
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// MCPConfig configures `skury mcp`.
type MCPConfig struct {
	Transport string `yaml:"transport"`
	Port      int    `yaml:"port"`
}

// Default returns the built-in settings.
func Default() Config {
	c := Config{
		Model:          gemini.DefaultModel,
		Endpoint:       gemini.DefaultEndpoint,
		RequestTimeout: 60 * time.Second,
		ReplyTimeout:   30 * time.Second,
		ReconnectDelay: 1500 * time.Millisecond,
		PingInterval:   30 * time.Second,
		LogLevel:       "info",
		Credential:     CredentialStore,
		HTTP:           HTTPConfig{Host: "127.0.0.1", Port: 8080},
		MCP:            MCPConfig{Transport: "stdio", Port: 8081},
	}
	c.Store.Backend = StoreMemory
	c.Store.Path = ".skury/preferences.json"
	c.Store.Redis.Addr = "localhost:6379"
	c.Store.Redis.Prefix = "skury:"
	return c
}

// Load reads dir/skury.yaml over the defaults, then dir/.env and the process
// environment. A missing file is not an error.
func Load(dir string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", FileName, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return c, fmt.Errorf("read %s: %w", FileName, err)
	}

	// Existing variables win over the .env file.
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}
	c.applyEnv()

	return c, c.Validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvStore); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Store.Redis.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate checks enumerations, durations and the encryption key.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalid, c.Store.Backend)
	}
	switch c.Credential {
	case CredentialStore, CredentialKeyring:
	default:
		return fmt.Errorf("%w: unknown credential backend %q", ErrInvalid, c.Credential)
	}
	if c.EncryptionKey != "" {
		if _, err := c.Key(); err != nil {
			return err
		}
	}
	for name, d := range map[string]time.Duration{
		"request_timeout": c.RequestTimeout,
		"reply_timeout":   c.ReplyTimeout,
		"reconnect_delay": c.ReconnectDelay,
		"ping_interval":   c.PingInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, name, d)
		}
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: http port %d", ErrInvalid, c.HTTP.Port)
	}
	return nil
}

// Key decodes EncryptionKey. It returns nil when no key is configured.
func (c Config) Key() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("%w: encryption_key must be 64 hex characters", ErrInvalid)
	}
	return key, nil
}

// Marshal renders c as YAML, for `skury config`.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
