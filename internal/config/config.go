// Package config loads server configuration.
//
// Configuration can be loaded from:
//  1. A YAML file (CONFIG_PATH, default config.yaml), with ${VAR} expansion
//  2. Environment variables (fallback)
//
// Unset fields get the defaults below either way.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort       = 8080
	DefaultDBPath     = "./data/bills.db"
	DefaultStaticPath = "../frontend/static"
	DefaultTokenTTL   = 30 * 24 * time.Hour
	DefaultLogLevel   = "info"
)

// Config represents the entire server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Port        int      `yaml:"port"`
	StaticPath  string   `yaml:"static_path"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// AuthConfig holds edit token settings
type AuthConfig struct {
	// TokenSecret signs edit tokens. Tokens stop validating when it changes.
	TokenSecret string `yaml:"token_secret"`

	// TokenTTL is how long an edit token stays valid; 0 means forever.
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${TOKEN_SECRET})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvInt("PORT", DefaultPort),
			StaticPath:  getEnv("STATIC_PATH", DefaultStaticPath),
			CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("DB_PATH", DefaultDBPath),
		},
		Auth: AuthConfig{
			TokenSecret: os.Getenv("TOKEN_SECRET"),
			TokenTTL:    getEnvDuration("TOKEN_TTL", DefaultTokenTTL),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", DefaultLogLevel),
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv loads the file named by CONFIG_PATH (default config.yaml) and
// falls back to environment variables when it is missing. A file that exists
// but does not parse is an error.
func LoadOrEnv() (*Config, error) {
	path := getEnv("CONFIG_PATH", "config.yaml")
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return LoadFromEnv(), nil
	}
	return nil, err
}

// Addr returns the listen address for the server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.StaticPath == "" {
		c.Server.StaticPath = DefaultStaticPath
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = DefaultDBPath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
