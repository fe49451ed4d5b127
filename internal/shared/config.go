package shared

import (
	"bytes"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// NameScope controls how playlist name collisions are detected.
type NameScope string

const (
	NameScopeGlobal NameScope = "global" // any playlist with the same name blocks creation
	NameScopeUser   NameScope = "user"   // only the owner's playlists are checked
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Playlists PlaylistsConfig `toml:"playlists"`
	Log       LogConfig       `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	Prefix       string   `toml:"prefix"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Addr returns the host:port pair the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig contains bearer token settings.
type AuthConfig struct {
	JWTSecret string   `toml:"jwt_secret"`
	Issuer    string   `toml:"issuer"`
	TokenTTL  Duration `toml:"token_ttl"`
}

// RateLimitConfig contains per-client request limits.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// PlaylistsConfig contains playlist policy settings.
type PlaylistsConfig struct {
	NameScope NameScope `toml:"name_scope"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration wraps [time.Duration] so it can be decoded from TOML strings like "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidConfig, string(text))
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Validate checks values that would otherwise fail at request time.
func (c *Config) Validate() error {
	switch c.Playlists.NameScope {
	case NameScopeGlobal, NameScopeUser:
	default:
		return fmt.Errorf("%w: playlists.name_scope must be %q or %q, got %q",
			ErrInvalidConfig, NameScopeGlobal, NameScopeUser, c.Playlists.NameScope)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}

	return nil
}

// ValidateAuth checks that a token signing secret is configured.
// The embedded template ships without one.
func (c *Config) ValidateAuth() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("%w: set auth.jwt_secret or CPX_JWT_SECRET", ErrMissingCredentials)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config,
// filling in a freshly generated JWT secret.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	secret, err := generateSecret()
	if err != nil {
		return err
	}
	data := bytes.Replace(exampleConf, []byte(`jwt_secret = ""`), []byte(fmt.Sprintf("jwt_secret = %q", secret)), 1)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// LoadEnv loads variables from the given .env files (".env" when none are given).
// A missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values from CPX_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("CPX_DATABASE_PATH"); ok {
		c.Database.Path = v
	}
	if v, ok := os.LookupEnv("CPX_SERVER_HOST"); ok {
		c.Server.Host = v
	}
	if v, ok := os.LookupEnv("CPX_SERVER_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CPX_SERVER_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv("CPX_JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
	if v, ok := os.LookupEnv("CPX_NAME_SCOPE"); ok {
		c.Playlists.NameScope = NameScope(v)
	}
	if v, ok := os.LookupEnv("CPX_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	return nil
}
