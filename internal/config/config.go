// internal/config/config.go
//
// This package handles configuration and the .roster directory structure.
// Every directory roster runs from gets a .roster/ folder holding config.yaml
// and the rotating log file. ROSTER_* variables override the file; they may
// also come from a .env file next to .roster/.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// RosterDir is the name of the directory we create in the working directory
	RosterDir = ".roster"

	DefaultStoreURL     = "http://localhost:8000"
	DefaultStoreTimeout = 10 * time.Second
	DefaultIDStrategy   = "uuid"
	DefaultLogLevel     = "info"
	DefaultDevStoreHost = "127.0.0.1"
	DefaultDevStorePort = 8000
)

const defaultConfigYAML = `# roster configuration
version: 1

# Resource store holding the employees collection.
store:
  url: http://localhost:8000
  timeout: 10s

# How new employee ids are generated: uuid (random 128-bit) or timestamp (base36 millis).
ids:
  strategy: uuid

log:
  level: info
  max_size_mb: 10
  max_backups: 3
  max_age_days: 14
  compress: false

# Local in-memory store served by roster-store.
# rate_limit is requests per second across all clients; 0 disables it.
devstore:
  host: 127.0.0.1
  port: 8000
  rate_limit: 0
  burst: 10
`

// StoreConfig points at the remote resource store.
type StoreConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// IDConfig selects the id generator.
type IDConfig struct {
	Strategy string `yaml:"strategy"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DevStoreConfig is where roster-store listens.
type DevStoreConfig struct {
	Host      string  `yaml:"host"`
	Port      int     `yaml:"port"`
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// FileConfig models .roster/config.yaml.
type FileConfig struct {
	Version  int            `yaml:"version"`
	Store    StoreConfig    `yaml:"store"`
	IDs      IDConfig       `yaml:"ids"`
	Log      LogConfig      `yaml:"log"`
	DevStore DevStoreConfig `yaml:"devstore"`
}

// Duration lets yaml carry values like "10s".
type Duration time.Duration

// UnmarshalYAML accepts Go duration strings or bare seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = 0
		return nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config holds the runtime configuration for roster.
type Config struct {
	// WorkDir is the directory the user ran roster from
	WorkDir string

	// RosterDir is WorkDir/.roster
	RosterDir string

	File FileConfig
}

// InitRosterDir creates the .roster directory structure in dir.
//
// Structure created:
// .roster/
// ├── config.yaml
// └── logs/        <- rotating diagnostic log
func InitRosterDir(dir string) error {
	rosterDir := filepath.Join(dir, RosterDir)
	if err := os.MkdirAll(filepath.Join(rosterDir, "logs"), 0o755); err != nil {
		return fmt.Errorf("config: ensure roster dir: %w", err)
	}
	return ensureConfigFile(filepath.Join(rosterDir, "config.yaml"))
}

// NewConfig loads .roster/config.yaml (if present) and applies env overrides.
// Process environment wins over dir/.env.
func NewConfig(dir string) (*Config, error) {
	cfg := &Config{
		WorkDir:   dir,
		RosterDir: filepath.Join(dir, RosterDir),
		File:      defaultFileConfig(),
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	dotenv, err := readDotEnv(filepath.Join(dir, ".env"))
	if err != nil {
		return nil, err
	}
	cfg.File.applyEnvOverrides(func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return dotenv[key]
	})
	cfg.File.normalize()
	if err := cfg.File.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location of config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.RosterDir, "config.yaml")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.RosterDir, "logs")
}

// LogPath returns the diagnostic log file path.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "roster.log")
}

// StoreURL returns the base URL of the resource store.
func (c *Config) StoreURL() string {
	return c.File.Store.URL
}

// SetStoreURL replaces the store base URL after the same checks the config
// file goes through. The stored config is left alone on error.
func (c *Config) SetStoreURL(raw string) error {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if err := checkStoreURL(trimmed); err != nil {
		return err
	}
	c.File.Store.URL = trimmed
	return nil
}

func checkStoreURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("store.url must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}

// StoreTimeout bounds every store request.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.File.Store.Timeout)
}

// IDStrategy returns the configured id generator name.
func (c *Config) IDStrategy() string {
	return c.File.IDs.Strategy
}

// DevStoreAddress returns host:port for roster-store.
func (c *Config) DevStoreAddress() string {
	return net.JoinHostPort(c.File.DevStore.Host, strconv.Itoa(c.File.DevStore.Port))
}

func (c *Config) load() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	parsed := defaultFileConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	c.File = parsed
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		Store: StoreConfig{
			URL:     DefaultStoreURL,
			Timeout: Duration(DefaultStoreTimeout),
		},
		IDs: IDConfig{Strategy: DefaultIDStrategy},
		Log: LogConfig{
			Level:      DefaultLogLevel,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		DevStore: DevStoreConfig{Host: DefaultDevStoreHost, Port: DefaultDevStorePort, Burst: 10},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if fc.Store.Timeout <= 0 {
		fc.Store.Timeout = Duration(DefaultStoreTimeout)
	}
	if fc.Log.MaxSizeMB <= 0 {
		fc.Log.MaxSizeMB = 10
	}
}

func (fc *FileConfig) applyEnvOverrides(getenv func(string) string) {
	if value := strings.TrimSpace(getenv("ROSTER_STORE_URL")); value != "" {
		fc.Store.URL = value
	}
	if value := strings.TrimSpace(getenv("ROSTER_STORE_TIMEOUT")); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			fc.Store.Timeout = Duration(parsed)
		}
	}
	if value := strings.TrimSpace(getenv("ROSTER_ID_STRATEGY")); value != "" {
		fc.IDs.Strategy = value
	}
	if value := strings.TrimSpace(getenv("ROSTER_LOG_LEVEL")); value != "" {
		fc.Log.Level = value
	}
	if value := strings.TrimSpace(getenv("ROSTER_DEVSTORE_HOST")); value != "" {
		fc.DevStore.Host = value
	}
	if value := strings.TrimSpace(getenv("ROSTER_DEVSTORE_PORT")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			fc.DevStore.Port = parsed
		}
	}
	if value := strings.TrimSpace(getenv("ROSTER_DEVSTORE_RATE_LIMIT")); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			fc.DevStore.RateLimit = parsed
		}
	}
}

func (fc *FileConfig) normalize() {
	fc.Store.URL = strings.TrimRight(strings.TrimSpace(fc.Store.URL), "/")
	if fc.Store.URL == "" {
		fc.Store.URL = DefaultStoreURL
	}
	fc.IDs.Strategy = strings.ToLower(strings.TrimSpace(fc.IDs.Strategy))
	if fc.IDs.Strategy == "" {
		fc.IDs.Strategy = DefaultIDStrategy
	}
	fc.Log.Level = strings.ToLower(strings.TrimSpace(fc.Log.Level))
	if fc.Log.Level == "" {
		fc.Log.Level = DefaultLogLevel
	}
	fc.DevStore.Host = strings.TrimSpace(fc.DevStore.Host)
	if fc.DevStore.Host == "" {
		fc.DevStore.Host = DefaultDevStoreHost
	}
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if err := checkStoreURL(fc.Store.URL); err != nil {
		return err
	}
	switch fc.IDs.Strategy {
	case "uuid", "timestamp":
	default:
		return fmt.Errorf("ids.strategy must be 'uuid' or 'timestamp'")
	}
	switch fc.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if fc.DevStore.Port < 0 || fc.DevStore.Port > 65535 {
		return fmt.Errorf("devstore.port out of range: %d", fc.DevStore.Port)
	}
	if fc.DevStore.RateLimit < 0 || fc.DevStore.Burst < 0 {
		return fmt.Errorf("devstore.rate_limit and devstore.burst must not be negative")
	}
	return nil
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
