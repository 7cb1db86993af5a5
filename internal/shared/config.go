package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database    DatabaseConfig    `toml:"database"`
	Cache       CacheConfig       `toml:"cache"`
	Flyweight   FlyweightConfig   `toml:"flyweight"`
	Persistence PersistenceConfig `toml:"persistence"`
	Postgres    PostgresConfig    `toml:"postgres"`
	Redis       RedisConfig       `toml:"redis"`
	REST        RESTConfig        `toml:"rest"`
}

// DatabaseConfig contains SQLite connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"SETLIST_DB_PATH"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// CacheConfig sizes the playlist cache.
type CacheConfig struct {
	Capacity         int   `toml:"capacity" env:"SETLIST_CACHE_CAPACITY"`
	PersistThreshold int64 `toml:"persist_threshold" env:"SETLIST_PERSIST_THRESHOLD"`
}

// FlyweightConfig toggles interning per registry.
type FlyweightConfig struct {
	Songs   bool `toml:"songs"`
	Artists bool `toml:"artists"`
}

// PersistenceConfig selects where evicted playlists go.
//
// Backend is one of "sqlite", "postgres", "redis" or "none".
// A CompressionLevel above zero wraps the backend with zstd.
type PersistenceConfig struct {
	Backend          string `toml:"backend" env:"SETLIST_BACKEND"`
	CompressionLevel int    `toml:"compression_level" env:"SETLIST_COMPRESSION_LEVEL"`
}

// PostgresConfig contains the Postgres (Supabase) connection string.
type PostgresConfig struct {
	URL        string `toml:"url" env:"SUPABASE_DATABASE_URL"`
	RequireSSL bool   `toml:"require_ssl"`
}

// RedisConfig contains the Redis connection settings.
type RedisConfig struct {
	URL    string `toml:"url" env:"REDIS_URL"`
	Prefix string `toml:"prefix"`
}

// RESTConfig contains the Supabase REST endpoint used for read-only listings.
type RESTConfig struct {
	ProjectURL string  `toml:"project_url" env:"SUPABASE_PROJECT_URL"`
	APIKey     string  `toml:"api_key" env:"SUPABASE_API_KEY"`
	RateLimit  float64 `toml:"rate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
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

// ApplyEnv overrides config values from environment variables.
// Unset variables leave the file values untouched.
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
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
