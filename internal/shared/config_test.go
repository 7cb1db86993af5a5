package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./setlist.db" {
			t.Errorf("expected database path ./setlist.db, got %s", config.Database.Path)
		}

		if config.Cache.Capacity != 150 {
			t.Errorf("expected cache capacity 150, got %d", config.Cache.Capacity)
		}

		if config.Cache.PersistThreshold != 5 {
			t.Errorf("expected persist threshold 5, got %d", config.Cache.PersistThreshold)
		}

		if !config.Flyweight.Songs || !config.Flyweight.Artists {
			t.Error("expected interning enabled for songs and artists")
		}

		if config.Persistence.Backend != "sqlite" {
			t.Errorf("expected sqlite backend, got %s", config.Persistence.Backend)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for omitted sections", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[cache]
capacity = 2
persist_threshold = 1

[persistence]
backend = "redis"
compression_level = 3
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Cache.Capacity != 2 {
			t.Errorf("expected capacity 2, got %d", config.Cache.Capacity)
		}
		if config.Persistence.CompressionLevel != 3 {
			t.Errorf("expected compression level 3, got %d", config.Persistence.CompressionLevel)
		}
		if config.Redis.Prefix != "setlist" {
			t.Errorf("expected default redis prefix, got %s", config.Redis.Prefix)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("SETLIST_BACKEND", "postgres")
		t.Setenv("SUPABASE_DATABASE_URL", "postgresql://user:pw@db.example.com:5432/postgres")
		t.Setenv("SETLIST_CACHE_CAPACITY", "42")

		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Persistence.Backend != "postgres" {
			t.Errorf("expected backend postgres, got %s", config.Persistence.Backend)
		}
		if config.Postgres.URL != "postgresql://user:pw@db.example.com:5432/postgres" {
			t.Errorf("unexpected postgres url %s", config.Postgres.URL)
		}
		if config.Cache.Capacity != 42 {
			t.Errorf("expected capacity 42, got %d", config.Cache.Capacity)
		}
		if config.Database.Path != "./setlist.db" {
			t.Errorf("unset variables should keep file values, got %s", config.Database.Path)
		}
	})

	t.Run("ApplyEnv invalid value", func(t *testing.T) {
		t.Setenv("SETLIST_CACHE_CAPACITY", "many")
		if err := ApplyEnv(DefaultConfig()); err == nil {
			t.Error("expected error for non-numeric capacity")
		}
	})
}
