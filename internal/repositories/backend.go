package repositories

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// Backend is a snapshot store that can also list, clear and close.
type Backend interface {
	models.SnapshotStore
	models.SnapshotCatalog
	io.Closer
}

// Opener builds a [Backend] from configuration.
type Opener func(ctx context.Context, cfg *shared.Config, logger *log.Logger) (Backend, error)

// openers is the backend registration table, keyed by [shared.PersistenceConfig] Backend.
var openers = map[string]Opener{
	"sqlite":   openSQLite,
	"postgres": openPostgres,
	"redis":    openRedis,
}

// Backends lists the registered backend names plus "none".
func Backends() []string {
	names := make([]string, 0, len(openers)+1)
	for name := range openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return append(names, "none")
}

// Open resolves the configured backend. "none" (or an empty value) returns
// [shared.ErrPersistenceDisabled]; callers treat that as running without persistence.
func Open(ctx context.Context, cfg *shared.Config, logger *log.Logger) (Backend, error) {
	if logger == nil {
		logger = shared.NopLogger()
	}

	name := strings.ToLower(strings.TrimSpace(cfg.Persistence.Backend))
	if name == "" || name == "none" {
		return nil, shared.ErrPersistenceDisabled
	}

	open, ok := openers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", shared.ErrUnknownBackend, name, strings.Join(Backends(), ", "))
	}

	backend, err := open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if level := cfg.Persistence.CompressionLevel; level > 0 {
		compressed, err := NewCompressedStore(backend, level)
		if err != nil {
			backend.Close()
			return nil, err
		}
		backend = compressed
	}

	logger.Info("opened persistence backend", "backend", name, "compression", cfg.Persistence.CompressionLevel)
	return backend, nil
}

func openSQLite(ctx context.Context, cfg *shared.Config, logger *log.Logger) (Backend, error) {
	db, err := shared.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)

	unlock, err := lockMigrations(ctx, cfg.Database.Path)
	if err != nil {
		db.Close()
		return nil, err
	}
	defer unlock()

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewSnapshotRepository(db), nil
}

// lockMigrations takes an exclusive lock next to the database file so that
// concurrent processes do not apply the same migration twice.
func lockMigrations(ctx context.Context, path string) (func(), error) {
	if path == "" || path == ":memory:" {
		return func() {}, nil
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", lock.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("failed to lock %s", lock.Path())
	}
	return func() { _ = lock.Unlock() }, nil
}

func openPostgres(ctx context.Context, cfg *shared.Config, logger *log.Logger) (Backend, error) {
	store, err := OpenPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if err := store.AutoMigrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func openRedis(ctx context.Context, cfg *shared.Config, logger *log.Logger) (Backend, error) {
	return OpenRedis(ctx, cfg.Redis)
}
