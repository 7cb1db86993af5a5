package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// PgxConn is the subset of [pgxpool.Pool] used by [PostgresStore].
// It is satisfied by pgxmock pools in tests.
type PgxConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps playlist snapshots in a Postgres table (Supabase in production).
type PostgresStore struct {
	conn  PgxConn
	close func()
}

// NewPostgresStore wraps an open connection. The caller keeps ownership of conn.
func NewPostgresStore(conn PgxConn) *PostgresStore {
	return &PostgresStore{conn: conn}
}

// OpenPostgres normalizes the configured URL, connects a pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, cfg shared.PostgresConfig, logger *log.Logger) (*PostgresStore, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("%w: postgres url (set SUPABASE_DATABASE_URL)", shared.ErrMissingConfig)
	}

	dsn, err := NormalizeDSN(cfg.URL, cfg.RequireSSL)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres at %s: %w", RedactDSN(dsn), err)
	}

	if logger != nil {
		logger.Info("connected to postgres", "dsn", RedactDSN(dsn))
	}
	return &PostgresStore{conn: pool, close: pool.Close}, nil
}

// AutoMigrate creates the snapshot table and index when missing.
func (s *PostgresStore) AutoMigrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS playlist_snapshots (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			data BYTEA NOT NULL,
			usage BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_playlist_snapshots_updated_at ON playlist_snapshots(updated_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate postgres schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, name string, payload []byte, usage int64) error {
	if name == "" {
		return fmt.Errorf("%w: empty playlist name", shared.ErrInvalidInput)
	}

	_, err := s.conn.Exec(ctx, `
		INSERT INTO playlist_snapshots (id, name, data, usage, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (name) DO UPDATE SET
			data = EXCLUDED.data,
			usage = EXCLUDED.usage,
			updated_at = now()`,
		shared.GenerateID(), name, payload, usage,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.conn.QueryRow(ctx, `SELECT data FROM playlist_snapshots WHERE name = $1`, name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	return data, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.SnapshotInfo, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT name, usage, octet_length(data), updated_at
		FROM playlist_snapshots
		ORDER BY updated_at DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var infos []models.SnapshotInfo
	for rows.Next() {
		var info models.SnapshotInfo
		if err := rows.Scan(&info.Name, &info.Usage, &info.Size, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return infos, nil
}

func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM playlist_snapshots WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, name)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, `TRUNCATE TABLE playlist_snapshots`); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}

// Close releases the pool if the store opened it.
func (s *PostgresStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

// NormalizeDSN accepts JDBC-style and plain Postgres URLs and returns a pgx connection string.
// With requireSSL set, sslmode=require is added unless an sslmode is already present.
func NormalizeDSN(raw string, requireSSL bool) (string, error) {
	dsn := strings.TrimSpace(raw)
	dsn = strings.TrimPrefix(dsn, "jdbc:")
	if rest, ok := strings.CutPrefix(dsn, "postgres://"); ok {
		dsn = "postgresql://" + rest
	}
	if !strings.HasPrefix(dsn, "postgresql://") {
		return "", fmt.Errorf("%w: postgres url must start with postgresql://", shared.ErrInvalidConfig)
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: postgres url has no host", shared.ErrInvalidConfig)
	}

	if requireSSL {
		q := u.Query()
		if q.Get("sslmode") == "" {
			q.Set("sslmode", "require")
			u.RawQuery = q.Encode()
		}
	}
	return u.String(), nil
}

// RedactDSN hides the password in a connection URL for logging.
func RedactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "<invalid dsn>"
	}
	return u.Redacted()
}
