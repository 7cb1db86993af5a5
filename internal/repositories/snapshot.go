package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// SnapshotRepository stores evicted playlist snapshots in SQLite.
//
// Rows are keyed by playlist name; upserting an existing name replaces its payload and usage
// and bumps updated_at while keeping the original id and created_at.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Upsert inserts or replaces the snapshot stored under name
func (r *SnapshotRepository) Upsert(ctx context.Context, name string, payload []byte, usage int64) error {
	if name == "" {
		return fmt.Errorf("%w: empty playlist name", shared.ErrInvalidInput)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO playlist_snapshots (id, name, data, usage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data = excluded.data,
			usage = excluded.usage,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, shared.GenerateID(), name, payload, usage, now, now); err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// Fetch returns the payload stored under name
func (r *SnapshotRepository) Fetch(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, "SELECT data FROM playlist_snapshots WHERE name = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	return data, nil
}

// List returns every stored snapshot, most recently updated first
func (r *SnapshotRepository) List(ctx context.Context) ([]models.SnapshotInfo, error) {
	query := `
		SELECT name, usage, length(data), updated_at
		FROM playlist_snapshots
		ORDER BY updated_at DESC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
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

// Delete removes the snapshot stored under name
func (r *SnapshotRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM playlist_snapshots WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, name)
	}
	return nil
}

// Clear removes every stored snapshot
func (r *SnapshotRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM playlist_snapshots"); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (r *SnapshotRepository) Close() error {
	return r.db.Close()
}
