// Package repositories implements durable storage for evicted playlist snapshots.
//
// Every backend satisfies [Backend]: the cache-facing [models.SnapshotStore] plus listing,
// clearing and closing for the CLI.
//
// Key Implementations:
//   - [SnapshotRepository] : SQLite table managed by the embedded migrations
//   - [PostgresStore] : Postgres/Supabase table over a pgx pool
//   - [RedisStore] : one hash per playlist plus a sorted-set index
//   - [CompressedStore] : zstd decorator around any other backend
//
// [Open] picks a backend by name from a registration table built at compile time.
package repositories
