// Package models defines the music catalog entities and the persistence contract for evicted playlists.
//
// The package contains three categories of types:
//
// 1. Shared entities: immutable values handed out by the flyweight registries
//   - [Artist] : performer with genre and country of origin
//   - [Song] : title plus a non-owning reference to its [Artist]
//
// 2. Aggregates: mutable, per-owner collections
//   - [Playlist] : ordered song references with a usage counter
//
// 3. Persistence: the boundary between the playlist cache and durable storage
//   - [SnapshotStore] : upsert and fetch of encoded playlist snapshots
//   - [SnapshotCatalog] : listing and clearing of stored snapshots
//
// [Encode] and [Decode] convert a [Playlist] to and from the versioned snapshot payload.
package models
