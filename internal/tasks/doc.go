// Package tasks runs interning scenarios with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] type defines three operations:
//
//  1. [Engine.Run] : Build a batch of synthetic playlists
//     - Draws songs from [Catalog] with a seeded generator
//     - Resolves every song through the flyweight registries
//     - Assigns random usage and feeds the optional playlist cache
//     - Returns created counters, heap delta and cache stats
//
//  2. [Engine.Compare] : Run the same batch with interning ON and OFF
//
//  3. [Engine.Demo] : Build three small hand-picked playlists that share songs
//
// # Progress Reporting
//
// Run and Compare accept a send-only [ProgressUpdate] channel. Sends never block,
// so a slow or absent reader only loses updates. Pass nil to disable reporting.
package tasks
