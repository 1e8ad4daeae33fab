// Package tasks turns a mood into a playlist with real-time progress reporting.
//
// # Core Operations
//
//  1. [Assembler.CreatePlaylist] : build a playlist from an ordered list of songs
//     - Fetches the current user profile (owner of the new playlist)
//     - Creates an empty public playlist
//     - Resolves each song sequentially, in input order
//     - Inserts resolved URIs in chunks of at most 100
//     - Returns the added and not-found partitions of the input
//
//  2. [PlaylistEngine.Generate] : the full mood → playlist use case
//     - Validates the request and asks the recommendation provider for songs
//     - Derives the playlist name and description from mood and genre
//     - Delegates to the assembler and records the result in history
//
// # Failure Handling
//
// Profile and playlist creation failures abort the operation, as do insertion failures.
// A song whose lookup fails is reported as not found and never aborts the operation.
//
// # Progress Reporting
//
// Operations take an optional send-only channel of [ProgressUpdate].
// Updates use select with default so a slow or absent reader never blocks the pipeline.
package tasks
