// Package models defines the value types shared by the playlist pipeline.
//
// The package contains two categories of types:
//
// 1. Pipeline values: immutable data passed between components during a single request
//   - [Song] : a (title, artist) pair proposed by a recommendation provider
//   - [ResolvedTrack] : a [Song] matched to a catalog URI
//   - [PlaylistCreationResult] : the created playlist and the added / not-found partition of its input
//
// 2. Persistent entities: records written once and read back later
//   - [PlaylistHistoryItem] : one row of playlist history, never updated after creation
//
// Persistent entities implement [Model]; the [Repository] interface defines the save/get/list contract.
package models
