// Package repositories implements SQLite persistence for domain records.
//
// Key Implementations:
//   - [HistoryRepository] : append-only log of created playlists, listed newest first
//
// Repositories satisfy models.Repository[T]. Song lists are stored as a JSON column.
package repositories
