package models

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for records kept by a [Repository].
type Model interface {
	Identifier() string // Identifier returns the unique identifier for this model
	Validate() error    // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the append-only persistence contract used for history.
type Repository[T Model] interface {
	Save(ctx context.Context, model T) error       // Save inserts a new model
	Get(ctx context.Context, id string) (T, error) // Get retrieves a model by its ID
	List(ctx context.Context) ([]T, error)         // List returns all models, newest first
}

// Song is a recommended track. Two songs are equal when both fields match exactly.
type Song struct {
	Title  string `json:"title" validate:"required"`
	Artist string `json:"artist" validate:"required"`
}

// String renders the song as `"Title" by Artist`.
func (s Song) String() string {
	return fmt.Sprintf("%q by %s", s.Title, s.Artist)
}

// ResolvedTrack pairs a [Song] with the catalog URI it resolved to.
type ResolvedTrack struct {
	Song       Song   `json:"song"`
	CatalogURI string `json:"catalog_uri"`
}

// PlaylistCreationResult is the outcome of assembling a playlist.
//
// AddedSongs and NotFoundSongs together contain every input song exactly once, in input order.
type PlaylistCreationResult struct {
	PlaylistID    string `json:"playlist_id"`
	PlaylistURL   string `json:"playlist_url"`
	AddedSongs    []Song `json:"added_songs"`
	NotFoundSongs []Song `json:"not_found_songs"`
}

// Total returns the number of input songs.
func (r PlaylistCreationResult) Total() int {
	return len(r.AddedSongs) + len(r.NotFoundSongs)
}

// Summary returns the user-facing outcome line, e.g. "8 of 10 songs added; 2 could not be found".
func (r PlaylistCreationResult) Summary() string {
	added, total := len(r.AddedSongs), r.Total()
	if len(r.NotFoundSongs) == 0 {
		return fmt.Sprintf("%d of %d songs added", added, total)
	}
	return fmt.Sprintf("%d of %d songs added; %d could not be found", added, total, len(r.NotFoundSongs))
}

// PlaylistHistoryItem records a successfully created playlist.
type PlaylistHistoryItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Mood          string    `json:"mood"`
	Genre         string    `json:"genre,omitempty"`
	Songs         []Song    `json:"songs"`
	SpotifyURL    string    `json:"spotify_url,omitempty"`
	PlaylistID    string    `json:"playlist_id,omitempty"`
	AddedCount    int       `json:"added_count"`
	NotFoundCount int       `json:"not_found_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewPlaylistHistoryItem builds a history item from a creation result.
//
// The ID is left empty for the repository to assign.
func NewPlaylistHistoryItem(name, mood, genre string, songs []Song, result *PlaylistCreationResult, createdAt time.Time) *PlaylistHistoryItem {
	item := &PlaylistHistoryItem{
		Name:      name,
		Mood:      mood,
		Genre:     genre,
		Songs:     songs,
		CreatedAt: createdAt,
	}
	if result != nil {
		item.SpotifyURL = result.PlaylistURL
		item.PlaylistID = result.PlaylistID
		item.AddedCount = len(result.AddedSongs)
		item.NotFoundCount = len(result.NotFoundSongs)
	}
	return item
}

// Identifier implements [Model].
func (p *PlaylistHistoryItem) Identifier() string { return p.ID }

// Validate implements [Model].
func (p *PlaylistHistoryItem) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(p.Mood) == "" {
		return fmt.Errorf("mood is required")
	}
	if p.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	return nil
}
