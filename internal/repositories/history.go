package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/shared"
)

const historyColumns = `id, name, mood, genre, songs, spotify_url, playlist_id, added_count, not_found_count, created_at`

var _ models.Repository[*models.PlaylistHistoryItem] = (*HistoryRepository)(nil)

// HistoryRepository implements models.Repository[*models.PlaylistHistoryItem].
//
// Items are inserted once and never updated.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Save inserts item, assigning a new ID when it has none.
func (r *HistoryRepository) Save(ctx context.Context, item *models.PlaylistHistoryItem) error {
	if item.ID == "" {
		item.ID = shared.GenerateID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	item.CreatedAt = item.CreatedAt.UTC()

	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	songs := item.Songs
	if songs == nil {
		songs = []models.Song{}
	}
	encoded, err := json.Marshal(songs)
	if err != nil {
		return fmt.Errorf("failed to encode songs: %w", err)
	}

	query := `INSERT INTO playlist_history (` + historyColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Mood,
		item.Genre,
		string(encoded),
		item.SpotifyURL,
		item.PlaylistID,
		item.AddedCount,
		item.NotFoundCount,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history item: %w", err)
	}
	return nil
}

// Get retrieves a history item by ID.
func (r *HistoryRepository) Get(ctx context.Context, id string) (*models.PlaylistHistoryItem, error) {
	query := `SELECT ` + historyColumns + ` FROM playlist_history WHERE id = ?`

	item, err := scanHistory(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrHistoryNotFound, id)
	}
	return item, err
}

// List returns every history item, newest first.
func (r *HistoryRepository) List(ctx context.Context) ([]*models.PlaylistHistoryItem, error) {
	return r.list(ctx, -1)
}

// Recent returns at most limit history items, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]*models.PlaylistHistoryItem, error) {
	if limit <= 0 {
		return []*models.PlaylistHistoryItem{}, nil
	}
	return r.list(ctx, limit)
}

// RecentSongs returns the distinct songs of the latest items, up to limit, newest first.
func (r *HistoryRepository) RecentSongs(ctx context.Context, limit int) ([]models.Song, error) {
	if limit <= 0 {
		return []models.Song{}, nil
	}

	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[models.Song]bool)
	songs := make([]models.Song, 0, limit)
	for _, item := range items {
		for _, song := range item.Songs {
			if len(songs) >= limit {
				return songs, nil
			}
			if seen[song] {
				continue
			}
			seen[song] = true
			songs = append(songs, song)
		}
	}
	return songs, nil
}

func (r *HistoryRepository) list(ctx context.Context, limit int) ([]*models.PlaylistHistoryItem, error) {
	query := `SELECT ` + historyColumns + ` FROM playlist_history ORDER BY created_at DESC, rowid DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	items := []*models.PlaylistHistoryItem{}
	for rows.Next() {
		item, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanHistory scans a single row into a [models.PlaylistHistoryItem]
func scanHistory(row scanner) (*models.PlaylistHistoryItem, error) {
	var (
		item       models.PlaylistHistoryItem
		genre      sql.NullString
		songs      string
		spotifyURL sql.NullString
		playlistID sql.NullString
	)

	err := row.Scan(&item.ID, &item.Name, &item.Mood, &genre, &songs, &spotifyURL, &playlistID,
		&item.AddedCount, &item.NotFoundCount, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan history item: %w", err)
	}

	if err := json.Unmarshal([]byte(songs), &item.Songs); err != nil {
		return nil, fmt.Errorf("failed to decode songs for %s: %w", item.ID, err)
	}
	item.Genre = genre.String
	item.SpotifyURL = spotifyURL.String
	item.PlaylistID = playlistID.String
	return &item, nil
}
