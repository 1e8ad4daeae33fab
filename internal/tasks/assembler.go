package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodify/internal/metrics"
	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/services"
	"github.com/desertthunder/moodify/internal/shared"
)

// Resolver maps a song to a catalog URI. Satisfied by [services.TrackResolver].
type Resolver interface {
	ResolveWithPass(ctx context.Context, song models.Song) (models.ResolvedTrack, services.Pass, error)
}

// Assembler creates playlists from recommended songs.
type Assembler struct {
	catalog  services.Catalog
	resolver Resolver
	logger   *log.Logger
}

// NewAssembler creates an [Assembler]. A nil logger uses the default logger.
func NewAssembler(catalog services.Catalog, resolver Resolver, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.Default()
	}
	return &Assembler{catalog: catalog, resolver: resolver, logger: logger}
}

// CreatePlaylist creates a public playlist named name and fills it with every song that resolves.
//
// Songs are resolved one at a time in input order. A song that fails to resolve is reported in
// NotFoundSongs. Profile, creation and insertion failures abort the operation with no result.
func (a *Assembler) CreatePlaylist(ctx context.Context, name, description string, songs []models.Song, progress chan<- ProgressUpdate) (*models.PlaylistCreationResult, error) {
	if a.catalog == nil || a.resolver == nil {
		return nil, fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, fetchProfileUpdate())
	user, err := a.catalog.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	sendProgress(progress, createPlaylistUpdate(name))
	playlist, err := a.catalog.CreatePlaylist(ctx, user.ID, name, description, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	sendProgress(progress, createdPlaylistUpdate(playlist))

	result := &models.PlaylistCreationResult{
		PlaylistID:    playlist.ID,
		PlaylistURL:   playlist.ShareURL(),
		AddedSongs:    []models.Song{},
		NotFoundSongs: []models.Song{},
	}

	resolved := make([]models.ResolvedTrack, 0, len(songs))
	total := len(songs)
	for i, song := range songs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		track, pass, err := a.resolver.ResolveWithPass(ctx, song)
		switch {
		case err != nil:
			a.logger.Warn("track lookup failed", "title", song.Title, "artist", song.Artist, "error", err)
			result.NotFoundSongs = append(result.NotFoundSongs, song)
		case pass == services.PassNone:
			result.NotFoundSongs = append(result.NotFoundSongs, song)
		default:
			result.AddedSongs = append(result.AddedSongs, song)
			resolved = append(resolved, track)
		}
		sendProgress(progress, resolveTrackUpdate(i+1, total, song, err == nil && pass != services.PassNone))
	}

	uris := make([]string, len(resolved))
	for i, track := range resolved {
		uris[i] = track.CatalogURI
	}

	batches := Chunk(uris, services.MaxTracksPerRequest)
	for i, batch := range batches {
		sendProgress(progress, addTracksUpdate(i+1, len(batches), len(batch)))
		if err := a.catalog.AddTracks(ctx, playlist.ID, batch); err != nil {
			return nil, fmt.Errorf("failed to add tracks (batch %d of %d): %w", i+1, len(batches), err)
		}
	}

	metrics.PlaylistsCreatedTotal.Inc()
	metrics.SongsAddedTotal.Add(float64(len(result.AddedSongs)))
	metrics.SongsNotFoundTotal.Add(float64(len(result.NotFoundSongs)))

	a.logger.Info("playlist assembled",
		"id", result.PlaylistID, "added", len(result.AddedSongs), "not_found", len(result.NotFoundSongs))
	return result, nil
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
