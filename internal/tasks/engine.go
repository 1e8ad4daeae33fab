package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/recommend"
	"github.com/desertthunder/moodify/internal/shared"
)

// HistorySaver persists created playlists. Satisfied by repositories.HistoryRepository.
type HistorySaver interface {
	Save(ctx context.Context, item *models.PlaylistHistoryItem) error
}

// GenerateRequest is a mood → playlist request. Name overrides the derived playlist name.
type GenerateRequest struct {
	Mood  string `json:"mood"`
	Genre string `json:"genre,omitempty"`
	Name  string `json:"name,omitempty"`
}

// GenerateResult is the outcome of [PlaylistEngine.Generate].
type GenerateResult struct {
	Name        string                         `json:"name"`
	Description string                         `json:"description"`
	Songs       []models.Song                  `json:"songs"`
	Playlist    *models.PlaylistCreationResult `json:"playlist"`
	History     *models.PlaylistHistoryItem    `json:"history,omitempty"`
}

// Summary returns the user-facing outcome line.
func (r *GenerateResult) Summary() string {
	if r.Playlist == nil {
		return ""
	}
	return r.Playlist.Summary()
}

// PlaylistEngine runs the mood → recommendations → playlist → history pipeline.
type PlaylistEngine struct {
	provider  recommend.Provider
	assembler *Assembler
	history   HistorySaver
	now       func() time.Time
	logger    *log.Logger
}

// EngineOption configures a [PlaylistEngine].
type EngineOption func(*PlaylistEngine)

// WithHistory records created playlists in h.
func WithHistory(h HistorySaver) EngineOption {
	return func(e *PlaylistEngine) { e.history = h }
}

// WithEngineClock overrides the clock used to timestamp history items.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *PlaylistEngine) { e.now = now }
}

// WithEngineLogger sets the engine's logger.
func WithEngineLogger(l *log.Logger) EngineOption {
	return func(e *PlaylistEngine) { e.logger = l }
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided collaborators.
func NewPlaylistEngine(provider recommend.Provider, assembler *Assembler, opts ...EngineOption) *PlaylistEngine {
	e := &PlaylistEngine{
		provider:  provider,
		assembler: assembler,
		now:       time.Now,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PlaylistName derives the playlist name from mood and genre, e.g. "happy pop Playlist".
func PlaylistName(mood, genre string) string {
	if genre == "" {
		return mood + " Playlist"
	}
	return mood + " " + genre + " Playlist"
}

// PlaylistDescription derives the playlist description from mood and genre.
func PlaylistDescription(mood, genre string) string {
	if genre == "" {
		return fmt.Sprintf("A playlist for the mood %q.", mood)
	}
	return fmt.Sprintf("A playlist for the mood %q with %s music.", mood, genre)
}

// Generate recommends songs for req and assembles them into a playlist.
//
// Failing to record history is logged and does not fail the request.
func (e *PlaylistEngine) Generate(ctx context.Context, req GenerateRequest, progress chan<- ProgressUpdate) (*GenerateResult, error) {
	if e.provider == nil || e.assembler == nil {
		return nil, fmt.Errorf("%w: playlist engine not initialized", shared.ErrServiceUnavailable)
	}

	rr := recommend.Request{Mood: req.Mood, Genre: req.Genre}
	if err := rr.Validate(); err != nil {
		return nil, err
	}

	sendProgress(progress, recommendUpdate(rr.Mood, rr.Genre))
	songs, err := e.provider.Recommend(ctx, rr)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}
	if len(songs) == 0 {
		return nil, shared.ErrNoRecommendations
	}
	sendProgress(progress, recommendedUpdate(songs))

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = PlaylistName(rr.Mood, rr.Genre)
	}
	result := &GenerateResult{
		Name:        name,
		Description: PlaylistDescription(rr.Mood, rr.Genre),
		Songs:       songs,
	}

	created, err := e.assembler.CreatePlaylist(ctx, result.Name, result.Description, songs, progress)
	if err != nil {
		return nil, err
	}
	result.Playlist = created

	if e.history != nil {
		sendProgress(progress, saveHistoryUpdate())
		item := models.NewPlaylistHistoryItem(result.Name, rr.Mood, rr.Genre, songs, created, e.now())
		if err := e.history.Save(ctx, item); err != nil {
			e.logger.Error("failed to save playlist history", "playlist", created.PlaylistID, "error", err)
		} else {
			result.History = item
		}
	}

	return result, nil
}

// IsReauthRequired reports whether err means the user has to log in again.
func IsReauthRequired(err error) bool {
	return errors.Is(err, shared.ErrTokenExpired) || errors.Is(err, shared.ErrNotAuthenticated)
}
