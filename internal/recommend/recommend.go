package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodify/internal/metrics"
	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/shared"
)

// MaxSongs is the number of songs a provider returns at most.
const MaxSongs = 10

// MaxGenres is the number of genre suggestions returned at most.
const MaxGenres = 5

// Request describes what to recommend for.
type Request struct {
	Mood  string `json:"mood" validate:"required,max=200"`
	Genre string `json:"genre,omitempty" validate:"max=100"`
}

// Validate trims the request and checks it against its tags.
func (r *Request) Validate() error {
	r.Mood = strings.TrimSpace(r.Mood)
	r.Genre = strings.TrimSpace(r.Genre)
	if err := shared.Validate(r); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

// Provider recommends songs for a mood.
type Provider interface {
	Name() string
	Recommend(ctx context.Context, req Request) ([]models.Song, error)
}

// GenreSuggester proposes genres from listening history and an optional mood.
type GenreSuggester interface {
	SuggestGenres(ctx context.Context, history []models.Song, mood string) ([]string, error)
}

// Fallback asks Primary first and Secondary when Primary fails or returns nothing.
type Fallback struct {
	Primary   Provider
	Secondary Provider
	Logger    *log.Logger
}

// NewFallback creates a [Fallback]. A nil primary makes it answer from secondary alone.
func NewFallback(primary, secondary Provider, logger *log.Logger) *Fallback {
	if logger == nil {
		logger = log.Default()
	}
	return &Fallback{Primary: primary, Secondary: secondary, Logger: logger}
}

func (f *Fallback) Name() string {
	if f.Primary == nil {
		return f.Secondary.Name()
	}
	return f.Primary.Name() + "+" + f.Secondary.Name()
}

// Recommend implements [Provider].
func (f *Fallback) Recommend(ctx context.Context, req Request) ([]models.Song, error) {
	if f.Primary != nil {
		songs, err := f.Primary.Recommend(ctx, req)
		if err == nil && len(songs) > 0 {
			metrics.RecommendationsTotal.WithLabelValues(f.Primary.Name(), "ok").Inc()
			return songs, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		metrics.RecommendationsTotal.WithLabelValues(f.Primary.Name(), "fallback").Inc()
		f.Logger.Warn("primary recommendation provider failed, using fallback",
			"provider", f.Primary.Name(), "fallback", f.Secondary.Name(), "error", err)
	}

	songs, err := f.Secondary.Recommend(ctx, req)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues(f.Secondary.Name(), "error").Inc()
		return nil, err
	}
	if len(songs) == 0 {
		return nil, shared.ErrNoRecommendations
	}
	metrics.RecommendationsTotal.WithLabelValues(f.Secondary.Name(), "ok").Inc()
	return songs, nil
}

// SuggestGenres implements [GenreSuggester] when either provider does.
func (f *Fallback) SuggestGenres(ctx context.Context, history []models.Song, mood string) ([]string, error) {
	if gs, ok := f.Primary.(GenreSuggester); ok {
		genres, err := gs.SuggestGenres(ctx, history, mood)
		if err == nil && len(genres) > 0 {
			return genres, nil
		}
		f.Logger.Warn("genre suggestion failed, using fallback", "error", err)
	}

	gs, ok := f.Secondary.(GenreSuggester)
	if !ok {
		return nil, fmt.Errorf("%w: no genre suggester configured", shared.ErrServiceUnavailable)
	}
	return gs.SuggestGenres(ctx, history, mood)
}
