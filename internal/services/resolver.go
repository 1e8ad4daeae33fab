package services

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/desertthunder/moodify/internal/metrics"
	"github.com/desertthunder/moodify/internal/models"
)

// Pass identifies which search matched a song.
type Pass string

const (
	PassNone   Pass = ""
	PassExact  Pass = "exact"
	PassBroad  Pass = "broad"
	PassCached Pass = "cached"
)

// Searcher runs catalog track searches. Satisfied by [SpotifyClient].
type Searcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]SpotifyTrack, error)
}

// ResolverOptions configures a [TrackResolver].
type ResolverOptions struct {
	// CacheSize is the number of resolved songs kept in memory. Zero disables caching.
	CacheSize int
	// CacheTTL bounds how long a resolution is reused. Zero keeps entries until evicted.
	CacheTTL time.Duration
	Logger   *log.Logger
}

// TrackResolver maps songs to catalog URIs.
type TrackResolver struct {
	catalog Searcher
	cache   *expirable.LRU[models.Song, string]
	logger  *log.Logger
}

// NewTrackResolver creates a resolver issuing searches through catalog.
func NewTrackResolver(catalog Searcher, opts ResolverOptions) *TrackResolver {
	r := &TrackResolver{catalog: catalog, logger: opts.Logger}
	if r.logger == nil {
		r.logger = log.Default()
	}
	if opts.CacheSize > 0 {
		r.cache = expirable.NewLRU[models.Song, string](opts.CacheSize, nil, opts.CacheTTL)
	}
	return r
}

// ExactQuery returns the field-scoped search query for song.
func ExactQuery(song models.Song) string {
	return fmt.Sprintf("track:%s artist:%s", song.Title, song.Artist)
}

// BroadQuery returns the free-text search query for song.
func BroadQuery(song models.Song) string {
	return song.Title + " " + song.Artist
}

// Resolve returns the song paired with the URI of the first matching track, or ok=false when
// neither search finds one.
//
// A search error is returned as-is; callers fold it into the not-found set.
func (r *TrackResolver) Resolve(ctx context.Context, song models.Song) (track models.ResolvedTrack, ok bool, err error) {
	track, pass, err := r.ResolveWithPass(ctx, song)
	return track, pass != PassNone, err
}

// ResolveWithPass is [TrackResolver.Resolve] that also reports which search matched.
func (r *TrackResolver) ResolveWithPass(ctx context.Context, song models.Song) (models.ResolvedTrack, Pass, error) {
	track := models.ResolvedTrack{Song: song}
	if r.cache != nil {
		if uri, ok := r.cache.Get(song); ok {
			metrics.TrackResolutionsTotal.WithLabelValues(metrics.OutcomeCached).Inc()
			track.CatalogURI = uri
			return track, PassCached, nil
		}
	}

	for _, attempt := range []struct {
		pass  Pass
		query string
	}{
		{PassExact, ExactQuery(song)},
		{PassBroad, BroadQuery(song)},
	} {
		tracks, err := r.catalog.SearchTracks(ctx, attempt.query, 1)
		if err != nil {
			metrics.TrackResolutionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return track, PassNone, fmt.Errorf("search %q: %w", attempt.query, err)
		}
		if len(tracks) == 0 || tracks[0].URI == "" {
			continue
		}

		track.CatalogURI = tracks[0].URI
		if r.cache != nil {
			r.cache.Add(song, track.CatalogURI)
		}
		metrics.TrackResolutionsTotal.WithLabelValues(string(attempt.pass)).Inc()
		r.logger.Debug("resolved song", "title", song.Title, "artist", song.Artist, "pass", attempt.pass, "uri", track.CatalogURI)
		return track, attempt.pass, nil
	}

	metrics.TrackResolutionsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
	return track, PassNone, nil
}
