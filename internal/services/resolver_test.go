package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/moodify/internal/models"
	tu "github.com/desertthunder/moodify/internal/testing"
)

// fakeSearcher answers searches from a query → URI map and records every query.
type fakeSearcher struct {
	results map[string]string
	errs    map[string]error
	queries []string
}

func (f *fakeSearcher) SearchTracks(_ context.Context, query string, limit int) ([]SpotifyTrack, error) {
	f.queries = append(f.queries, query)
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	if uri, ok := f.results[query]; ok {
		return []SpotifyTrack{{URI: uri}}, nil
	}
	return nil, nil
}

func TestTrackResolver(t *testing.T) {
	ctx := context.Background()
	song := models.Song{Title: "Yellow", Artist: "Coldplay"}

	t.Run("Exact pass match skips broad pass", func(t *testing.T) {
		f := &fakeSearcher{results: map[string]string{"track:Yellow artist:Coldplay": "spotify:track:exact"}}
		r := NewTrackResolver(f, ResolverOptions{})

		track, pass, err := r.ResolveWithPass(ctx, song)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if track.CatalogURI != "spotify:track:exact" || pass != PassExact {
			t.Errorf("expected exact match, got %s (%s)", track.CatalogURI, pass)
		}
		if track.Song != song {
			t.Errorf("expected track to carry the song, got %+v", track.Song)
		}
		if len(f.queries) != 1 {
			t.Errorf("expected 1 query, got %v", f.queries)
		}
	})

	t.Run("Falls back to broad pass", func(t *testing.T) {
		f := &fakeSearcher{results: map[string]string{"Yellow Coldplay": "spotify:track:broad"}}
		r := NewTrackResolver(f, ResolverOptions{})

		track, ok, err := r.Resolve(ctx, song)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok || track.CatalogURI != "spotify:track:broad" {
			t.Errorf("expected broad match, got %s (%v)", track.CatalogURI, ok)
		}

		want := []string{"track:Yellow artist:Coldplay", "Yellow Coldplay"}
		if len(f.queries) != 2 || f.queries[0] != want[0] || f.queries[1] != want[1] {
			t.Errorf("expected queries %v, got %v", want, f.queries)
		}
	})

	t.Run("Absent when both passes miss", func(t *testing.T) {
		f := &fakeSearcher{}
		r := NewTrackResolver(f, ResolverOptions{})

		track, ok, err := r.Resolve(ctx, song)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok || track.CatalogURI != "" {
			t.Errorf("expected absent, got %s", track.CatalogURI)
		}
		if len(f.queries) != 2 {
			t.Errorf("expected exactly 2 queries, got %v", f.queries)
		}
	})

	t.Run("Search error is returned", func(t *testing.T) {
		boom := errors.New("boom")
		f := &fakeSearcher{errs: map[string]error{"track:Yellow artist:Coldplay": boom}}
		r := NewTrackResolver(f, ResolverOptions{})

		_, ok, err := r.Resolve(ctx, song)
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if ok {
			t.Error("expected not ok on error")
		}
	})

	t.Run("Cache reuses resolutions but not misses", func(t *testing.T) {
		f := &fakeSearcher{results: map[string]string{"track:Yellow artist:Coldplay": "spotify:track:exact"}}
		r := NewTrackResolver(f, ResolverOptions{CacheSize: 8, CacheTTL: time.Hour})

		for range 3 {
			if _, ok, _ := r.Resolve(ctx, song); !ok {
				t.Fatal("expected match")
			}
		}
		if len(f.queries) != 1 {
			t.Errorf("expected a single search with cache, got %v", f.queries)
		}

		missing := models.Song{Title: "Nope", Artist: "Nobody"}
		r.Resolve(ctx, missing)
		r.Resolve(ctx, missing)
		if len(f.queries) != 5 {
			t.Errorf("expected misses to be searched every time, got %v", f.queries)
		}

		cached, pass, _ := r.ResolveWithPass(ctx, song)
		if pass != PassCached || cached.CatalogURI != "spotify:track:exact" {
			t.Errorf("expected cached exact uri, got %s (%s)", cached.CatalogURI, pass)
		}
	})

	t.Run("Against catalog server", func(t *testing.T) {
		srv := tu.NewCatalogServer(t)
		srv.AddTrack("Yellow Coldplay", "spotify:track:broad")
		clock := tu.NewClock(time.Now())
		client := NewSpotifyClient(newTokenStore(t, clock, 3600), nil, ClientOptions{BaseURL: srv.BaseURL()})

		track, ok, err := NewTrackResolver(client, ResolverOptions{}).Resolve(ctx, song)
		if err != nil || !ok || track.CatalogURI != "spotify:track:broad" {
			t.Errorf("expected broad match, got %s %v %v", track.CatalogURI, ok, err)
		}

		queries := srv.Queries()
		if len(queries) != 2 || queries[0] != "track:Yellow artist:Coldplay" {
			t.Errorf("expected exact then broad queries, got %v", queries)
		}
	})
}
