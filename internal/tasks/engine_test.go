package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/recommend"
	"github.com/desertthunder/moodify/internal/services"
	"github.com/desertthunder/moodify/internal/shared"
	tu "github.com/desertthunder/moodify/internal/testing"
)

type stubProvider struct {
	songs []models.Song
	err   error
	got   recommend.Request
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Recommend(_ context.Context, req recommend.Request) ([]models.Song, error) {
	s.got = req
	return s.songs, s.err
}

type memoryHistory struct {
	items []*models.PlaylistHistoryItem
	err   error
}

func (m *memoryHistory) Save(_ context.Context, item *models.PlaylistHistoryItem) error {
	if m.err != nil {
		return m.err
	}
	item.ID = "history-1"
	m.items = append(m.items, item)
	return nil
}

func TestPlaylistName(t *testing.T) {
	if got := PlaylistName("happy", ""); got != "happy Playlist" {
		t.Errorf("unexpected name: %s", got)
	}
	if got := PlaylistName("happy", "pop"); got != "happy pop Playlist" {
		t.Errorf("unexpected name: %s", got)
	}
	if got := PlaylistDescription("happy", ""); got != `A playlist for the mood "happy".` {
		t.Errorf("unexpected description: %s", got)
	}
	if got := PlaylistDescription("happy", "pop"); got != `A playlist for the mood "happy" with pop music.` {
		t.Errorf("unexpected description: %s", got)
	}
}

func TestPlaylistEngine(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Generate", func(t *testing.T) {
		t.Run("creates playlist and records history", func(t *testing.T) {
			srv := tu.NewCatalogServer(t)
			client := newCatalogClient(t, srv)

			provider := &stubProvider{songs: []models.Song{
				{Title: "Happy", Artist: "Pharrell Williams"},
				{Title: "Levitating", Artist: "Dua Lipa"},
			}}
			for _, s := range provider.songs {
				srv.AddTrack(services.ExactQuery(s), "spotify:track:"+s.Title)
			}

			history := &memoryHistory{}
			assembler := NewAssembler(client, services.NewTrackResolver(client, services.ResolverOptions{Logger: quietLogger()}), quietLogger())
			engine := NewPlaylistEngine(provider, assembler,
				WithHistory(history), WithEngineClock(func() time.Time { return now }), WithEngineLogger(quietLogger()))

			result, err := engine.Generate(ctx, GenerateRequest{Mood: " happy ", Genre: "pop"}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if provider.got.Mood != "happy" || provider.got.Genre != "pop" {
				t.Errorf("expected trimmed request, got %+v", provider.got)
			}
			if result.Name != "happy pop Playlist" {
				t.Errorf("unexpected name: %s", result.Name)
			}
			if result.Summary() != "2 of 2 songs added" {
				t.Errorf("unexpected summary: %s", result.Summary())
			}

			if len(history.items) != 1 {
				t.Fatalf("expected 1 history item, got %d", len(history.items))
			}
			item := history.items[0]
			if item.Mood != "happy" || item.Genre != "pop" || item.AddedCount != 2 || !item.CreatedAt.Equal(now) {
				t.Errorf("unexpected history item: %+v", item)
			}
			if item.SpotifyURL != result.Playlist.PlaylistURL {
				t.Errorf("expected history URL %s, got %s", result.Playlist.PlaylistURL, item.SpotifyURL)
			}
			if result.History == nil || result.History.ID != "history-1" {
				t.Errorf("expected saved history on result, got %+v", result.History)
			}
		})

		t.Run("custom name", func(t *testing.T) {
			catalog := &fakeCatalog{}
			provider := &stubProvider{songs: []models.Song{{Title: "Hurt", Artist: "Johnny Cash"}}}
			engine := NewPlaylistEngine(provider, NewAssembler(catalog, &fakeResolver{}, quietLogger()), WithEngineLogger(quietLogger()))

			result, err := engine.Generate(ctx, GenerateRequest{Mood: "sad", Name: "Rainy Day"}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Name != "Rainy Day" || catalog.created[0] != "Rainy Day" {
				t.Errorf("expected custom name, got %s", result.Name)
			}
		})

		t.Run("history failure does not fail request", func(t *testing.T) {
			provider := &stubProvider{songs: []models.Song{{Title: "Hurt", Artist: "Johnny Cash"}}}
			history := &memoryHistory{err: errors.New("disk full")}
			engine := NewPlaylistEngine(provider, NewAssembler(&fakeCatalog{}, &fakeResolver{}, quietLogger()),
				WithHistory(history), WithEngineLogger(quietLogger()))

			result, err := engine.Generate(ctx, GenerateRequest{Mood: "sad"}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.History != nil {
				t.Errorf("expected no history on result, got %+v", result.History)
			}
		})

		t.Run("invalid request", func(t *testing.T) {
			provider := &stubProvider{}
			engine := NewPlaylistEngine(provider, NewAssembler(&fakeCatalog{}, &fakeResolver{}, quietLogger()))

			_, err := engine.Generate(ctx, GenerateRequest{Mood: "  "}, nil)
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("recommendation failure", func(t *testing.T) {
			catalog := &fakeCatalog{}
			provider := &stubProvider{err: shared.ErrServiceUnavailable}
			engine := NewPlaylistEngine(provider, NewAssembler(catalog, &fakeResolver{}, quietLogger()))

			_, err := engine.Generate(ctx, GenerateRequest{Mood: "sad"}, nil)
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
			if len(catalog.created) != 0 {
				t.Error("expected no playlist")
			}
		})

		t.Run("empty recommendations", func(t *testing.T) {
			engine := NewPlaylistEngine(&stubProvider{}, NewAssembler(&fakeCatalog{}, &fakeResolver{}, quietLogger()))

			_, err := engine.Generate(ctx, GenerateRequest{Mood: "sad"}, nil)
			if !errors.Is(err, shared.ErrNoRecommendations) {
				t.Errorf("expected ErrNoRecommendations, got %v", err)
			}
		})

		t.Run("expired session requires login", func(t *testing.T) {
			provider := &stubProvider{songs: []models.Song{{Title: "Hurt", Artist: "Johnny Cash"}}}
			catalog := &fakeCatalog{userErr: shared.ErrTokenExpired}
			engine := NewPlaylistEngine(provider, NewAssembler(catalog, &fakeResolver{}, quietLogger()))

			_, err := engine.Generate(ctx, GenerateRequest{Mood: "sad"}, nil)
			if !IsReauthRequired(err) {
				t.Errorf("expected re-authentication error, got %v", err)
			}
		})
	})
}
