package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/services"
	"github.com/desertthunder/moodify/internal/shared"
	"github.com/desertthunder/moodify/internal/store"
	tu "github.com/desertthunder/moodify/internal/testing"
)

// fakeCatalog records playlist calls. Searches are answered by fakeResolver instead.
type fakeCatalog struct {
	userErr    error
	createErr  error
	addErr     error
	created    []string
	insertions [][]string
}

func (f *fakeCatalog) CurrentUser(context.Context) (*services.SpotifyUser, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return &services.SpotifyUser{ID: "user-1"}, nil
}

func (f *fakeCatalog) SearchTracks(context.Context, string, int) ([]services.SpotifyTrack, error) {
	return nil, nil
}

func (f *fakeCatalog) CreatePlaylist(_ context.Context, _ string, name, _ string, _ bool) (*services.SpotifyPlaylist, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, name)
	return &services.SpotifyPlaylist{
		ID:           "pl-1",
		Name:         name,
		ExternalURLs: services.ExternalURLs{Spotify: "https://open.spotify.com/playlist/pl-1"},
	}, nil
}

func (f *fakeCatalog) AddTracks(_ context.Context, _ string, uris []string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.insertions = append(f.insertions, append([]string(nil), uris...))
	return nil
}

// fakeResolver resolves every song except those listed in missing or failing.
type fakeResolver struct {
	missing map[models.Song]bool
	failing map[models.Song]bool
	calls   []models.Song
}

func (f *fakeResolver) ResolveWithPass(_ context.Context, song models.Song) (models.ResolvedTrack, services.Pass, error) {
	f.calls = append(f.calls, song)
	track := models.ResolvedTrack{Song: song}
	if f.failing[song] {
		return track, services.PassNone, shared.ErrCatalogAPI
	}
	if f.missing[song] {
		return track, services.PassNone, nil
	}
	track.CatalogURI = "spotify:track:" + song.Title
	return track, services.PassExact, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func makeSongs(n int) []models.Song {
	songs := make([]models.Song, n)
	for i := range songs {
		songs[i] = models.Song{Title: fmt.Sprintf("Song %03d", i), Artist: "Artist"}
	}
	return songs
}

func newCatalogClient(t *testing.T, srv *tu.CatalogServer) *services.SpotifyClient {
	t.Helper()

	tokens := store.NewTokenStore(store.NewMemoryKV())
	if err := tokens.Write(context.Background(), "access-token", "refresh-token", 3600); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}
	return services.NewSpotifyClient(tokens, nil, services.ClientOptions{
		BaseURL: srv.BaseURL(),
		Timeout: 5 * time.Second,
		Logger:  quietLogger(),
	})
}

func TestAssembler(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatePlaylist", func(t *testing.T) {
		t.Run("partitions input exactly", func(t *testing.T) {
			songs := makeSongs(7)
			resolver := &fakeResolver{
				missing: map[models.Song]bool{songs[1]: true, songs[4]: true},
				failing: map[models.Song]bool{songs[5]: true},
			}
			a := NewAssembler(&fakeCatalog{}, resolver, quietLogger())

			result, err := a.CreatePlaylist(ctx, "name", "desc", songs, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			wantAdded := []models.Song{songs[0], songs[2], songs[3], songs[6]}
			wantMissing := []models.Song{songs[1], songs[4], songs[5]}
			if !reflect.DeepEqual(result.AddedSongs, wantAdded) {
				t.Errorf("added = %v, want %v", result.AddedSongs, wantAdded)
			}
			if !reflect.DeepEqual(result.NotFoundSongs, wantMissing) {
				t.Errorf("not found = %v, want %v", result.NotFoundSongs, wantMissing)
			}
			if result.Total() != len(songs) {
				t.Errorf("expected total %d, got %d", len(songs), result.Total())
			}
			if !reflect.DeepEqual(resolver.calls, songs) {
				t.Errorf("expected songs resolved in input order, got %v", resolver.calls)
			}
		})

		t.Run("inserts in chunks of 100", func(t *testing.T) {
			catalog := &fakeCatalog{}
			a := NewAssembler(catalog, &fakeResolver{}, quietLogger())

			result, err := a.CreatePlaylist(ctx, "name", "desc", makeSongs(250), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.AddedSongs) != 250 {
				t.Errorf("expected 250 added songs, got %d", len(result.AddedSongs))
			}

			var sizes []int
			for _, batch := range catalog.insertions {
				sizes = append(sizes, len(batch))
			}
			if !reflect.DeepEqual(sizes, []int{100, 100, 50}) {
				t.Errorf("expected batches of [100 100 50], got %v", sizes)
			}
			if catalog.insertions[1][0] != "spotify:track:Song 100" {
				t.Errorf("expected batches in order, second starts with %s", catalog.insertions[1][0])
			}
		})

		t.Run("no insertion when nothing resolves", func(t *testing.T) {
			songs := makeSongs(2)
			catalog := &fakeCatalog{}
			resolver := &fakeResolver{missing: map[models.Song]bool{songs[0]: true, songs[1]: true}}

			result, err := NewAssembler(catalog, resolver, quietLogger()).CreatePlaylist(ctx, "n", "d", songs, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(catalog.insertions) != 0 {
				t.Errorf("expected no insertion calls, got %d", len(catalog.insertions))
			}
			if len(result.AddedSongs) != 0 || len(result.NotFoundSongs) != 2 {
				t.Errorf("unexpected partition: %+v", result)
			}
		})

		t.Run("profile failure aborts", func(t *testing.T) {
			catalog := &fakeCatalog{userErr: shared.ErrCatalogAPI}
			resolver := &fakeResolver{}

			_, err := NewAssembler(catalog, resolver, quietLogger()).CreatePlaylist(ctx, "n", "d", makeSongs(3), nil)
			if !errors.Is(err, shared.ErrCatalogAPI) {
				t.Errorf("expected ErrCatalogAPI, got %v", err)
			}
			if len(catalog.created) != 0 || len(resolver.calls) != 0 {
				t.Error("expected nothing created or resolved")
			}
		})

		t.Run("create failure aborts", func(t *testing.T) {
			resolver := &fakeResolver{}
			catalog := &fakeCatalog{createErr: shared.ErrTokenExpired}

			_, err := NewAssembler(catalog, resolver, quietLogger()).CreatePlaylist(ctx, "n", "d", makeSongs(3), nil)
			if !errors.Is(err, shared.ErrTokenExpired) {
				t.Errorf("expected ErrTokenExpired, got %v", err)
			}
			if len(resolver.calls) != 0 {
				t.Errorf("expected no resolution, got %d", len(resolver.calls))
			}
		})

		t.Run("insertion failure aborts", func(t *testing.T) {
			catalog := &fakeCatalog{addErr: shared.ErrCatalogAPI}

			result, err := NewAssembler(catalog, &fakeResolver{}, quietLogger()).CreatePlaylist(ctx, "n", "d", makeSongs(3), nil)
			if !errors.Is(err, shared.ErrCatalogAPI) {
				t.Errorf("expected ErrCatalogAPI, got %v", err)
			}
			if result != nil {
				t.Errorf("expected no result, got %+v", result)
			}
		})

		t.Run("reports progress", func(t *testing.T) {
			progress := make(chan ProgressUpdate, 32)
			_, err := NewAssembler(&fakeCatalog{}, &fakeResolver{}, quietLogger()).CreatePlaylist(ctx, "n", "d", makeSongs(2), progress)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			close(progress)

			var phases []Phase
			for u := range progress {
				phases = append(phases, u.Phase)
			}
			want := []Phase{FetchProfile, CreatePlaylist, CreatePlaylist, ResolveTracks, ResolveTracks, AddTracks}
			if !reflect.DeepEqual(phases, want) {
				t.Errorf("phases = %v, want %v", phases, want)
			}
		})

		t.Run("full progress channel never blocks", func(t *testing.T) {
			progress := make(chan ProgressUpdate)
			_, err := NewAssembler(&fakeCatalog{}, &fakeResolver{}, quietLogger()).CreatePlaylist(ctx, "n", "d", makeSongs(2), progress)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	})

	t.Run("Against catalog API", func(t *testing.T) {
		t.Run("all songs resolvable", func(t *testing.T) {
			srv := tu.NewCatalogServer(t)
			client := newCatalogClient(t, srv)

			songs := makeSongs(10)
			for _, s := range songs {
				srv.AddTrack(services.ExactQuery(s), "spotify:track:"+s.Title)
			}

			a := NewAssembler(client, services.NewTrackResolver(client, services.ResolverOptions{Logger: quietLogger()}), quietLogger())
			result, err := a.CreatePlaylist(ctx, "happy Playlist", "desc", songs, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(result.AddedSongs) != 10 || len(result.NotFoundSongs) != 0 {
				t.Errorf("expected 10 added and 0 not found, got %d and %d", len(result.AddedSongs), len(result.NotFoundSongs))
			}
			if result.PlaylistURL != "https://open.spotify.com/playlist/"+srv.PlaylistID {
				t.Errorf("unexpected playlist URL: %s", result.PlaylistURL)
			}
			if result.PlaylistID != srv.PlaylistID {
				t.Errorf("unexpected playlist ID: %s", result.PlaylistID)
			}

			created := srv.Created()
			if len(created) != 1 || created[0]["public"] != true || created[0]["name"] != "happy Playlist" {
				t.Errorf("unexpected creation request: %v", created)
			}
		})

		t.Run("partial match", func(t *testing.T) {
			srv := tu.NewCatalogServer(t)
			client := newCatalogClient(t, srv)

			songs := []models.Song{
				{Title: "Happy", Artist: "Pharrell Williams"},
				{Title: "Imaginary Song", Artist: "Nobody"},
				{Title: "Juice", Artist: "Lizzo"},
			}
			srv.AddTrack(services.ExactQuery(songs[0]), "spotify:track:happy")
			srv.AddTrack(services.BroadQuery(songs[2]), "spotify:track:juice")

			a := NewAssembler(client, services.NewTrackResolver(client, services.ResolverOptions{Logger: quietLogger()}), quietLogger())
			result, err := a.CreatePlaylist(ctx, "n", "d", songs, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !reflect.DeepEqual(result.AddedSongs, []models.Song{songs[0], songs[2]}) {
				t.Errorf("unexpected added songs: %v", result.AddedSongs)
			}
			if !reflect.DeepEqual(result.NotFoundSongs, []models.Song{songs[1]}) {
				t.Errorf("unexpected not found songs: %v", result.NotFoundSongs)
			}

			insertions := srv.Insertions()
			want := [][]string{{"spotify:track:happy", "spotify:track:juice"}}
			if !reflect.DeepEqual(insertions, want) {
				t.Errorf("insertions = %v, want %v", insertions, want)
			}
			if got := result.Summary(); got != "2 of 3 songs added; 1 could not be found" {
				t.Errorf("unexpected summary: %s", got)
			}
		})

		t.Run("search errors count as not found", func(t *testing.T) {
			srv := tu.NewCatalogServer(t)
			srv.FailOn(tu.RouteSearch, http.StatusInternalServerError)
			client := newCatalogClient(t, srv)

			a := NewAssembler(client, services.NewTrackResolver(client, services.ResolverOptions{Logger: quietLogger()}), quietLogger())
			result, err := a.CreatePlaylist(ctx, "n", "d", makeSongs(2), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.NotFoundSongs) != 2 {
				t.Errorf("expected 2 not found, got %d", len(result.NotFoundSongs))
			}
			if len(srv.Insertions()) != 0 {
				t.Error("expected no insertions")
			}
		})
	})
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
		want []int
	}{
		{name: "empty", n: 0, size: 100, want: nil},
		{name: "exact", n: 200, size: 100, want: []int{100, 100}},
		{name: "remainder", n: 250, size: 100, want: []int{100, 100, 50}},
		{name: "small", n: 3, size: 100, want: []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.n)
			var got []int
			for _, c := range Chunk(items, tt.size) {
				got = append(got, len(c))
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Chunk(%d, %d) sizes = %v, want %v", tt.n, tt.size, got, tt.want)
			}
		})
	}
}
