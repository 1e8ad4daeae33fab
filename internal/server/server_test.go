package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/shared"
	"github.com/desertthunder/moodify/internal/tasks"
)

type fakeFlow struct {
	status      auth.Status
	beginErr    error
	completeErr error
	params      []auth.CallbackParams
	logouts     int
}

func (f *fakeFlow) BeginLogin(context.Context) (string, error) {
	if f.beginErr != nil {
		return "", f.beginErr
	}
	f.status = auth.AwaitingCallback
	return "https://accounts.example.com/authorize?state=abc", nil
}

func (f *fakeFlow) CompleteLogin(_ context.Context, p auth.CallbackParams) error {
	f.params = append(f.params, p)
	if f.completeErr == nil {
		f.status = auth.Authenticated
	}
	return f.completeErr
}

func (f *fakeFlow) Logout(context.Context) {
	f.logouts++
	f.status = auth.Unauthenticated
}

func (f *fakeFlow) Status(context.Context) auth.Status { return f.status }

type fakeEngine struct {
	result *tasks.GenerateResult
	err    error
	got    []tasks.GenerateRequest
}

func (f *fakeEngine) Generate(_ context.Context, req tasks.GenerateRequest, _ chan<- tasks.ProgressUpdate) (*tasks.GenerateResult, error) {
	f.got = append(f.got, req)
	return f.result, f.err
}

type fakeHistory struct {
	items []*models.PlaylistHistoryItem
}

func (f *fakeHistory) List(context.Context) ([]*models.PlaylistHistoryItem, error) {
	return f.items, nil
}

func (f *fakeHistory) Get(_ context.Context, id string) (*models.PlaylistHistoryItem, error) {
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrHistoryNotFound, id)
}

func (f *fakeHistory) RecentSongs(context.Context, int) ([]models.Song, error) {
	var songs []models.Song
	for _, item := range f.items {
		songs = append(songs, item.Songs...)
	}
	return songs, nil
}

type fakeGenres struct {
	history []models.Song
	mood    string
}

func (f *fakeGenres) SuggestGenres(_ context.Context, history []models.Song, mood string) ([]string, error) {
	f.history, f.mood = history, mood
	return []string{"soul", "funk", "jazz"}, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestServer(flow *fakeFlow, engine *fakeEngine, history *fakeHistory, genres *fakeGenres) *Server {
	opts := Options{Flow: flow, Engine: engine, Logger: quietLogger()}
	if history != nil {
		opts.History = history
	}
	if genres != nil {
		opts.Genres = genres
	}
	return New(opts)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestBasicRouter(t *testing.T) {
	t.Run("applies middleware in order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.HandleFunc(http.MethodGet, "/x", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})

		do(t, r, http.MethodGet, "/x", "")
		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order: %v", order)
		}
	})

	t.Run("rejects other methods", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc(http.MethodPost, "/x", func(w http.ResponseWriter, r *http.Request) {})

		if rec := do(t, r, http.MethodGet, "/x", ""); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestOAuthRoutes(t *testing.T) {
	t.Run("login redirects to provider", func(t *testing.T) {
		flow := &fakeFlow{}
		rec := do(t, newTestServer(flow, &fakeEngine{}, nil, nil), http.MethodGet, "/login", "")

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "https://accounts.example.com/authorize") {
			t.Errorf("unexpected location: %s", loc)
		}
	})

	t.Run("login failure", func(t *testing.T) {
		flow := &fakeFlow{beginErr: fmt.Errorf("kv down")}
		rec := do(t, newTestServer(flow, &fakeEngine{}, nil, nil), http.MethodGet, "/login", "")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("callback success", func(t *testing.T) {
		flow := &fakeFlow{}
		srv := newTestServer(flow, &fakeEngine{}, nil, nil)

		rec := do(t, srv, http.MethodGet, "/callback?code=abc&state=xyz", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `content="2;url=/"`) {
			t.Errorf("expected 2 second redirect, got %s", rec.Body.String())
		}
		if len(flow.params) != 1 || flow.params[0].Code != "abc" || flow.params[0].State != "xyz" {
			t.Errorf("unexpected callback params: %+v", flow.params)
		}

		result := <-srv.OAuth().Result()
		if result.Error() != nil {
			t.Errorf("expected success result, got %v", result.Error())
		}
	})

	t.Run("callback failure shows error", func(t *testing.T) {
		flow := &fakeFlow{completeErr: fmt.Errorf("%w: access_denied", shared.ErrAuthorizationDenied)}
		srv := newTestServer(flow, &fakeEngine{}, nil, nil)

		rec := do(t, srv, http.MethodGet, "/callback?error=access_denied", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `content="5;url=/"`) {
			t.Errorf("expected 5 second redirect, got %s", body)
		}
		if !strings.Contains(body, "access_denied") {
			t.Errorf("expected error inline, got %s", body)
		}

		result := <-srv.OAuth().Result()
		if result.Error() == nil {
			t.Error("expected failure result")
		}
	})

	t.Run("result is sent once", func(t *testing.T) {
		flow := &fakeFlow{}
		srv := newTestServer(flow, &fakeEngine{}, nil, nil)

		do(t, srv, http.MethodGet, "/callback?code=a", "")
		do(t, srv, http.MethodGet, "/callback?code=b", "")

		count := 0
		for range srv.OAuth().Result() {
			count++
		}
		if count != 1 {
			t.Errorf("expected 1 result, got %d", count)
		}
	})

	t.Run("logout", func(t *testing.T) {
		flow := &fakeFlow{status: auth.Authenticated}
		rec := do(t, newTestServer(flow, &fakeEngine{}, nil, nil), http.MethodPost, "/logout", "")

		if rec.Code != http.StatusOK || flow.logouts != 1 {
			t.Errorf("expected logout, got %d (%d calls)", rec.Code, flow.logouts)
		}
	})
}

func TestAPIRoutes(t *testing.T) {
	songs := []models.Song{{Title: "Happy", Artist: "Pharrell Williams"}}
	history := &fakeHistory{items: []*models.PlaylistHistoryItem{
		{ID: "h1", Name: "happy Playlist", Mood: "happy", Songs: songs, AddedCount: 1},
	}}

	t.Run("status", func(t *testing.T) {
		rec := do(t, newTestServer(&fakeFlow{status: auth.Authenticated}, &fakeEngine{}, nil, nil), http.MethodGet, "/api/status", "")
		body := decode(t, rec)
		if body["status"] != "authenticated" || body["connected"] != true {
			t.Errorf("unexpected status body: %v", body)
		}
	})

	t.Run("create playlist", func(t *testing.T) {
		engine := &fakeEngine{result: &tasks.GenerateResult{
			Name:  "happy Playlist",
			Songs: songs,
			Playlist: &models.PlaylistCreationResult{
				PlaylistID:    "pl-1",
				PlaylistURL:   "https://open.spotify.com/playlist/pl-1",
				AddedSongs:    songs,
				NotFoundSongs: []models.Song{{Title: "Nope", Artist: "Nobody"}},
			},
		}}

		rec := do(t, newTestServer(&fakeFlow{}, engine, nil, nil), http.MethodPost, "/api/playlists", `{"mood":" happy ","genre":"pop"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decode(t, rec)
		if body["summary"] != "1 of 2 songs added; 1 could not be found" {
			t.Errorf("unexpected summary: %v", body["summary"])
		}
		if len(engine.got) != 1 || engine.got[0].Mood != "happy" || engine.got[0].Genre != "pop" {
			t.Errorf("unexpected request: %+v", engine.got)
		}
	})

	t.Run("create playlist validation", func(t *testing.T) {
		engine := &fakeEngine{}
		rec := do(t, newTestServer(&fakeFlow{}, engine, nil, nil), http.MethodPost, "/api/playlists", `{"genre":"pop"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		fields, _ := decode(t, rec)["fields"].(map[string]any)
		if fields["mood"] == nil {
			t.Errorf("expected mood field error, got %v", fields)
		}
		if len(engine.got) != 0 {
			t.Error("engine should not be called")
		}
	})

	t.Run("create playlist bad JSON", func(t *testing.T) {
		rec := do(t, newTestServer(&fakeFlow{}, &fakeEngine{}, nil, nil), http.MethodPost, "/api/playlists", `{`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("expired session returns login url", func(t *testing.T) {
		engine := &fakeEngine{err: fmt.Errorf("failed to fetch profile: %w", shared.ErrTokenExpired)}
		rec := do(t, newTestServer(&fakeFlow{}, engine, nil, nil), http.MethodPost, "/api/playlists", `{"mood":"happy"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if body := decode(t, rec); body["login_url"] != "/login" {
			t.Errorf("expected login_url, got %v", body)
		}
	})

	t.Run("catalog failure", func(t *testing.T) {
		engine := &fakeEngine{err: fmt.Errorf("failed to create playlist: %w", shared.ErrCatalogAPI)}
		rec := do(t, newTestServer(&fakeFlow{}, engine, nil, nil), http.MethodPost, "/api/playlists", `{"mood":"happy"}`)
		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
	})

	t.Run("history", func(t *testing.T) {
		srv := newTestServer(&fakeFlow{}, &fakeEngine{}, history, nil)

		rec := do(t, srv, http.MethodGet, "/api/history", "")
		items, _ := decode(t, rec)["items"].([]any)
		if len(items) != 1 {
			t.Errorf("expected 1 item, got %v", items)
		}

		rec = do(t, srv, http.MethodGet, "/api/history/h1", "")
		if body := decode(t, rec); body["id"] != "h1" {
			t.Errorf("unexpected item: %v", body)
		}

		rec = do(t, srv, http.MethodGet, "/api/history/missing", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("genres", func(t *testing.T) {
		genres := &fakeGenres{}
		rec := do(t, newTestServer(&fakeFlow{}, &fakeEngine{}, history, genres), http.MethodGet, "/api/genres?mood=upbeat", "")

		body := decode(t, rec)
		if got, _ := body["genres"].([]any); len(got) != 3 {
			t.Errorf("unexpected genres: %v", body)
		}
		if genres.mood != "upbeat" || len(genres.history) != 1 {
			t.Errorf("unexpected suggester input: %q %v", genres.mood, genres.history)
		}
	})

	t.Run("genres not configured", func(t *testing.T) {
		rec := do(t, newTestServer(&fakeFlow{}, &fakeEngine{}, nil, nil), http.MethodGet, "/api/genres", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}

func TestServerRoutes(t *testing.T) {
	srv := newTestServer(&fakeFlow{status: auth.Authenticated}, &fakeEngine{}, &fakeHistory{}, nil)

	t.Run("healthz", func(t *testing.T) {
		if rec := do(t, srv, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		do(t, srv, http.MethodGet, "/api/status", "")
		rec := do(t, srv, http.MethodGet, "/metrics", "")
		if !strings.Contains(rec.Body.String(), "moodify_http_requests_total") {
			t.Error("expected request counter in metrics output")
		}
	})

	t.Run("index", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/", "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Spotify: authenticated") {
			t.Errorf("unexpected index page: %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		if rec := do(t, srv, http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}
