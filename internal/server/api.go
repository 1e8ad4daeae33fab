package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/recommend"
	"github.com/desertthunder/moodify/internal/shared"
	"github.com/desertthunder/moodify/internal/tasks"
)

// historySongsForGenres bounds how many past songs are sent for genre suggestions.
const historySongsForGenres = 20

// Generator runs the mood → playlist pipeline. Satisfied by [tasks.PlaylistEngine].
type Generator interface {
	Generate(ctx context.Context, req tasks.GenerateRequest, progress chan<- tasks.ProgressUpdate) (*tasks.GenerateResult, error)
}

// HistoryReader reads playlist history. Satisfied by repositories.HistoryRepository.
type HistoryReader interface {
	List(ctx context.Context) ([]*models.PlaylistHistoryItem, error)
	Get(ctx context.Context, id string) (*models.PlaylistHistoryItem, error)
	RecentSongs(ctx context.Context, limit int) ([]models.Song, error)
}

// PlaylistRequest is the body of POST /api/playlists.
type PlaylistRequest struct {
	Mood  string `json:"mood" validate:"required,max=200"`
	Genre string `json:"genre" validate:"max=100"`
	Name  string `json:"name" validate:"max=100"`
}

// PlaylistResponse is the body returned for a created playlist.
type PlaylistResponse struct {
	*tasks.GenerateResult
	Summary string `json:"summary"`
}

// APIHandler serves the JSON API.
type APIHandler struct {
	flow    Authenticator
	engine  Generator
	history HistoryReader
	genres  recommend.GenreSuggester
	logger  *log.Logger
}

// NewAPIHandler creates an [APIHandler]. history and genres may be nil, which disables their routes.
func NewAPIHandler(flow Authenticator, engine Generator, history HistoryReader, genres recommend.GenreSuggester, logger *log.Logger) *APIHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &APIHandler{flow: flow, engine: engine, history: history, genres: genres, logger: logger}
}

// Register adds the API routes to r.
func (h *APIHandler) Register(r *BasicRouter) {
	r.HandleFunc(http.MethodGet, "/api/status", h.status)
	r.HandleFunc(http.MethodPost, "/api/playlists", h.createPlaylist)
	r.HandleFunc(http.MethodGet, "/api/history", h.listHistory)
	r.HandleFunc(http.MethodGet, "/api/history/{id}", h.getHistory)
	r.HandleFunc(http.MethodGet, "/api/genres", h.suggestGenres)
}

func (h *APIHandler) status(w http.ResponseWriter, r *http.Request) {
	status := h.flow.Status(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status.String(),
		"connected": status == auth.Authenticated,
	})
}

func (h *APIHandler) createPlaylist(w http.ResponseWriter, r *http.Request) {
	var req PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Mood = strings.TrimSpace(req.Mood)
	req.Genre = strings.TrimSpace(req.Genre)
	req.Name = strings.TrimSpace(req.Name)

	if err := shared.Validate(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  shared.ErrInvalidInput.Error(),
			"fields": shared.FormatValidationError(err),
		})
		return
	}

	result, err := h.engine.Generate(r.Context(), tasks.GenerateRequest{Mood: req.Mood, Genre: req.Genre, Name: req.Name}, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, PlaylistResponse{GenerateResult: result, Summary: result.Summary()})
}

func (h *APIHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is not configured")
		return
	}

	items, err := h.history.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *APIHandler) getHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is not configured")
		return
	}

	item, err := h.history.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *APIHandler) suggestGenres(w http.ResponseWriter, r *http.Request) {
	if h.genres == nil {
		writeError(w, http.StatusServiceUnavailable, "genre suggestions are not configured")
		return
	}

	var history []models.Song
	if h.history != nil {
		songs, err := h.history.RecentSongs(r.Context(), historySongsForGenres)
		if err != nil {
			requestLogger(r, h.logger).Warn("failed to load listening history", "error", err)
		}
		history = songs
	}

	genres, err := h.genres.SuggestGenres(r.Context(), history, strings.TrimSpace(r.URL.Query().Get("mood")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"genres": genres})
}

// fail maps err onto a status code and JSON error body.
//
// Expired or missing sessions carry a login_url so the client can start a new login.
func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		requestLogger(r, h.logger).Error("request failed", "error", err)
	}

	body := map[string]any{"error": err.Error()}
	if status == http.StatusUnauthorized {
		body["login_url"] = "/login"
	}
	writeJSON(w, status, body)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	case tasks.IsReauthRequired(err):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrHistoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrCatalogAPI):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrNoRecommendations), errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
