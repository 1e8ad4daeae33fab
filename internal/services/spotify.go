// Spotify Web API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/moodify/internal/metrics"
	"github.com/desertthunder/moodify/internal/shared"
)

const (
	spotifyBaseURL     = "https://api.spotify.com/v1"
	spotifyPlaylistURL = "https://open.spotify.com/playlist/"

	maxErrorBody = 64 << 10
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ExternalURLs holds the shareable links of a resource.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Owner is the owning user of a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Owner        Owner        `json:"owner"`
	Public       bool         `json:"public"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	URI          string       `json:"uri"`
}

// ShareURL returns the playlist's public link, derived from its ID when the response carried none.
func (p *SpotifyPlaylist) ShareURL() string {
	if p.ExternalURLs.Spotify != "" {
		return p.ExternalURLs.Spotify
	}
	return spotifyPlaylistURL + p.ID
}

type searchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type addTracksRequest struct {
	URIs []string `json:"uris"`
}

// APIError is a non-2xx catalog response other than 401.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", shared.ErrCatalogAPI, e.StatusCode, strings.TrimSpace(e.Body))
}

func (e *APIError) Unwrap() error { return shared.ErrCatalogAPI }

// ClientOptions configures a [SpotifyClient].
type ClientOptions struct {
	// BaseURL defaults to https://api.spotify.com/v1.
	BaseURL string
	// HTTPClient overrides the transport; Timeout is ignored when set.
	HTTPClient *http.Client
	// Timeout bounds each request. Defaults to 15 seconds.
	Timeout time.Duration
	// RateLimit is the sustained requests per second. Zero disables pacing.
	RateLimit float64
	Logger    *log.Logger
}

// SpotifyClient implements [Catalog] against the Spotify Web API.
type SpotifyClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenReader
	reauth     Reauthenticator
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewSpotifyClient creates a client reading credentials from tokens. reauth may be nil.
func NewSpotifyClient(tokens TokenReader, reauth Reauthenticator, opts ClientOptions) *SpotifyClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &SpotifyClient{
		baseURL:    baseURL,
		httpClient: client,
		tokens:     tokens,
		reauth:     reauth,
		limiter:    limiter,
		logger:     logger,
	}
}

// Request performs an authenticated call against path (relative to the base URL, query included).
//
// body, when non-nil, is sent as JSON; result, when non-nil, receives the decoded JSON response.
func (c *SpotifyClient) Request(ctx context.Context, method, path string, body, result any) error {
	if !c.tokens.IsValid(ctx) {
		return shared.ErrNotAuthenticated
	}
	rec, ok := c.tokens.Read(ctx)
	if !ok {
		return shared.ErrNotAuthenticated
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+rec.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.CatalogRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.CatalogRequestsTotal.WithLabelValues(method, metrics.StatusClass(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("catalog rejected access token, starting a new login", "path", path)
		if c.reauth != nil {
			if _, err := c.reauth.BeginLogin(ctx); err != nil {
				c.logger.Error("failed to start login", "error", err)
			}
		}
		return shared.ErrTokenExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// CurrentUser retrieves the current authenticated user's profile.
func (c *SpotifyClient) CurrentUser(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := c.Request(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchTracks searches the catalog for tracks matching query.
func (c *SpotifyClient) SearchTracks(ctx context.Context, query string, limit int) ([]SpotifyTrack, error) {
	if limit <= 0 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))

	var response searchResponse
	if err := c.Request(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}
	return response.Tracks.Items, nil
}

// CreatePlaylist creates an empty playlist for userID.
func (c *SpotifyClient) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*SpotifyPlaylist, error) {
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	body := createPlaylistRequest{Name: name, Description: description, Public: public}

	var playlist SpotifyPlaylist
	if err := c.Request(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// AddTracks appends uris to the playlist in a single request.
func (c *SpotifyClient) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	if len(uris) > MaxTracksPerRequest {
		return fmt.Errorf("%w: %d (max %d)", shared.ErrTooManyTracks, len(uris), MaxTracksPerRequest)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	var snapshot struct {
		SnapshotID string `json:"snapshot_id"`
	}
	return c.Request(ctx, http.MethodPost, endpoint, addTracksRequest{URIs: uris}, &snapshot)
}
