// package services defines the catalog API surface used by the playlist pipeline
package services

import (
	"context"

	"github.com/desertthunder/moodify/internal/store"
)

// MaxTracksPerRequest is the catalog's per-request item limit for playlist insertion.
const MaxTracksPerRequest = 100

// Catalog is the subset of the catalog API used to assemble playlists.
type Catalog interface {
	// CurrentUser returns the profile of the authenticated user.
	CurrentUser(ctx context.Context) (*SpotifyUser, error)

	// SearchTracks runs a track search and returns at most limit results.
	SearchTracks(ctx context.Context, query string, limit int) ([]SpotifyTrack, error)

	// CreatePlaylist creates an empty playlist owned by userID.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*SpotifyPlaylist, error)

	// AddTracks appends up to [MaxTracksPerRequest] track URIs to a playlist.
	AddTracks(ctx context.Context, playlistID string, uris []string) error
}

// TokenReader exposes the stored token record. Satisfied by [store.TokenStore].
type TokenReader interface {
	Read(ctx context.Context) (store.TokenRecord, bool)
	IsValid(ctx context.Context) bool
}

// Reauthenticator starts a fresh login. Satisfied by [auth.Flow].
type Reauthenticator interface {
	BeginLogin(ctx context.Context) (string, error)
}
