// Package services talks to the Spotify Web API on behalf of the playlist pipeline.
//
// # Catalog Client
//
// [SpotifyClient] is an authenticated request wrapper. Every call requires a valid stored token
// and fails fast with [shared.ErrNotAuthenticated] otherwise, without touching the network.
// The stored access token is attached as a bearer credential.
//
// A 401 response starts a fresh login through the configured [Reauthenticator] and fails with
// [shared.ErrTokenExpired]. The refresh grant is not attempted on this path. Any other non-2xx
// response fails with an [*APIError] carrying the status and body, and is never retried.
//
// Requests are paced with a token bucket ([golang.org/x/time/rate]) and bounded by a per-request timeout.
//
// # Track Resolution
//
// [TrackResolver] maps a recommended (title, artist) pair to a track URI with two searches:
//
//  1. exact: `track:<title> artist:<artist>`, limit 1
//  2. broad: `<title> <artist>`, limit 1, only when the exact search returned nothing
//
// There is no fuzzy matching beyond that. Successful resolutions may be cached in an expirable LRU.
//
// See https://developer.spotify.com/documentation/web-api/reference/
package services
