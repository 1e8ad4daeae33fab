// Package server provides HTTP routing, middleware, the OAuth callback routes and the JSON API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] patterns ("GET /api/history/{id}") for method and
// wildcard matching.
//
// # OAuth Routes
//
// [OAuthHandler] serves GET /login, GET /callback and POST /logout around an [Authenticator].
// The callback renders a page that returns to the application after a short delay (longer, with the
// error shown, on failure) and publishes the outcome once on a channel. The CLI runs the handler on a
// temporary local server and waits on that channel.
//
// # JSON API
//
// [APIHandler] serves playlist creation, history and genre suggestions:
//
//	GET  /api/status         → login state
//	POST /api/playlists      → {mood, genre?, name?} → creation result and summary
//	GET  /api/history        → created playlists, newest first
//	GET  /api/history/{id}   → a single history item
//	GET  /api/genres?mood=   → 3-5 genre suggestions
//
// An expired session answers 401 with a login_url the client should follow.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
