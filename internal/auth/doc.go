// Package auth implements the authorization-code login flow against the Spotify accounts service.
//
// # States
//
// A session moves Unauthenticated → AwaitingCallback → Authenticated:
//
//   - [Flow.BeginLogin] stores a fresh CSRF nonce and navigates to the authorization page.
//   - [Flow.CompleteLogin] handles the provider's redirect back: it exchanges the code for tokens
//     (client authenticated with HTTP Basic) and writes the token record. The stored nonce is deleted
//     on every callback whatever the outcome.
//   - [Flow.Refresh] trades the stored refresh token for a new access token. A rotated refresh token
//     replaces the old one; otherwise the old one is kept.
//   - [Flow.Logout] clears the token record.
//
// # State Verification
//
// A nonce mismatch is logged and the exchange proceeds, since the nonce may not survive the redirect
// in every environment. Set [Config.StrictState] to make a mismatch fatal with [shared.ErrStateMismatch].
//
// # Errors
//
// Failures are reported as [shared.ErrAuthorizationDenied], [shared.ErrMissingCode],
// [shared.ErrNoRefreshToken], or as a [*ProviderError] wrapping [shared.ErrTokenExchangeFailed]
// or [shared.ErrRefreshFailed] with the token endpoint's message.
//
// See https://developer.spotify.com/documentation/web-api/tutorials/code-flow
package auth
