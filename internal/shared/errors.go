package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authorization flow errors
	ErrAuthorizationDenied = fmt.Errorf("authorization denied")
	ErrMissingCode         = fmt.Errorf("missing authorization code")
	ErrStateMismatch       = fmt.Errorf("authorization state mismatch")
	ErrTokenExchangeFailed = fmt.Errorf("token exchange failed")
	ErrNoRefreshToken      = fmt.Errorf("no refresh token available")
	ErrRefreshFailed       = fmt.Errorf("token refresh failed")

	// Catalog errors
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrTokenExpired       = fmt.Errorf("access token expired")
	ErrCatalogAPI         = fmt.Errorf("catalog API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrTooManyTracks      = fmt.Errorf("too many tracks for a single request")

	// Recommendation errors
	ErrNoRecommendations = fmt.Errorf("no recommendations available")
	ErrUnparseable       = fmt.Errorf("could not parse recommendation output")

	// Storage errors
	ErrHistoryNotFound = fmt.Errorf("history item not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
