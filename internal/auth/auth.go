package auth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/moodify/internal/shared"
	"github.com/desertthunder/moodify/internal/store"
)

const (
	SpotifyAuthURL  = "https://accounts.spotify.com/authorize"
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"

	stateLength      = 16
	defaultExpiresIn = 3600
)

// Scopes requested on every login.
var Scopes = []string{
	"playlist-modify-public",
	"playlist-modify-private",
	"user-read-private",
	"user-read-email",
}

// Status is the derived login state of a session.
type Status int

const (
	Unauthenticated Status = iota
	AwaitingCallback
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case AwaitingCallback:
		return "awaiting callback"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Tokens is the token record storage the flow writes to. Satisfied by [store.TokenStore].
type Tokens interface {
	Read(ctx context.Context) (store.TokenRecord, bool)
	Write(ctx context.Context, accessToken, refreshToken string, expiresIn int64) error
	Clear(ctx context.Context) error
	IsValid(ctx context.Context) bool
}

// States holds the pending CSRF nonce. Satisfied by [store.StateStore].
type States interface {
	Save(ctx context.Context, state string) error
	Load(ctx context.Context) (string, bool)
	Delete(ctx context.Context) error
}

// Navigator sends the user agent to url. The CLI opens a browser; servers redirect the response instead.
type Navigator func(ctx context.Context, url string) error

// Config describes the OAuth client.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// AuthURL and TokenURL default to the Spotify accounts endpoints.
	AuthURL  string
	TokenURL string
	// StrictState rejects callbacks whose state does not match the stored nonce.
	StrictState bool
	// Timeout bounds each call to the token endpoint. Defaults to 15 seconds.
	Timeout time.Duration
	// HTTPClient overrides the client used for token endpoint calls.
	HTTPClient *http.Client
	Navigate   Navigator
	Logger     *log.Logger
}

// CallbackParams are the query parameters of the provider redirect.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CallbackParamsFromQuery extracts [CallbackParams] from a callback URL's query.
func CallbackParamsFromQuery(q url.Values) CallbackParams {
	return CallbackParams{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// ProviderError is a non-2xx response from the token endpoint.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
	err        error
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.err, e.StatusCode)
	}
	return fmt.Sprintf("%v: %s", e.err, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.err }

// Flow drives the authorization-code grant and token refresh.
type Flow struct {
	oauth       *oauth2.Config
	tokens      Tokens
	states      States
	navigate    Navigator
	strictState bool
	httpClient  *http.Client
	logger      *log.Logger
}

// NewFlow validates cfg and returns a [Flow] storing its state in tokens and states.
func NewFlow(cfg Config, tokens Tokens, states States) (*Flow, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}
	if cfg.RedirectURI == "" {
		return nil, fmt.Errorf("%w: missing redirect_uri", shared.ErrMissingCredentials)
	}

	authURL, tokenURL := cfg.AuthURL, cfg.TokenURL
	if authURL == "" {
		authURL = SpotifyAuthURL
	}
	if tokenURL == "" {
		tokenURL = SpotifyTokenURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Flow{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		tokens:      tokens,
		states:      states,
		navigate:    cfg.Navigate,
		strictState: cfg.StrictState,
		httpClient:  client,
		logger:      logger,
	}, nil
}

// WithNavigator returns a copy of f that navigates with n. A nil n only returns the URL from [Flow.BeginLogin].
//
// The copy shares token and state storage with f.
func (f *Flow) WithNavigator(n Navigator) *Flow {
	c := *f
	c.navigate = n
	return &c
}

// AuthorizationURL builds the provider authorization URL for state.
func (f *Flow) AuthorizationURL(state string) string {
	return f.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// BeginLogin stores a fresh nonce, navigates to the authorization page and returns its URL.
//
// Any nonce from an earlier attempt is overwritten.
func (f *Flow) BeginLogin(ctx context.Context) (string, error) {
	state, err := shared.GenerateState(stateLength)
	if err != nil {
		return "", err
	}
	if err := f.states.Save(ctx, state); err != nil {
		return "", err
	}

	authURL := f.AuthorizationURL(state)
	f.logger.Debug("starting login", "url", authURL)

	if f.navigate != nil {
		if err := f.navigate(ctx, authURL); err != nil {
			return authURL, fmt.Errorf("failed to navigate to authorization page: %w", err)
		}
	}
	return authURL, nil
}

// CompleteLogin handles the provider callback and stores the exchanged tokens.
func (f *Flow) CompleteLogin(ctx context.Context, params CallbackParams) error {
	stored, hasStored := f.states.Load(ctx)
	defer func() {
		if err := f.states.Delete(ctx); err != nil {
			f.logger.Warn("failed to delete auth state", "error", err)
		}
	}()

	if params.Error != "" {
		if params.ErrorDescription != "" {
			return fmt.Errorf("%w: %s (%s)", shared.ErrAuthorizationDenied, params.Error, params.ErrorDescription)
		}
		return fmt.Errorf("%w: %s", shared.ErrAuthorizationDenied, params.Error)
	}

	if params.Code == "" {
		return shared.ErrMissingCode
	}

	if !hasStored || params.State != stored {
		if f.strictState {
			return shared.ErrStateMismatch
		}
		f.logger.Warn("auth state mismatch, continuing with token exchange", "stored", hasStored)
	}

	token, err := f.oauth.Exchange(f.clientContext(ctx), params.Code)
	if err != nil {
		return providerError(shared.ErrTokenExchangeFailed, err)
	}

	if err := f.tokens.Write(ctx, token.AccessToken, token.RefreshToken, expiresIn(token)); err != nil {
		return err
	}

	f.logger.Info("login complete")
	return nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (f *Flow) Refresh(ctx context.Context) error {
	rec, ok := f.tokens.Read(ctx)
	if !ok || rec.RefreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	src := f.oauth.TokenSource(f.clientContext(ctx), &oauth2.Token{RefreshToken: rec.RefreshToken})
	token, err := src.Token()
	if err != nil {
		return providerError(shared.ErrRefreshFailed, err)
	}

	refreshToken := rec.RefreshToken
	if token.RefreshToken != "" {
		refreshToken = token.RefreshToken
	}

	if err := f.tokens.Write(ctx, token.AccessToken, refreshToken, expiresIn(token)); err != nil {
		return err
	}

	f.logger.Info("access token refreshed", "rotated", refreshToken != rec.RefreshToken)
	return nil
}

// Logout clears the token record. It never fails; storage errors are logged.
func (f *Flow) Logout(ctx context.Context) {
	if err := f.tokens.Clear(ctx); err != nil {
		f.logger.Warn("failed to clear token record", "error", err)
	}
}

// IsConnected reports whether a valid access token is stored.
func (f *Flow) IsConnected(ctx context.Context) bool {
	return f.tokens.IsValid(ctx)
}

// Status derives the current login state from storage.
func (f *Flow) Status(ctx context.Context) Status {
	if f.tokens.IsValid(ctx) {
		return Authenticated
	}
	if _, ok := f.states.Load(ctx); ok {
		return AwaitingCallback
	}
	return Unauthenticated
}

func (f *Flow) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
}

func expiresIn(t *oauth2.Token) int64 {
	if t.ExpiresIn > 0 {
		return t.ExpiresIn
	}
	if !t.Expiry.IsZero() {
		return int64(math.Round(time.Until(t.Expiry).Seconds()))
	}
	return defaultExpiresIn
}

func providerError(kind, err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return fmt.Errorf("%w: %v", kind, err)
	}

	pe := &ProviderError{Code: re.ErrorCode, Message: re.ErrorDescription, err: kind}
	if re.Response != nil {
		pe.StatusCode = re.Response.StatusCode
	}
	if pe.Message == "" {
		pe.Message = re.ErrorCode
	}
	if pe.Message == "" {
		pe.Message = string(re.Body)
	}
	return pe
}
