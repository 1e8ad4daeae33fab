package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/shared"
)

// Callback page redirect delays.
const (
	SuccessRedirectDelay = 2 * time.Second
	FailureRedirectDelay = 5 * time.Second
)

// Authenticator is the login flow driven by the OAuth routes. Satisfied by [auth.Flow].
type Authenticator interface {
	BeginLogin(ctx context.Context) (string, error)
	CompleteLogin(ctx context.Context, params auth.CallbackParams) error
	Logout(ctx context.Context)
	Status(ctx context.Context) auth.Status
}

// OAuthResult contains the result of an OAuth authorization callback.
type OAuthResult struct {
	err error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler serves the login, callback and logout routes.
// Implements the Handler interface for registration with a Router.
//
// Every callback outcome is published once on [OAuthHandler.Result], which the CLI waits on.
type OAuthHandler struct {
	flow       Authenticator
	redirectTo string
	resultChan chan OAuthResult
	once       sync.Once
	logger     *log.Logger
}

// NewOAuthHandler creates a new OAuth handler around flow.
//
// The callback page sends the browser to redirectTo afterwards; an empty value means "/".
func NewOAuthHandler(flow Authenticator, redirectTo string, logger *log.Logger) *OAuthHandler {
	if redirectTo == "" {
		redirectTo = "/"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OAuthHandler{
		flow:       flow,
		redirectTo: redirectTo,
		resultChan: make(chan OAuthResult, 1),
		logger:     logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"GET /login", "GET /callback", "POST /logout"}
}

// ServeHTTP dispatches to the login, callback or logout handler.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/login":
		h.login(w, r)
	case "/callback":
		h.callback(w, r)
	case "/logout":
		h.logout(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *OAuthHandler) login(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.flow.BeginLogin(r.Context())
	if err != nil {
		requestLogger(r, h.logger).Error("failed to start login", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start login")
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// callback completes the login and renders a page that returns to the application after a delay.
func (h *OAuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	params := auth.CallbackParamsFromQuery(r.URL.Query())
	err := h.flow.CompleteLogin(r.Context(), params)
	h.Send(OAuthResult{err: err})

	page := callbackPage{RedirectTo: h.redirectTo}
	status := http.StatusOK
	if err != nil {
		requestLogger(r, h.logger).Warn("login failed", "error", err)
		page.Error = err.Error()
		page.Delay = int(FailureRedirectDelay.Seconds())
		status = callbackStatus(err)
	} else {
		page.Delay = int(SuccessRedirectDelay.Seconds())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := callbackTemplate.Execute(w, page); err != nil {
		requestLogger(r, h.logger).Error("failed to render callback page", "error", err)
	}
}

func (h *OAuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.flow.Logout(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"status": auth.Unauthenticated.String()})
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

func callbackStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrAuthorizationDenied),
		errors.Is(err, shared.ErrMissingCode),
		errors.Is(err, shared.ErrStateMismatch):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrTokenExchangeFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
