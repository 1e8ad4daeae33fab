package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/server"
	"github.com/desertthunder/moodify/internal/shared"
	"github.com/urfave/cli/v3"
)

const loginTimeout = 2 * time.Minute

// AuthLogin performs the OAuth2 authorization-code flow for Spotify.
//
// Starts a local HTTP server on the redirect URI's host, opens the browser and waits for the callback.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	d, err := r.wire(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = loginTimeout
	}

	if err := r.doOAuth(ctx, d, timeout, true); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("You can now use: moodify playlist create --mood \"...\"\n")
	return nil
}

// AuthStatus prints the derived login state and token expiry.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	d, err := r.wire(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	status := d.flow.Status(ctx)
	r.writePlain("Status: %s\n", status)

	if rec, ok := d.tokens.Read(ctx); ok {
		expiry := rec.Expiry()
		if status == auth.Authenticated {
			r.writePlain("Access token expires: %s (in %s)\n", expiry.Format(time.RFC3339), time.Until(expiry).Round(time.Second))
		} else {
			r.writePlain("Access token expired: %s\n", expiry.Format(time.RFC3339))
		}
		if rec.RefreshToken != "" {
			r.writePlain("Refresh token: present\n")
		}
	}
	return nil
}

// AuthRefresh exchanges the stored refresh token for a new access token.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	d, err := r.wire(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := d.flow.Refresh(ctx); err != nil {
		if errors.Is(err, shared.ErrNoRefreshToken) {
			return fmt.Errorf("%w: run 'moodify auth login' first", err)
		}
		return err
	}

	r.writePlain("✓ Access token refreshed\n")
	return nil
}

// AuthLogout clears the stored tokens.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	d, err := r.wire(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	d.flow.Logout(ctx)
	r.writePlain("✓ Logged out\n")
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server.
//
// When begin is false a login is already in flight (the catalog client starts one on a rejected token)
// and only the callback is awaited.
func (r *Runner) doOAuth(ctx context.Context, d *deps, timeout time.Duration, begin bool) error {
	addr, err := callbackAddr(r.config)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for the OAuth callback on %s: %w", addr, err)
	}

	// The callback server's own /login route redirects instead of opening another browser window.
	srv := server.New(server.Options{Flow: d.flow.WithNavigator(nil), History: d.history, Logger: r.logger})

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server at %v", addr)
		serverErrors <- srv.Serve(serveCtx, ln)
	}()

	if begin || r.navigate == nil {
		if err := r.beginLogin(ctx, d); err != nil {
			return err
		}
	} else {
		r.writePlain("→ Continue the Spotify authorization in your browser\n")
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-srv.OAuth().Result():
		if err := result.Error(); err != nil {
			return fmt.Errorf("authorization failed: %w", err)
		}
		return nil
	case err := <-serverErrors:
		if err == nil {
			err = errors.New("server stopped before the callback arrived")
		}
		return fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// beginLogin starts a login through the flow, which opens the browser when the runner has a navigator.
func (r *Runner) beginLogin(ctx context.Context, d *deps) error {
	authURL, err := d.flow.BeginLogin(ctx)
	switch {
	case authURL == "":
		return fmt.Errorf("failed to start login: %w", err)
	case err != nil:
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	case r.navigate == nil:
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	default:
		r.writePlain("→ Opened browser for Spotify authorization\n")
	}
	return nil
}

// callbackAddr returns the listen address for the redirect URI, falling back to the [server] section.
func callbackAddr(cfg *shared.Config) (string, error) {
	u, err := url.Parse(cfg.Credentials.Spotify.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: redirect_uri: %v", shared.ErrInvalidConfig, err)
	}
	if u.Port() != "" {
		return u.Host, nil
	}
	return cfg.Server.Addr(), nil
}
