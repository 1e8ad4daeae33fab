package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/moodify/internal/shared"
	"github.com/desertthunder/moodify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// recentSongLimit bounds the history passed to genre suggestion.
const recentSongLimit = 20

// PlaylistCreate recommends songs for a mood and saves them as a new Spotify playlist.
//
// When the stored authorization is missing or expired the browser login runs once and the request is retried.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	d, err := r.wire(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	req := tasks.GenerateRequest{
		Mood:  cmd.String("mood"),
		Genre: cmd.String("genre"),
		Name:  cmd.String("name"),
	}
	useJSON := cmd.Bool("json")

	result, err := r.generate(ctx, d, req, !useJSON)
	if err != nil && tasks.IsReauthRequired(err) {
		r.writePlainln("⚠ Spotify authorization required. Starting login...\n")
		// A rejected token has already sent the browser to the authorization page.
		begin := !errors.Is(err, shared.ErrTokenExpired)
		if authErr := r.doOAuth(ctx, d, loginTimeout, begin); authErr != nil {
			return fmt.Errorf("reauthorization failed: %w", authErr)
		}
		r.writePlainln("✓ Successfully reauthenticated. Retrying...\n")
		result, err = r.generate(ctx, d, req, !useJSON)
	}
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlainln("✓ Created %q", result.Name)
	r.writePlain("%s\n", result.Summary())
	if result.Playlist.PlaylistURL != "" {
		r.writePlain("%s\n", result.Playlist.PlaylistURL)
	}

	r.writePlain("\nAdded:\n")
	for i, s := range result.Playlist.AddedSongs {
		r.writePlain("%d. %s - %s\n", i+1, s.Artist, s.Title)
	}
	if len(result.Playlist.NotFoundSongs) > 0 {
		r.writePlain("\nNot found:\n")
		for _, s := range result.Playlist.NotFoundSongs {
			r.writePlain("  • %s - %s\n", s.Artist, s.Title)
		}
	}
	return nil
}

// generate runs the engine, echoing progress to the output when verbose is set.
func (r *Runner) generate(ctx context.Context, d *deps, req tasks.GenerateRequest, verbose bool) (*tasks.GenerateResult, error) {
	if !verbose {
		return d.engine.Generate(ctx, req, nil)
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("→ %s\n", update.Message)
		}
	}()

	result, err := d.engine.Generate(ctx, req, progress)
	close(progress)
	<-done
	return result, err
}

// PlaylistGenres suggests genres for a mood, informed by recently created playlists.
func (r *Runner) PlaylistGenres(ctx context.Context, cmd *cli.Command) error {
	d, err := r.wire(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	mood := strings.TrimSpace(cmd.String("mood"))
	history, err := d.history.RecentSongs(ctx, recentSongLimit)
	if err != nil {
		r.logger.Warn("failed to load recent songs", "error", err)
	}

	genres, err := d.provider.SuggestGenres(ctx, history, mood)
	if err != nil {
		return fmt.Errorf("failed to suggest genres: %w", err)
	}

	r.writePlain("Genres for %q:\n", mood)
	for _, g := range genres {
		r.writePlain("  • %s\n", g)
	}
	return nil
}
