package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodify/internal/shared"
	"github.com/desertthunder/moodify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for mood playlists.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	r.SetLogger(fileLogger)

	d, err := r.wire(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	if !d.flow.IsConnected(ctx) {
		if err := d.flow.Refresh(ctx); err != nil {
			r.logger.Info("refresh unavailable, starting login", "error", err)
			r.writePlain("⚠ Not connected to Spotify. Starting login...\n")
			if err := r.doOAuth(ctx, d, loginTimeout, true); err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}
		}
	}

	recent, err := d.history.RecentSongs(ctx, recentSongLimit)
	if err != nil {
		r.logger.Warn("failed to load recent songs", "error", err)
	}

	model := ui.NewModel(ctx, d.engine, d.provider).WithHistory(recent)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
