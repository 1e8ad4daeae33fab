package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moodify/internal/formatter"
	"github.com/desertthunder/moodify/internal/models"
	"github.com/urfave/cli/v3"
)

// HistoryList prints created playlists, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	d, err := r.wire(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	var items []*models.PlaylistHistoryItem
	if limit := cmd.Int("limit"); limit > 0 {
		items, err = d.history.Recent(ctx, limit)
	} else {
		items, err = d.history.List(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	if len(items) == 0 {
		r.writePlain("No playlists yet. Try: moodify playlist create --mood \"...\"\n")
		return nil
	}

	r.writePlain("Found %d playlists:\n\n", len(items))
	for i, item := range items {
		r.writePlain("%d. %s\n", i+1, item.Name)
		r.writePlain("   ID: %s\n", item.ID)
		r.writePlain("   Mood: %s\n", item.Mood)
		if item.Genre != "" {
			r.writePlain("   Genre: %s\n", item.Genre)
		}
		r.writePlain("   Songs: %d added, %d not found\n", item.AddedCount, item.NotFoundCount)
		if item.SpotifyURL != "" {
			r.writePlain("   URL: %s\n", item.SpotifyURL)
		}
		r.writePlain("   Created: %s\n\n", item.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// HistoryExport writes one history item's songs to a file.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	d, err := r.wire(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	item, err := d.history.Get(ctx, cmd.String("id"))
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(item, f, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Infof("playlist exported to %v with %v songs", path, len(item.Songs))
	r.writePlain("✓ Playlist exported to %s\n", path)
	r.writePlain("  Playlist: %s\n", item.Name)
	r.writePlain("  Songs: %d\n", len(item.Songs))
	return nil
}
