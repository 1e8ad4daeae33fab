package tasks

import (
	"fmt"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Recommend Phase = iota
	FetchProfile
	CreatePlaylist
	ResolveTracks
	AddTracks
	SaveHistory
)

func (p Phase) String() string {
	switch p {
	case Recommend:
		return "recommend"
	case FetchProfile:
		return "fetch_profile"
	case CreatePlaylist:
		return "create_playlist"
	case ResolveTracks:
		return "resolve_tracks"
	case AddTracks:
		return "add_tracks"
	case SaveHistory:
		return "save_history"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func recommendUpdate(mood, genre string) ProgressUpdate {
	msg := fmt.Sprintf("Finding songs for %q...", mood)
	if genre != "" {
		msg = fmt.Sprintf("Finding %s songs for %q...", genre, mood)
	}
	return ProgressUpdate{Phase: Recommend, Step: 1, Total: 1, Message: msg}
}

func recommendedUpdate(songs []models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Recommend,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Got %d recommendations", len(songs)),
		Data:    songs,
	}
}

func fetchProfileUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchProfile, Step: 1, Total: 1, Message: "Fetching Spotify profile..."}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func createdPlaylistUpdate(pl *services.SpotifyPlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func resolveTrackUpdate(step, total int, song models.Song, found bool) ProgressUpdate {
	mark := "✓"
	if !found {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, mark, song.Artist, song.Title),
		Data:    song,
	}
}

func addTracksUpdate(step, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding %d tracks...", step, total, size),
	}
}

func saveHistoryUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: SaveHistory, Step: 1, Total: 1, Message: "Saving to history..."}
}
