package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/moodify/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgGenresSuggested MsgKind = iota
	MsgProgressUpdate
	MsgGenerateComplete
)

type genresData struct {
	mood   string
	genres []string
	err    error
}

type completeData struct {
	result *tasks.GenerateResult
	err    error
}

// genresSuggestedMsg is the constructor for [MsgGenresSuggested]
func genresSuggestedMsg(mood string, genres []string, err error) Msg {
	return Msg{kind: MsgGenresSuggested, data: genresData{mood: mood, genres: genres, err: err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// generateCompleteMsg is the constructor for [MsgGenerateComplete]
func generateCompleteMsg(result *tasks.GenerateResult, err error) Msg {
	return Msg{kind: MsgGenerateComplete, data: completeData{result: result, err: err}}
}
