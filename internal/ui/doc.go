// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through a single playlist creation:
//  1. [MoodView] : Describe the mood
//  2. [GenreView] : Optionally pick a genre, with suggestions cycled by tab
//  3. [WorkingView] : Spinner with real-time progress updates
//  4. [ResultView] : Added and not-found songs, the summary line and the playlist link
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the PlaylistEngine, providing non-blocking status reporting while the playlist is built.
package ui
