package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/recommend"
	"github.com/desertthunder/moodify/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MoodView ViewState = iota
	GenreView
	WorkingView
	ResultView
)

// Generator runs the mood → playlist pipeline. Satisfied by [tasks.PlaylistEngine].
type Generator interface {
	Generate(ctx context.Context, req tasks.GenerateRequest, progress chan<- tasks.ProgressUpdate) (*tasks.GenerateResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	engine Generator
	genres recommend.GenreSuggester

	mood        textinput.Model
	genre       textinput.Model
	history     []models.Song
	suggestions []string
	suggestIdx  int
	spinner     spinner.Model

	progressChan chan tasks.ProgressUpdate
	doneChan     chan Msg
	progress     tasks.ProgressUpdate
	result       *tasks.GenerateResult
	err          error

	width int
	help  help.Model
	keys  keyMap
}

// NewModel creates a new TUI model. genres may be nil, which disables suggestions.
func NewModel(ctx context.Context, engine Generator, genres recommend.GenreSuggester) *Model {
	mood := textinput.New()
	mood.Placeholder = "e.g. rainy sunday morning"
	mood.CharLimit = 200
	mood.Width = 50
	mood.Focus()

	genre := textinput.New()
	genre.Placeholder = "any genre (optional)"
	genre.CharLimit = 100
	genre.Width = 50

	return &Model{
		ctx:     ctx,
		view:    MoodView,
		engine:  engine,
		genres:  genres,
		mood:    mood,
		genre:   genre,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// WithHistory sets the recently played songs used to suggest genres.
func (m *Model) WithHistory(songs []models.Song) *Model {
	m.history = songs
	return m
}

// Init starts the cursor blink of the mood input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case MoodView:
			return m.handleMoodKeys(msg)
		case GenreView:
			return m.handleGenreKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != WorkingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgGenresSuggested:
		data := msg.data.(genresData)
		if data.err == nil && data.mood == m.mood.Value() {
			m.suggestions = data.genres
			m.suggestIdx = 0
		}
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgGenerateComplete:
		data := msg.data.(completeData)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.doneChan = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) handleMoodKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.enter) {
		if strings.TrimSpace(m.mood.Value()) == "" {
			return m, nil
		}
		m.view = GenreView
		m.mood.Blur()
		m.suggestions = nil
		return m, tea.Batch(m.genre.Focus(), m.suggestGenres())
	}

	var cmd tea.Cmd
	m.mood, cmd = m.mood.Update(msg)
	return m, cmd
}

func (m *Model) handleGenreKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = MoodView
		m.genre.Blur()
		return m, m.mood.Focus()
	case key.Matches(msg, m.keys.suggest):
		if len(m.suggestions) > 0 {
			m.genre.SetValue(m.suggestions[m.suggestIdx])
			m.genre.CursorEnd()
			m.suggestIdx = (m.suggestIdx + 1) % len(m.suggestions)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.view = WorkingView
		m.genre.Blur()
		return m, tea.Batch(m.spinner.Tick, m.startGenerate())
	}

	var cmd tea.Cmd
	m.genre, cmd = m.genre.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "q":
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = MoodView
		m.result = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		m.mood.Reset()
		m.genre.Reset()
		return m, m.mood.Focus()
	}
	return m, nil
}

func (m *Model) suggestGenres() tea.Cmd {
	if m.genres == nil {
		return nil
	}
	ctx, genres, history, mood := m.ctx, m.genres, m.history, m.mood.Value()
	return func() tea.Msg {
		suggested, err := genres.SuggestGenres(ctx, history, mood)
		return genresSuggestedMsg(mood, suggested, err)
	}
}

// startGenerate runs the engine in the background and returns a command waiting for its first message.
func (m *Model) startGenerate() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.doneChan = done

	ctx, engine := m.ctx, m.engine
	req := tasks.GenerateRequest{Mood: m.mood.Value(), Genre: m.genre.Value()}
	go func() {
		result, err := engine.Generate(ctx, req, progress)
		done <- generateCompleteMsg(result, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		if done == nil {
			return nil
		}
		select {
		case update := <-progress:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case MoodView:
		return m.renderMood()
	case GenreView:
		return m.renderGenre()
	case WorkingView:
		return m.renderWorking()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderMood() string {
	title := styles.title.Render("How are you feeling?")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.mood.View(), helpView)
}

func (m *Model) renderGenre() string {
	title := styles.title.Render(fmt.Sprintf("Any genre for %q?", m.mood.Value()))

	var hint string
	if len(m.suggestions) > 0 {
		hint = "\n" + styles.help.Render("Suggestions: "+strings.Join(m.suggestions, ", "))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.suggest, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, m.genre.View(), hint, helpView)
}

func (m *Model) renderWorking() string {
	title := styles.title.Render("Building your playlist")

	message := m.progress.Message
	if message == "" {
		message = "Starting..."
	}
	return fmt.Sprintf("%s\n%s %s", title, m.spinner.View(), message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		msg := fmt.Sprintf("Playlist creation failed: %v", m.err)
		if tasks.IsReauthRequired(m.err) {
			msg += "\nRun `moodify auth login` to reconnect Spotify."
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(msg), helpView)
	}

	if m.result == nil || m.result.Playlist == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	pl := m.result.Playlist
	var b strings.Builder
	b.WriteString(styles.ok.Render("✓ " + m.result.Name))
	b.WriteString("\n")
	b.WriteString(pl.Summary())
	if pl.PlaylistURL != "" {
		b.WriteString("\n" + pl.PlaylistURL)
	}

	b.WriteString("\n\n" + styles.title.Render("Added"))
	writeSongs(&b, pl.AddedSongs)

	if len(pl.NotFoundSongs) > 0 {
		b.WriteString("\n\n" + styles.warn.Render("Not found"))
		writeSongs(&b, pl.NotFoundSongs)
	}

	return fmt.Sprintf("%s\n\n%s", b.String(), helpView)
}

func writeSongs(b *strings.Builder, songs []models.Song) {
	for _, s := range songs {
		fmt.Fprintf(b, "\n  • %s - %s", s.Artist, s.Title)
	}
}
