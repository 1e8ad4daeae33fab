package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/recommend"
	"github.com/desertthunder/moodify/internal/repositories"
	"github.com/desertthunder/moodify/internal/services"
	"github.com/desertthunder/moodify/internal/shared"
	"github.com/desertthunder/moodify/internal/store"
	"github.com/desertthunder/moodify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	navigate   auth.Navigator
	deps       *deps
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	// Navigate opens authorization pages. Nil leaves the user to open the printed URL.
	Navigate auth.Navigator
}

// deps are the wired pipeline components, built on first use by [Runner.wire].
type deps struct {
	db       *sql.DB
	kv       store.KV
	tokens   *store.TokenStore
	flow     *auth.Flow
	catalog  *services.SpotifyClient
	provider *recommend.Fallback
	engine   *tasks.PlaylistEngine
	history  *repositories.HistoryRepository
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		navigate:   opts.Navigate,
	}
}

// SetLogger replaces the runner's logger. Components wired afterwards log through it.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// wire builds the storage, auth, catalog and recommendation components from the configuration.
func (r *Runner) wire(ctx context.Context) (*deps, error) {
	if r.deps != nil {
		return r.deps, nil
	}

	cfg := r.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := shared.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	kv, err := store.New(ctx, cfg.Session, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	tokens := store.NewTokenStore(kv, store.WithLogger(shared.WithLogger(r.logger, "component", "tokens")))
	flow, err := auth.NewFlow(auth.Config{
		ClientID:     cfg.Credentials.Spotify.ClientID,
		ClientSecret: cfg.Credentials.Spotify.ClientSecret,
		RedirectURI:  cfg.Credentials.Spotify.RedirectURI,
		StrictState:  cfg.Auth.StrictState,
		Timeout:      cfg.Catalog.Timeout(),
		Navigate:     r.navigate,
		Logger:       shared.WithLogger(r.logger, "component", "auth"),
	}, tokens, store.NewStateStore(kv))
	if err != nil {
		kv.Close()
		db.Close()
		return nil, err
	}

	catalog := services.NewSpotifyClient(tokens, flow, services.ClientOptions{
		BaseURL:   cfg.Catalog.BaseURL,
		Timeout:   cfg.Catalog.Timeout(),
		RateLimit: cfg.Catalog.RateLimit,
		Logger:    shared.WithLogger(r.logger, "component", "catalog"),
	})
	resolver := services.NewTrackResolver(catalog, services.ResolverOptions{
		CacheSize: cfg.Catalog.CacheSize,
		CacheTTL:  cfg.Catalog.CacheTTL(),
		Logger:    shared.WithLogger(r.logger, "component", "resolver"),
	})

	provider := r.recommender()
	history := repositories.NewHistoryRepository(db)
	assembler := tasks.NewAssembler(catalog, resolver, shared.WithLogger(r.logger, "component", "assembler"))
	engine := tasks.NewPlaylistEngine(provider, assembler,
		tasks.WithHistory(history),
		tasks.WithEngineLogger(shared.WithLogger(r.logger, "component", "engine")),
	)

	r.deps = &deps{
		db:       db,
		kv:       kv,
		tokens:   tokens,
		flow:     flow,
		catalog:  catalog,
		provider: provider,
		engine:   engine,
		history:  history,
	}
	return r.deps, nil
}

// recommender returns the OpenAI provider backed by the curated lists, or the curated lists alone
// when no API key is configured.
func (r *Runner) recommender() *recommend.Fallback {
	curated := recommend.NewCuratedProvider()
	logger := shared.WithLogger(r.logger, "component", "recommend")

	ai := r.config.Credentials.OpenAI
	if ai.APIKey == "" {
		return recommend.NewFallback(nil, curated, logger)
	}

	primary, err := recommend.NewOpenAIProvider(recommend.OpenAIOptions{
		APIKey:  ai.APIKey,
		Model:   ai.Model,
		BaseURL: ai.BaseURL,
		Logger:  logger,
	})
	if err != nil {
		r.logger.Warn("openai provider unavailable, using curated lists", "error", err)
		return recommend.NewFallback(nil, curated, logger)
	}
	return recommend.NewFallback(primary, curated, logger)
}

// Close releases the wired components.
func (r *Runner) Close() error {
	if r.deps == nil {
		return nil
	}
	d := r.deps
	r.deps = nil
	return errors.Join(d.kv.Close(), d.db.Close())
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistCommand, historyCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
