package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/moodify/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the configuration file when missing, then initializes the database and runs migrations.
//
// With --rollback the most recent migration is reverted instead.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("rollback") {
		return r.rollbackDatabase(ctx)
	}

	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", r.configPath)
			if config, err := shared.LoadConfig(r.configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
			} else {
				r.config = config
			}
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	version, err := shared.SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready at %s (schema version %d)\n", r.config.Database.Path, version)
	r.writePlain("Next: set your Spotify credentials in %s and run 'moodify auth login'\n", r.configPath)
	return nil
}

func (r *Runner) rollbackDatabase(ctx context.Context) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	mig, err := shared.RollbackMigration(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	r.logger.Info("migration rolled back", "version", mig.Version, "name", mig.Name)
	r.writePlain("✓ Rolled back migration %04d (%s)\n", mig.Version, mig.Name)
	r.writePlain("Run 'moodify setup database' to apply it again\n")
	return nil
}

// SetupConfig saves the configuration the CLI is running with, so credentials supplied through
// .env or the environment end up in the config file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidArgument, r.configPath)
	}

	if err := r.config.Validate(); err != nil {
		return err
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return err
	}

	r.logger.Info("config saved", "path", r.configPath)
	r.writePlain("✓ Configuration written to %s\n", r.configPath)
	return nil
}
