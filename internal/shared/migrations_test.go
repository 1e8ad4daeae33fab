package shared

import (
	"context"
	"slices"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("Migrations", func(t *testing.T) {
		migrations, err := Migrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		for _, m := range migrations {
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration version %d is missing a script", m.Version)
			}
			if m.Name == "" {
				t.Errorf("migration version %d has no name", m.Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		version, err := SchemaVersion(ctx, db)
		if err != nil {
			t.Fatalf("failed to read schema version: %v", err)
		}
		if version != -1 {
			t.Errorf("expected version -1 on a fresh database, got %d", version)
		}

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		for _, table := range []string{"kv_entries", "playlist_history"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		rolled, err := RollbackMigration(ctx, db)
		if err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}
		if rolled.Name != "create_playlist_history" {
			t.Errorf("expected create_playlist_history to be rolled back, got %q", rolled.Name)
		}

		if version, _ := SchemaVersion(ctx, db); version != rolled.Version-1 {
			t.Errorf("expected version %d after rollback, got %d", rolled.Version-1, version)
		}
		if _, err := db.Exec("SELECT 1 FROM playlist_history LIMIT 1"); err == nil {
			t.Error("playlist_history table should be dropped after rollback")
		}

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to re-apply migrations: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM playlist_history LIMIT 1"); err != nil {
			t.Errorf("playlist_history should be restored: %v", err)
		}
	})

	t.Run("Rollback on empty database", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if _, err := RollbackMigration(ctx, db); err == nil {
			t.Error("expected error when nothing has been applied")
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if err := RunMigrations(cancelled, db); err == nil {
			t.Error("expected error for a cancelled context")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
		if err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := Migrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})
}

func TestSplitStatements(t *testing.T) {
	script := `-- leading comment
CREATE TABLE a (id TEXT); -- trailing
CREATE INDEX i ON a(id);

`
	got := splitStatements(script)
	want := []string{"CREATE TABLE a (id TEXT)", "CREATE INDEX i ON a(id)"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}
