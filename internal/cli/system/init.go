package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/config"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy progress from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if !ctx.IsSQLite() {
			return fmt.Errorf("--force is only supported for SQLite storage")
		}
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized habitquest storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying progress from: %s\n", c.Source)
		if err := c.migrateData(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) removeExisting(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		absSource, err := filepath.Abs(config.ExpandPath(c.Source))
		if err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	ctx.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

// migrateData copies settings and the full progress snapshot from another store
func (c *InitCmd) migrateData(ctx *cli.Context) error {
	source, err := cli.OpenStore(c.Source)
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	ctx.Println("  Migrating settings...")
	settings, err := source.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	ctx.Println("  Migrating progress...")
	snap, err := source.LoadSnapshot()
	if err != nil {
		return fmt.Errorf("failed to load progress from source: %w", err)
	}
	if err := ctx.Store.SaveSnapshot(snap); err != nil {
		return fmt.Errorf("failed to save progress to destination: %w", err)
	}
	ctx.Printf("    Migrated %d habits and %d XP awards\n", len(snap.Habits), len(snap.XPLog))
	return nil
}
