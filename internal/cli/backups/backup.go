package backups

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitquest/internal/backup"
	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/logger"
)

func requireSQLite(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return errors.New("backups are only supported for SQLite storage; use pg_dump for PostgreSQL")
	}
	return nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	if err := requireSQLite(ctx); err != nil {
		return err
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	info, err := mgr.Create()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	ctx.Printf("✓ Backup created: %s\n", info.Name())
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	if err := requireSQLite(ctx); err != nil {
		return err
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		ctx.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), b.Name(), sizeKB)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" optional:"" help:"Path or filename of the backup to restore. Defaults to the newest backup."`
	Yes        bool   `short:"y" help:"Do not ask for confirmation."`
}

// resolve finds the backup by absolute path, path relative to the working
// directory, or name inside the backup directory
func (c *BackupRestoreCmd) resolve(mgr *backup.Manager) (string, error) {
	if c.BackupFile == "" {
		latest, err := mgr.Latest()
		if err != nil {
			return "", err
		}
		return latest.Path, nil
	}

	if filepath.IsAbs(c.BackupFile) {
		if _, err := os.Stat(c.BackupFile); err != nil {
			return "", fmt.Errorf("backup file not found: %s", c.BackupFile)
		}
		return c.BackupFile, nil
	}
	if _, err := os.Stat(c.BackupFile); err == nil {
		return filepath.Abs(c.BackupFile)
	}
	candidate := filepath.Join(mgr.Dir(), c.BackupFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", mgr.Dir())
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	if err := requireSQLite(ctx); err != nil {
		return err
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backupPath, err := c.resolve(mgr)
	if err != nil {
		return err
	}

	if !c.Yes {
		ctx.Println("⚠️  WARNING: This will replace your current progress with the backup.")
		ctx.Println("⚠️  IMPORTANT: Stop the TUI and the status server before restoring.")
		ctx.Println("A backup of your current database will be created before restoring.")
		ctx.Printf("\nRestore from: %s\n", backupPath)
		ok, err := ctx.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		logger.Warn("Failed to close database before restore", "error", err)
	}

	preRestore, err := mgr.Restore(backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	ctx.Println("✓ Database restored successfully!")
	if preRestore != "" {
		ctx.Printf("  Previous state saved as %s\n", filepath.Base(preRestore))
	}
	return nil
}
