package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitquest/internal/backup"
	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/notifier"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/storage/sqlite"
	"github.com/julianstephens/habitquest/internal/utils"
	"github.com/julianstephens/habitquest/internal/validation"
)

type DoctorCmd struct{}

// skipError marks a check that does not apply to the current setup
type skipError struct{ reason string }

func (e skipError) Error() string { return e.reason }

type check struct {
	name     string
	needsDB  bool
	warnOnly bool
	run      func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Database integrity", needsDB: true, run: checkIntegrity},
	{name: "Settings", needsDB: true, run: checkSettings},
	{name: "Progress state", needsDB: true, run: checkProgress},
	{name: "Progress consistency", needsDB: true, run: checkConsistency},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Status server", warnOnly: true, run: checkServer},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := ctx.Store.Load(); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		var skip skipError
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.As(err, &skip):
			ctx.Printf("⊘ %s: SKIPPED (%s)\n", c.name, skip.reason)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func skipped(reason string) error {
	return skipError{reason: reason}
}

func checkSchemaVersion(ctx *cli.Context) error {
	migrator, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return skipped("backend has no schema")
	}
	status, err := migrator.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if status.Current > status.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", status.Current, status.Latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	migrator, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return skipped("backend has no schema")
	}
	status, err := migrator.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if status.Current < status.Latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'habitquest migrate')", status.Current, status.Latest)
	}
	return nil
}

func checkIntegrity(ctx *cli.Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return skipped("SQLite only")
	}
	db := store.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to run integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check reported: %s", result)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("timezone %q is not a valid IANA timezone", settings.Timezone)
	}
	if !utils.ValidateRolloverHour(settings.RolloverHour) {
		return fmt.Errorf("rollover hour %d is out of range", settings.RolloverHour)
	}
	return nil
}

// checkProgress rebuilds the engine so every stored invariant is re-validated
func checkProgress(ctx *cli.Context) error {
	e, err := ctx.LoadEngine()
	if err != nil {
		return err
	}
	slots := e.Slots()
	if slots.Used > constants.MaxSlots {
		return fmt.Errorf("%d active habits exceed the %d slot maximum", slots.Used, constants.MaxSlots)
	}
	return nil
}

func checkConsistency(ctx *cli.Context) error {
	snap, err := ctx.Store.LoadSnapshot()
	if err != nil {
		return err
	}
	result := validation.New().ValidateSnapshot(snap)
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found - run 'habitquest validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return skipped("backups are SQLite only")
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	if _, err := mgr.Latest(); err != nil {
		if errors.Is(err, backup.ErrNoBackups) {
			return fmt.Errorf("no backups found - consider creating one with 'habitquest backup create'")
		}
		return fmt.Errorf("failed to list backups: %w", err)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, err := ctx.Today(); err != nil {
		return fmt.Errorf("failed to compute today's day index: %w", err)
	}
	return nil
}

func checkServer(ctx *cli.Context) error {
	if ctx.ConfigDir == "" {
		return skipped("no config directory")
	}
	lock, err := notifier.ReadLock(notifier.LockPath(ctx.ConfigDir))
	if err != nil {
		if errors.Is(err, notifier.ErrServerNotRunning) {
			return skipped("not running")
		}
		return err
	}
	ctx.Printf("   Listening on 127.0.0.1:%d (pid %d)\n", lock.Port, lock.PID)
	return nil
}
