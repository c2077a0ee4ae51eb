package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/cli/backups"
	"github.com/julianstephens/habitquest/internal/cli/habits"
	"github.com/julianstephens/habitquest/internal/cli/progress"
	"github.com/julianstephens/habitquest/internal/cli/settings"
	"github.com/julianstephens/habitquest/internal/cli/system"
	"github.com/julianstephens/habitquest/internal/config"
	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Path to config.toml." type:"path" default:"${config_path}"`
	DB      string `name:"db" help:"SQLite file, PostgreSQL connection string without credentials, or 'keyring'. Overrides storage.path." env:"HABITQUEST_DB"`
	Debug   bool   `help:"Log debug output to stderr." env:"HABITQUEST_DEBUG"`

	Init     system.InitCmd     `cmd:"" help:"Initialize habitquest storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Check stored progress for inconsistencies."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Serve    system.ServeCmd    `cmd:"" help:"Run the read-only status server."`

	Status progress.StatusCmd `cmd:"" help:"Show level, XP, streak and slots."`
	Habit  habits.HabitCmd    `cmd:"" help:"Manage habits."`
	Task   progress.TaskCmd   `cmd:"" help:"Check off tasks."`
	Day    progress.DayCmd    `cmd:"" help:"Manage the current day."`
	XP     progress.XPCmd     `cmd:"" name:"xp" help:"Inspect the XP log."`
	Export progress.ExportCmd `cmd:"" help:"Export progress as JSON or YAML."`
	Import progress.ImportCmd `cmd:"" help:"Replace progress with an exported file."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Report whether a connection string is stored." default:"1"`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage day boundary settings."`
}

func main() {
	// a missing .env is normal
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Gamified habit tracker: earn XP, keep streaks, unlock slots and badges"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": config.ExpandPath(constants.DefaultConfigPath),
		},
	)

	if err := run(kctx); err != nil {
		apperrors.Fatal(err)
	}
}

func run(kctx *kong.Context) error {
	configDir := filepath.Dir(CLI.Config)
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	debug := applyEnv(configDir, CLI.DB, CLI.Debug, &cfg)
	if err := logger.Init(logger.Config{
		Debug:     debug,
		ConfigDir: configDir,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	command := kctx.Command()
	appCtx := cli.NewContext(nil, cfg, configDir)

	// keyring commands manage the credentials needed to open the store
	if !strings.HasPrefix(command, "keyring") {
		store, err := cli.OpenStore(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		appCtx.Store = store

		// init creates the schema itself
		if command != "init" {
			if err := store.Load(); err != nil {
				return err
			}
		}
	}

	logger.Debug("Running command", "command", command, "storage", cfg.Storage.Path)
	return kctx.Run(appCtx)
}

// applyEnv loads the config directory's .env, which kong could not see when it
// parsed flags, and applies HABITQUEST_DB and HABITQUEST_DEBUG from it. Flags
// and variables already set in the shell win. It returns whether debug output is on.
func applyEnv(configDir, dbFlag string, debugFlag bool, cfg *config.Config) bool {
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	db := dbFlag
	if db == "" {
		db = os.Getenv("HABITQUEST_DB")
	}
	if db != "" {
		cfg.Storage.Path = db
	}

	envDebug, _ := strconv.ParseBool(os.Getenv("HABITQUEST_DEBUG"))
	return debugFlag || envDebug || cfg.Logging.Debug
}
