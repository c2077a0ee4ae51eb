package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "habitquest"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitquest"
	DefaultConfigPath  = "~/.config/habitquest/config.toml"
	DefaultDBPath      = "~/.config/habitquest/habitquest.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitquest-"
	BackupFileSuffix = ".db"

	// KeyringStoragePath as storage.path reads the connection string from the OS keyring
	KeyringStoragePath = "keyring"

	// Server constants
	DefaultServerAddr    = "127.0.0.1:8787"
	ServerReadTimeout    = 10 * time.Second
	ServerShutdownPeriod = 5 * time.Second
	ServerLockfileName   = "server.lock"
	ServerSecretHeader   = "X-Habitquest-Secret"
	NotifyTimeout        = 2 * time.Second
	RecentEventsLimit    = 50
)

// Session States
const (
	StateHabits SessionState = iota
	StateAddHabit
	StateEditHabit
	StateConfirmDelete
	StateConfirmTaskEdit
	StateConfirmCloseDay
)
