// Package storage defines the persistence contract shared by the SQLite and
// PostgreSQL backends.
package storage

import (
	"errors"

	"github.com/julianstephens/habitquest/internal/migration"
	"github.com/julianstephens/habitquest/internal/models"
)

// ErrNotInitialized is returned by Load when the database was never created
var ErrNotInitialized = errors.New("storage not initialized, run 'habitquest init' first")

// Provider persists settings and the engine snapshot. SaveSnapshot replaces
// the stored state atomically; readers never observe a partial snapshot.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Engine state
	SaveSnapshot(models.Snapshot) error
	LoadSnapshot() (models.Snapshot, error)

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by providers backed by a versioned SQL schema
type Migrator interface {
	MigrationStatus() (migration.Status, error)
	Migrate(logFn func(string)) (int, error)
}
