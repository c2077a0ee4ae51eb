// Package backup keeps rotating VACUUM INTO copies of the SQLite database.
package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/migration"
	"github.com/julianstephens/habitquest/migrations"
)

const timestampFormat = "20060102-150405"

// ErrNoBackups is returned by Latest when the backup directory is empty
var ErrNoBackups = errors.New("no backups found")

// Info describes one backup file
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Name returns the file name of the backup
func (i Info) Name() string {
	return filepath.Base(i.Path)
}

// Manager handles backup operations for one database file
type Manager struct {
	dbPath    string
	backupDir string
	keep      int
	now       func() time.Time
}

// NewManager creates a manager that stores backups next to the database
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		keep:      constants.MaxBackups,
		now:       time.Now,
	}
}

// Dir returns the backup directory path
func (m *Manager) Dir() string {
	return m.backupDir
}

// Create writes a new backup and prunes the oldest ones beyond the retention limit
func (m *Manager) Create() (Info, error) {
	info, err := m.create()
	if err != nil {
		return Info{}, err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "error", err)
	}
	return info, nil
}

func (m *Manager) create() (Info, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return Info{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}

	ts := m.now()
	path, err := m.uniquePath(ts)
	if err != nil {
		return Info{}, err
	}
	if err := m.vacuumInto(path); err != nil {
		return Info{}, fmt.Errorf("failed to backup database: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	logger.Info("Created backup", "path", path)
	return Info{Path: path, Timestamp: ts.Truncate(time.Second), Size: stat.Size()}, nil
}

func (m *Manager) uniquePath(ts time.Time) (string, error) {
	base := constants.BackupFilePrefix + ts.Format(timestampFormat)
	path := filepath.Join(m.backupDir, base+constants.BackupFileSuffix)
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s-%d%s", base, n, constants.BackupFileSuffix))
	}
}

func (m *Manager) vacuumInto(destPath string) error {
	src, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer src.Close()

	var count int
	if err := src.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	// VACUUM INTO writes a consistent copy even while another process holds the file
	if _, err := src.Exec("VACUUM INTO ?", destPath); err != nil {
		src.Close()
		return copyFile(m.dbPath, destPath)
	}
	return nil
}

// List returns all backups, newest first
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	type candidate struct {
		info Info
		seq  int
	}
	var found []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, seq, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		stat, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{
			info: Info{Path: filepath.Join(m.backupDir, entry.Name()), Timestamp: ts, Size: stat.Size()},
			seq:  seq,
		})
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].info.Timestamp.Equal(found[j].info.Timestamp) {
			return found[i].info.Timestamp.After(found[j].info.Timestamp)
		}
		return found[i].seq > found[j].seq
	})

	backups := make([]Info, len(found))
	for i, c := range found {
		backups[i] = c.info
	}
	return backups, nil
}

// parseName extracts the timestamp and collision counter from
// habitquest-YYYYMMDD-HHMMSS[-N].db
func parseName(name string) (time.Time, int, bool) {
	rest, ok := strings.CutPrefix(name, constants.BackupFilePrefix)
	if !ok {
		return time.Time{}, 0, false
	}
	rest, ok = strings.CutSuffix(rest, constants.BackupFileSuffix)
	if !ok || len(rest) < len(timestampFormat) {
		return time.Time{}, 0, false
	}

	ts, err := time.ParseInLocation(timestampFormat, rest[:len(timestampFormat)], time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	suffix := rest[len(timestampFormat):]
	if suffix == "" {
		return ts, 0, true
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(suffix, "-"))
	if err != nil || !strings.HasPrefix(suffix, "-") || seq < 1 {
		return time.Time{}, 0, false
	}
	return ts, seq, true
}

// Latest returns the newest backup
func (m *Manager) Latest() (Info, error) {
	backups, err := m.List()
	if err != nil {
		return Info{}, err
	}
	if len(backups) == 0 {
		return Info{}, ErrNoBackups
	}
	return backups[0], nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the database with the given backup. The current database,
// if any, is backed up first and that backup's path is returned.
// The database must not be open while restoring.
func (m *Manager) Restore(backupPath string) (string, error) {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if err := Verify(backupPath); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var preRestore string
	if _, err := os.Stat(m.dbPath); err == nil {
		info, err := m.create()
		if err != nil {
			return "", fmt.Errorf("failed to backup current database before restore: %w", err)
		}
		preRestore = info.Path
	}

	tempPath := m.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return "", fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tempPath, m.dbPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tempPath, "error", removeErr)
		}
		return "", fmt.Errorf("failed to restore database: %w", err)
	}

	logger.Info("Restored backup", "path", backupPath, "pre_restore", preRestore)
	return preRestore, nil
}

// Verify checks that path is a habitquest database this build can open
func Verify(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var tables int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('schema_version', 'engine_state')").Scan(&tables)
	if err != nil {
		return err
	}
	if tables != 2 {
		return fmt.Errorf("not a %s database", constants.AppName)
	}

	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return err
	}
	return migration.NewRunner(db, subFS).ValidateVersion()
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}
