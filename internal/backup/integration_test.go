package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage/sqlite"
)

func saveDay(t *testing.T, dbPath string, day int) {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	defer store.Close()
	snap := models.Snapshot{Day: day, DayStarted: true, UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := store.SaveSnapshot(snap); err != nil {
		t.Fatalf("failed to save snapshot: %v", err)
	}
}

func loadDay(t *testing.T, dbPath string) int {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	defer store.Close()
	snap, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	return snap.Day
}

func TestIntegrationBackupRestoreWorkflow(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.Local))

	saveDay(t, dbPath, 20454)
	first, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	saveDay(t, dbPath, 20460)
	if got := loadDay(t, dbPath); got != 20460 {
		t.Fatalf("day = %d before restore, want 20460", got)
	}

	preRestore, err := mgr.Restore(first.Path)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if preRestore == "" {
		t.Fatal("expected a pre-restore backup of the current database")
	}
	if got := loadDay(t, dbPath); got != 20454 {
		t.Errorf("day = %d after restore, want 20454", got)
	}

	// the pre-restore copy still holds the newer state
	if _, err := mgr.Restore(preRestore); err != nil {
		t.Fatalf("Restore of pre-restore backup failed: %v", err)
	}
	if got := loadDay(t, dbPath); got != 20460 {
		t.Errorf("day = %d after restoring pre-restore backup, want 20460", got)
	}

	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file left behind")
	}
}

func TestRestoreWithoutCurrentDatabase(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	info, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := os.Remove(dbPath); err != nil {
		t.Fatal(err)
	}

	preRestore, err := mgr.Restore(info.Path)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if preRestore != "" {
		t.Errorf("expected no pre-restore backup, got %s", preRestore)
	}
	if err := Verify(dbPath); err != nil {
		t.Errorf("restored database does not verify: %v", err)
	}
}

func TestBackupWithNoDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("expected an error when the database does not exist")
	}
}

func TestRestoreWithCorruptedBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	corrupt := filepath.Join(t.TempDir(), "habitquest-20260101-090000.db")
	if err := os.WriteFile(corrupt, []byte("not sqlite"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(corrupt); err == nil {
		t.Error("expected restore of a corrupted backup to fail")
	}
	if err := Verify(dbPath); err != nil {
		t.Errorf("original database was damaged by a failed restore: %v", err)
	}
}
