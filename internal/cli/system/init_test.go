package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitquest/internal/cli/clitest"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage/sqlite"
	"github.com/julianstephens/habitquest/internal/templates"
)

func TestInitCmd_Success(t *testing.T) {
	env := clitest.NewUninitialized(t)

	cmd := &InitCmd{}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	if _, err := os.Stat(env.DBPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", env.DBPath)
	}
	if !strings.Contains(env.Out.String(), "Initialized habitquest storage") {
		t.Errorf("unexpected output: %q", env.Out.String())
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	env := clitest.NewUninitialized(t)

	cmd := &InitCmd{}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	env := clitest.New(t)

	settings, err := env.Ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get initial settings: %v", err)
	}
	settings.RolloverHour = 5
	if err := env.Ctx.Store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save modified settings: %v", err)
	}

	forceCmd := &InitCmd{Force: true}
	if err := forceCmd.Run(env.Ctx); err != nil {
		t.Fatalf("init with force failed: %v", err)
	}

	fresh, err := env.Ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings after force: %v", err)
	}
	if fresh.RolloverHour != 0 {
		t.Errorf("expected default rollover hour 0, got %d", fresh.RolloverHour)
	}
}

func TestInitCmd_ForceWithNonExistentDatabase(t *testing.T) {
	env := clitest.NewUninitialized(t)

	forceCmd := &InitCmd{Force: true}
	if err := forceCmd.Run(env.Ctx); err != nil {
		t.Fatalf("init with force on non-existent database failed: %v", err)
	}
	if _, err := os.Stat(env.DBPath); os.IsNotExist(err) {
		t.Errorf("database file was not created")
	}
}

func TestInitCmd_ForceRejectsSameSource(t *testing.T) {
	env := clitest.New(t)

	cmd := &InitCmd{Force: true, Source: env.DBPath}
	if err := cmd.Run(env.Ctx); err == nil {
		t.Fatal("expected error when source and destination are the same")
	}
}

func TestInitCmd_CopiesProgressFromSource(t *testing.T) {
	sourcePath := filepath.Join(t.TempDir(), "source.db")
	source := sqlite.NewStore(sourcePath)
	if err := source.Init(); err != nil {
		t.Fatalf("failed to init source: %v", err)
	}

	e := engine.New(engine.WithClock(func() time.Time { return clitest.Start }))
	def, _ := templates.Get("Meditation")
	h, err := e.CreateHabit(def)
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	if _, err := e.CompleteTask(h.ID, h.Tasks[0].ID, clitest.Day0); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if err := source.SaveSnapshot(e.Snapshot()); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	source.Close()

	env := clitest.NewUninitialized(t)
	cmd := &InitCmd{Source: sourcePath}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	snap, err := env.Ctx.Store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snap.Habits) != 1 || snap.Habits[0].Name != "Meditation" {
		t.Fatalf("habits not copied: %+v", snap.Habits)
	}
	if len(snap.XPLog) != 1 || snap.XPLog[0].Source != models.XPSourceTask {
		t.Errorf("xp log not copied: %+v", snap.XPLog)
	}
}
