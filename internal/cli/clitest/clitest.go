// Package clitest builds command contexts over a temporary SQLite store.
package clitest

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/config"
	"github.com/julianstephens/habitquest/internal/storage/sqlite"
)

// Day0 is the day index of Start in UTC
const Day0 = 20454

// Start is the default time of test contexts, 2026-01-01 10:00 UTC
var Start = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

// Clock is a settable time source
type Clock struct{ T time.Time }

func (c *Clock) Now() time.Time { return c.T }

// AddDays moves the clock forward by n days
func (c *Clock) AddDays(n int) { c.T = c.T.AddDate(0, 0, n) }

// Env is a context with its output buffer and clock
type Env struct {
	Ctx    *cli.Context
	Out    *bytes.Buffer
	Clock  *Clock
	DBPath string
}

// New returns an initialized store wrapped in a context. Days use UTC.
func New(t *testing.T) *Env {
	t.Helper()
	env := NewUninitialized(t)
	if err := env.Ctx.Store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return env
}

// NewUninitialized is New without running Init
func NewUninitialized(t *testing.T) *Env {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "habitquest.db")

	cfg := config.DefaultConfig()
	cfg.Storage.Path = dbPath
	cfg.Day.Timezone = "UTC"

	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() { store.Close() })

	out := &bytes.Buffer{}
	clock := &Clock{T: Start}
	return &Env{
		Ctx: &cli.Context{
			Store:     store,
			Config:    cfg,
			ConfigDir: dir,
			Out:       out,
			In:        strings.NewReader(""),
			Now:       clock.Now,
		},
		Out:    out,
		Clock:  clock,
		DBPath: dbPath,
	}
}

// Answer makes the next confirmation prompt read s
func (e *Env) Answer(s string) {
	e.Ctx.In = strings.NewReader(s + "\n")
}
