// Package cli holds the state shared by every command and the helpers that
// load, mutate and save the engine around a single command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitquest/internal/backup"
	"github.com/julianstephens/habitquest/internal/config"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/notifier"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/utils"
)

// Publisher receives the reward events of a finished command
type Publisher interface {
	Notify(ctx context.Context, events []models.RewardEvent) error
}

// Context is passed to every command's Run method
type Context struct {
	Store     storage.Provider
	Config    config.Config
	ConfigDir string
	Publisher Publisher

	Out io.Writer
	In  io.Reader
	Now func() time.Time
}

// NewContext wires a context for the real terminal
func NewContext(store storage.Provider, cfg config.Config, configDir string) *Context {
	return &Context{
		Store:     store,
		Config:    cfg,
		ConfigDir: configDir,
		Publisher: notifier.New(configDir),
		Out:       os.Stdout,
		In:        os.Stdin,
		Now:       time.Now,
	}
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) in() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

func (c *Context) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Writer is the command output
func (c *Context) Writer() io.Writer {
	return c.out()
}

// Print writes to the command output
func (c *Context) Print(args ...interface{}) {
	fmt.Fprint(c.out(), args...)
}

// CurrentTime reads the context clock
func (c *Context) CurrentTime() time.Time {
	return c.now()
}

// Printf writes to the command output
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

// Println writes a line to the command output
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Settings returns the stored settings with config.toml overrides applied
func (c *Context) Settings() (models.Settings, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	if c.Config.Day.Timezone != "" {
		settings.Timezone = c.Config.Day.Timezone
	}
	if c.Config.Day.RolloverHour != nil {
		settings.RolloverHour = *c.Config.Day.RolloverHour
	}
	return settings, nil
}

// Today returns the day index of the current moment
func (c *Context) Today() (int, error) {
	settings, err := c.Settings()
	if err != nil {
		return 0, err
	}
	return utils.TodayIndex(settings, c.now())
}

// ActiveDay is the day a mutation applies to: today, or the open day when
// the user already closed today by hand
func ActiveDay(e *engine.Engine, today int) int {
	if day, started := e.Day(); started && day > today {
		return day
	}
	return today
}

// ResolveDay returns the day index for a YYYY-MM-DD date, or today when empty
func (c *Context) ResolveDay(date string) (int, error) {
	if date == "" {
		return c.Today()
	}
	return utils.ParseDayIndex(date)
}

// LoadEngine rebuilds the engine from the stored snapshot
func (c *Context) LoadEngine() (*engine.Engine, error) {
	snap, err := c.Store.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	e, err := engine.FromSnapshot(snap, engine.WithClock(c.now))
	if err != nil {
		return nil, fmt.Errorf("stored progress is invalid: %w", err)
	}
	return e, nil
}

// SaveEngine persists the engine state
func (c *Context) SaveEngine(e *engine.Engine) error {
	if err := c.Store.SaveSnapshot(e.Snapshot()); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// Mutate loads the engine, applies fn, saves the result and publishes the
// events fn produced. Nothing is saved when fn fails.
func (c *Context) Mutate(fn func(e *engine.Engine) ([]models.RewardEvent, error)) ([]models.RewardEvent, error) {
	e, err := c.LoadEngine()
	if err != nil {
		return nil, err
	}
	events, err := fn(e)
	if err != nil {
		return nil, err
	}
	if err := c.SaveEngine(e); err != nil {
		return nil, err
	}
	c.Publish(events)
	return events, nil
}

// CatchUp closes the days that ended since progress was last saved. A stored
// day later than today, after a timezone change, is left alone.
func (c *Context) CatchUp() ([]models.RewardEvent, error) {
	today, err := c.Today()
	if err != nil {
		return nil, err
	}
	e, err := c.LoadEngine()
	if err != nil {
		return nil, err
	}
	day, started := e.Day()
	if !started || today <= day {
		return nil, nil
	}
	events, err := e.ResetDay(today)
	if err != nil {
		return nil, err
	}
	if err := c.SaveEngine(e); err != nil {
		return nil, err
	}
	logger.Debug("Closed elapsed days", "from", day, "to", today)
	c.Publish(events)
	return events, nil
}

// Publish prints the events and forwards them to a running server
func (c *Context) Publish(events []models.RewardEvent) {
	if len(events) == 0 {
		return
	}
	fmt.Fprint(c.out(), RenderEvents(events))

	if c.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), constants.NotifyTimeout)
	defer cancel()
	if err := c.Publisher.Notify(ctx, events); err != nil && !errors.Is(err, notifier.ErrServerNotRunning) {
		logger.Debug("Failed to forward reward events", "error", err)
	}
}

// Confirm asks a yes/no question on the command input
func (c *Context) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(c.out(), "%s [y/N]: ", prompt)
	response, err := bufio.NewReader(c.in()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// IsSQLite reports whether the store is a local database file
func (c *Context) IsSQLite() bool {
	return !IsPostgresPath(c.Config.Storage.Path)
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
