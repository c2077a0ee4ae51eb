package system

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	// the alt screen owns the terminal, events go to the status line
	quiet := *ctx
	quiet.Out = io.Discard
	if _, err := quiet.CatchUp(); err != nil {
		return err
	}

	var watcher *tui.Watcher
	if ctx.IsSQLite() {
		w, err := tui.NewWatcher(ctx.Store.GetConfigPath())
		if err != nil {
			logger.Warn("Live reload disabled", "error", err)
		} else {
			watcher = w
			defer watcher.Close()
		}
	}

	p := tea.NewProgram(tui.NewModel(&quiet, watcher), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
