package system

import (
	"fmt"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/validation"
)

type ValidateCmd struct {
	Fix bool `help:"Remove leftover records of deleted habits and closed days."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Store.LoadSnapshot()
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	ctx.Println("Validating progress...")
	result := validation.New().ValidateSnapshot(snap)
	ctx.Println()
	ctx.Println(result.FormatReport())

	if !cmd.Fix || len(result.Fixable()) == 0 {
		if cmd.Fix {
			ctx.Println("Nothing to fix automatically.")
		}
		return nil
	}

	fixed, actions := validation.AutoFix(snap, result)
	// the fixed state must still load before it replaces the stored one
	e, err := engine.FromSnapshot(fixed)
	if err != nil {
		return fmt.Errorf("fixed progress is invalid: %w", err)
	}
	ctx.PerformAutomaticBackup()
	if err := ctx.SaveEngine(e); err != nil {
		return err
	}

	for _, a := range actions {
		ctx.Printf("✓ %s\n", a.Action)
	}
	logger.Info("Progress repaired", "actions", len(actions))
	return nil
}
