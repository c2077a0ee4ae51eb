package settings

import (
	"fmt"

	"github.com/julianstephens/habitquest/internal/cli"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone     *string `help:"IANA timezone used to compute the current day (e.g. America/New_York, or Local)."`
	RolloverHour *int    `help:"Hour (0-23) at which a new day starts."`
}

func (c *SettingsCmd) Validate() error {
	if c.Timezone != nil && !utils.ValidateTimezone(*c.Timezone) {
		return apperrors.Validation("invalid timezone %q", *c.Timezone)
	}
	if c.RolloverHour != nil && !utils.ValidateRolloverHour(*c.RolloverHour) {
		return apperrors.Validation("rollover hour must be between 0 and 23, got %d", *c.RolloverHour)
	}
	return nil
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.RolloverHour != nil {
		settings.RolloverHour = *c.RolloverHour
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		logger.Info("Settings updated", "timezone", settings.Timezone, "rollover_hour", settings.RolloverHour)
		ctx.Println("Settings updated successfully.")
		c.printOverrides(ctx)
		return nil
	}

	if !c.List {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	ctx.Println("Current Settings:")
	ctx.Printf("  Timezone:      %s\n", settings.Timezone)
	ctx.Printf("  Rollover Hour: %02d:00\n", settings.RolloverHour)
	c.printOverrides(ctx)
	return nil
}

func (c *SettingsCmd) printOverrides(ctx *cli.Context) {
	day := ctx.Config.Day
	if day.Timezone == "" && day.RolloverHour == nil {
		return
	}
	ctx.Println("\nOverridden by config.toml:")
	if day.Timezone != "" {
		ctx.Printf("  Timezone:      %s\n", day.Timezone)
	}
	if day.RolloverHour != nil {
		ctx.Printf("  Rollover Hour: %02d:00\n", *day.RolloverHour)
	}
}
