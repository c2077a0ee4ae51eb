package progress

import (
	"fmt"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/utils"
)

type XPCmd struct {
	Log XPLogCmd `cmd:"" help:"Show recent XP awards." default:"1"`
}

type XPLogCmd struct {
	Limit  int    `short:"n" help:"Number of awards to show (0 for all)." default:"20"`
	Source string `help:"Only show awards from this source (task|habit_completion_bonus|daily_all_bonus)."`
}

func (c *XPLogCmd) Validate() error {
	switch models.XPSource(c.Source) {
	case "", models.XPSourceTask, models.XPSourceHabitBonus, models.XPSourceDailyBonus:
		return nil
	}
	return fmt.Errorf("unknown XP source %q", c.Source)
}

func (c *XPLogCmd) Run(ctx *cli.Context) error {
	e, err := ctx.LoadEngine()
	if err != nil {
		return err
	}

	names := make(map[string]string)
	for _, h := range e.Habits() {
		names[h.ID] = h.Name
	}

	log := e.XPLog()
	var shown []models.XPAward
	for i := len(log) - 1; i >= 0; i-- {
		if c.Source != "" && log[i].Source != models.XPSource(c.Source) {
			continue
		}
		shown = append(shown, log[i])
		if c.Limit > 0 && len(shown) == c.Limit {
			break
		}
	}

	if len(shown) == 0 {
		ctx.Println("No XP earned yet.")
		return nil
	}
	for _, a := range shown {
		habit := names[a.HabitID]
		if a.HabitID != "" && habit == "" {
			habit = "(deleted habit)"
		}
		ctx.Printf("%s  %+5d  %-22s %s\n", utils.DayDate(a.Day), a.Amount, a.Source, habit)
	}
	ctx.Printf("\nTotal: %d XP (level %d)\n", e.XPTotal(), e.Summary().Level)
	return nil
}
