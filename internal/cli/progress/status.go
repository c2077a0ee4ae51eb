package progress

import (
	"github.com/julianstephens/habitquest/internal/cli"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.CatchUp(); err != nil {
		return err
	}
	e, err := ctx.LoadEngine()
	if err != nil {
		return err
	}

	ctx.Print(cli.RenderSummary(e.Summary()))
	habits := e.Habits()
	if len(habits) == 0 {
		return nil
	}
	ctx.Println()
	for _, h := range habits {
		if !h.IsActive() {
			continue
		}
		ctx.Printf("  %s %-20s %s %d/%d  streak %d\n",
			cli.TierIcon(e.Mastery(h.ID).Tier), h.Name,
			cli.ProgressBar(h.CompletedCount(), len(h.Tasks), 10),
			h.CompletedCount(), len(h.Tasks), e.Streak(h.ID))
	}
	return nil
}
