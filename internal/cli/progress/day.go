package progress

import (
	"fmt"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/utils"
)

type DayCmd struct {
	Close DayCloseCmd `cmd:"" help:"Close the open day and start the next one."`
}

type DayCloseCmd struct {
	Yes bool `short:"y" help:"Do not ask when habits are unfinished."`
}

func (c *DayCloseCmd) Run(ctx *cli.Context) error {
	e, err := ctx.LoadEngine()
	if err != nil {
		return err
	}
	day, started := e.Day()
	if !started {
		ctx.Println("No day in progress yet. Complete a task to start one.")
		return nil
	}

	var unfinished []string
	for _, h := range e.Habits() {
		if h.IsActive() && h.CompletedCount() < len(h.Tasks) {
			unfinished = append(unfinished, h.Name)
		}
	}
	if len(unfinished) > 0 && !c.Yes {
		prompt := fmt.Sprintf("%d habit(s) unfinished (%v) will lose their streak. Close %s?", len(unfinished), unfinished, utils.DayDate(day))
		ok, err := ctx.Confirm(prompt)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Day left open.")
			return nil
		}
	}

	if _, err := ctx.Mutate(func(e *engine.Engine) ([]models.RewardEvent, error) {
		return e.ResetDay(day + 1)
	}); err != nil {
		return err
	}
	ctx.Printf("Closed %s. Tasks for %s are ready.\n", utils.DayDate(day), utils.DayDate(day+1))
	return nil
}
