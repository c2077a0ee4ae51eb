package habits

import (
	"encoding/json"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/models"
)

type HabitListCmd struct {
	JSON bool `help:"Print habits as JSON."`
}

// habitView is the JSON shape of a habit with its progress
type habitView struct {
	models.Habit
	Streak  int                 `json:"streak"`
	Mastery models.MasteryState `json:"mastery"`
}

func viewOf(e *engine.Engine, h models.Habit) habitView {
	return habitView{Habit: h, Streak: e.Streak(h.ID), Mastery: e.Mastery(h.ID)}
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.CatchUp(); err != nil {
		return err
	}
	e, err := ctx.LoadEngine()
	if err != nil {
		return err
	}

	habits := e.Habits()
	if c.JSON {
		views := make([]habitView, 0, len(habits))
		for _, h := range habits {
			views = append(views, viewOf(e, h))
		}
		enc := json.NewEncoder(ctx.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	if len(habits) == 0 {
		ctx.Println("No habits yet. Add one with 'habitquest habit add' or pick a template from 'habitquest habit templates'.")
		return nil
	}
	for _, h := range habits {
		ctx.Printf("%s\n", cli.RenderHabit(h, e.Streak(h.ID), e.Mastery(h.ID)))
	}
	slots := e.Slots()
	ctx.Printf("%d of %d habit slots used\n", slots.Used, slots.Available)
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit id, id prefix, or name."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	e, err := ctx.LoadEngine()
	if err != nil {
		return err
	}
	h, err := cli.FindHabit(e, c.Habit)
	if err != nil {
		return err
	}

	m := e.Mastery(h.ID)
	ctx.Print(cli.RenderHabit(h, e.Streak(h.ID), m))
	ctx.Printf("  Source:   %s\n", h.Source)
	ctx.Printf("  Tags:     %s / %s\n", h.Icon, h.Color)
	ctx.Printf("  Created:  %s\n", h.CreatedAt.Local().Format("2006-01-02 15:04"))
	ctx.Printf("  Mastery:  %s\n", m.Tier.Label())
	if m.GoldCompletedAt != nil {
		ctx.Printf("  Gold:     %s\n", m.GoldCompletedAt.Local().Format("2006-01-02"))
	}
	if m.PrestigeCompletedAt != nil {
		ctx.Printf("  Prestige: %s\n", m.PrestigeCompletedAt.Local().Format("2006-01-02"))
	}
	return nil
}
