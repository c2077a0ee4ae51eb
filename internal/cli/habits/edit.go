package habits

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
)

type HabitEditCmd struct {
	Habit      string   `arg:"" help:"Habit id, id prefix, or name."`
	Name       string   `help:"New name."`
	Icon       string   `help:"New icon tag."`
	Color      string   `help:"New color tag."`
	Task       []string `short:"t" help:"Replacement task as 'text|xp'. Repeat for each task; replaces the whole list."`
	ClearTasks bool     `help:"Remove every task, making the habit inactive."`
	Confirm    bool     `help:"Reset streak and mastery progress without asking."`
}

func (c *HabitEditCmd) Validate() error {
	if c.ClearTasks && len(c.Task) > 0 {
		return errors.New("--clear-tasks cannot be combined with --task")
	}
	if c.Name == "" && c.Icon == "" && c.Color == "" && len(c.Task) == 0 && !c.ClearTasks {
		return errors.New("nothing to change: pass --name, --icon, --color, --task or --clear-tasks")
	}
	return nil
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	var tasks []models.TaskDefinition
	if len(c.Task) > 0 {
		parsed, err := cli.ParseTaskSpecs(c.Task, constants.MinHabitTasks)
		if err != nil {
			return err
		}
		tasks = parsed
	}
	editTasks := len(tasks) > 0 || c.ClearTasks

	if c.Name != "" || c.Icon != "" || c.Color != "" {
		var updated models.Habit
		_, err := ctx.Mutate(func(e *engine.Engine) ([]models.RewardEvent, error) {
			h, err := cli.FindHabit(e, c.Habit)
			if err != nil {
				return nil, err
			}
			name, icon, color := h.Name, h.Icon, h.Color
			if c.Name != "" {
				name = c.Name
			}
			if c.Icon != "" {
				icon = models.Icon(c.Icon)
			}
			if c.Color != "" {
				color = models.Color(c.Color)
			}
			updated, err = e.UpdateHabitDetails(h.ID, name, icon, color)
			return nil, err
		})
		if err != nil {
			return err
		}
		ctx.Printf("Updated %s\n", updated.Name)
		c.Habit = updated.ID
	}

	if !editTasks {
		return nil
	}

	edit := func(confirmed bool) (models.Habit, error) {
		var h models.Habit
		_, err := ctx.Mutate(func(e *engine.Engine) ([]models.RewardEvent, error) {
			found, err := cli.FindHabit(e, c.Habit)
			if err != nil {
				return nil, err
			}
			h, err = e.EditHabitTasks(found.ID, tasks, confirmed)
			return nil, err
		})
		return h, err
	}

	h, err := edit(c.Confirm)
	if errors.Is(err, apperrors.ErrConfirmationRequired) {
		ctx.Printf("⚠️  %v\n", err)
		ok, promptErr := ctx.Confirm("Replace the tasks anyway?")
		if promptErr != nil {
			return promptErr
		}
		if !ok {
			ctx.Println("Edit cancelled.")
			return nil
		}
		h, err = edit(true)
	}
	if err != nil {
		return err
	}

	if !h.IsActive() {
		ctx.Printf("%s has no tasks and is now inactive; it no longer uses a slot.\n", h.Name)
		return nil
	}
	ctx.Printf("Replaced the tasks of %s (%d tasks)\n", h.Name, len(h.Tasks))
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id, id prefix, or name."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	e, err := ctx.LoadEngine()
	if err != nil {
		return err
	}
	h, err := cli.FindHabit(e, c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		prompt := fmt.Sprintf("Delete %s? Its %d-day streak and %s progress are lost.", h.Name, e.Streak(h.ID), e.Mastery(h.ID).Tier.Label())
		ok, err := ctx.Confirm(prompt)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	if _, err := ctx.Mutate(func(e *engine.Engine) ([]models.RewardEvent, error) {
		return e.DeleteHabit(h.ID)
	}); err != nil {
		return err
	}
	ctx.Printf("Deleted %s\n", h.Name)
	return nil
}

type HabitPrestigeCmd struct {
	Habit string `arg:"" help:"Habit id, id prefix, or name."`
}

func (c *HabitPrestigeCmd) Run(ctx *cli.Context) error {
	_, err := ctx.Mutate(func(e *engine.Engine) ([]models.RewardEvent, error) {
		h, err := cli.FindHabit(e, c.Habit)
		if err != nil {
			return nil, err
		}
		return e.PushToPrestige(h.ID)
	})
	return err
}
