// Package progress holds the commands that complete tasks, close days and
// report XP.
package progress

import (
	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/utils"
)

type TaskCmd struct {
	Toggle TaskToggleCmd `cmd:"" help:"Check or uncheck a task." default:"withargs"`
}

type TaskToggleCmd struct {
	Habit string `arg:"" help:"Habit id, id prefix, or name."`
	Task  string `arg:"" help:"Task number (1-5), id, or id prefix."`
	Date  string `help:"Day to record it on (YYYY-MM-DD). Defaults to today."`
}

func (c *TaskToggleCmd) Run(ctx *cli.Context) error {
	var day int
	if c.Date != "" {
		d, err := utils.ParseDayIndex(c.Date)
		if err != nil {
			return err
		}
		day = d
	} else {
		today, err := ctx.Today()
		if err != nil {
			return err
		}
		day = today
	}

	var task models.Task
	var habit models.Habit
	events, err := ctx.Mutate(func(e *engine.Engine) ([]models.RewardEvent, error) {
		h, err := cli.FindHabit(e, c.Habit)
		if err != nil {
			return nil, err
		}
		t, err := cli.FindTask(h, c.Task)
		if err != nil {
			return nil, err
		}
		if c.Date == "" {
			day = cli.ActiveDay(e, day)
		}
		events, err := e.CompleteTask(h.ID, t.ID, day)
		if err != nil {
			return nil, err
		}
		habit, _ = e.Habit(h.ID)
		task = habit.Tasks[habit.TaskIndex(t.ID)]
		return events, nil
	})
	if err != nil {
		return err
	}

	logger.Info("Task toggled", "habit_id", habit.ID, "task_id", task.ID, "completed", task.Completed, "day", day, "events", len(events))
	if task.Completed {
		if len(events) == 0 {
			ctx.Printf("✓ %s (already rewarded today)\n", task.Text)
		}
	} else {
		ctx.Printf("○ %s unchecked; XP already earned is kept\n", task.Text)
	}
	ctx.Printf("%s: %d/%d tasks done\n", habit.Name, habit.CompletedCount(), len(habit.Tasks))
	return nil
}
