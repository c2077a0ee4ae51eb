package habits

import (
	"errors"
	"strings"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/templates"
)

type HabitAddCmd struct {
	Name     string   `arg:"" optional:"" help:"Habit name (taken from the template when --template is set)."`
	Template string   `short:"T" help:"Create the habit from a built-in template."`
	Icon     string   `help:"Icon tag." default:"target"`
	Color    string   `help:"Color tag." default:"blue"`
	Task     []string `short:"t" help:"Task as 'text|xp'. Repeat for up to 5 tasks."`
}

func (c *HabitAddCmd) Validate() error {
	if c.Template == "" && strings.TrimSpace(c.Name) == "" {
		return errors.New("a habit name or --template is required")
	}
	if c.Template == "" && len(c.Task) == 0 {
		return errors.New("at least one --task is required")
	}
	return nil
}

func (c *HabitAddCmd) definition() (models.HabitDefinition, error) {
	if c.Template != "" {
		def, err := templates.Get(c.Template)
		if err != nil {
			return models.HabitDefinition{}, err
		}
		if strings.TrimSpace(c.Name) != "" {
			def.Name = c.Name
		}
		return def, nil
	}

	tasks, err := cli.ParseTaskSpecs(c.Task, constants.MinHabitTasks)
	if err != nil {
		return models.HabitDefinition{}, err
	}
	return models.HabitDefinition{
		Name:   c.Name,
		Icon:   models.Icon(c.Icon),
		Color:  models.Color(c.Color),
		Source: models.SourceManual,
		Tasks:  tasks,
	}, nil
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	def, err := c.definition()
	if err != nil {
		return err
	}
	today, err := ctx.Today()
	if err != nil {
		return err
	}

	var created models.Habit
	_, err = ctx.Mutate(func(e *engine.Engine) ([]models.RewardEvent, error) {
		// close elapsed days first so the habit starts on the open day
		events, err := e.ResetDay(cli.ActiveDay(e, today))
		if err != nil {
			return nil, err
		}
		created, err = e.CreateHabit(def)
		return events, err
	})
	if err != nil {
		return err
	}

	logger.Info("Habit created", "habit_id", created.ID, "name", created.Name, "source", created.Source)
	ctx.Printf("Added habit: %s (%d tasks, %d XP when complete)\n", created.Name, len(created.Tasks), created.TotalXP()+constants.HabitCompletionBonusXP)
	ctx.Printf("  id: %s\n", created.ID)
	return nil
}
