package habits

import (
	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/templates"
)

type HabitTemplatesCmd struct{}

func (c *HabitTemplatesCmd) Run(ctx *cli.Context) error {
	for _, def := range templates.All() {
		total := constants.HabitCompletionBonusXP
		for _, t := range def.Tasks {
			total += t.XPValue
		}
		ctx.Printf("%s (%s, %s) · %d XP per day\n", def.Name, def.Icon, def.Color, total)
		for _, t := range def.Tasks {
			ctx.Printf("  - %s +%d\n", t.Text, t.XPValue)
		}
	}
	ctx.Println("\nUse one with: habitquest habit add --template NAME")
	return nil
}
