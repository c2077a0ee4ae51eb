// Package habits holds the commands that create, change and inspect habits.
package habits

type HabitCmd struct {
	Add       HabitAddCmd       `cmd:"" help:"Add a new habit."`
	List      HabitListCmd      `cmd:"" help:"List habits with today's tasks." default:"1"`
	Show      HabitShowCmd      `cmd:"" help:"Show one habit in detail."`
	Edit      HabitEditCmd      `cmd:"" help:"Rename a habit or replace its tasks."`
	Delete    HabitDeleteCmd    `cmd:"" help:"Delete a habit and its progress."`
	Prestige  HabitPrestigeCmd  `cmd:"" help:"Start the Prestige window of a Gold habit."`
	Templates HabitTemplatesCmd `cmd:"" help:"List the built-in habit templates."`
}
