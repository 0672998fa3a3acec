package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habithero/internal/stats"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	dash, err := ctx.Habits.Dashboard(owner)
	if err != nil {
		return err
	}

	ov := dash.Overview
	fmt.Printf("Stats for %s (%s)\n\n", owner, ctx.Habits.Today())
	fmt.Printf("  Habits:             %d\n", ov.Habits)
	fmt.Printf("  Completed today:    %d/%d\n", ov.CompletedToday, ov.Habits)
	fmt.Printf("  Total completions:  %d\n", ov.TotalCompletions)
	fmt.Printf("  Longest streak:     %d day(s)\n", ov.LongestStreak)
	fmt.Printf("  Total XP:           %d\n", ov.TotalXP)

	if len(dash.Habits) > 0 {
		fmt.Println()
		printHabitTable(dash.Habits)
	}

	if hasTargets(dash.Goals) {
		fmt.Println()
		printGoals(dash.Goals)
	}
	return nil
}

type GoalsCmd struct {
	Show GoalsShowCmd `cmd:"" help:"Show progress toward XP targets." default:"1"`
	Set  GoalsSetCmd  `cmd:"" help:"Set weekly, monthly or yearly XP targets."`
}

type GoalsShowCmd struct{}

func (c *GoalsShowCmd) Run(ctx *Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	goals, err := ctx.Habits.Goals(owner)
	if err != nil {
		return err
	}

	if !hasTargets(goals) {
		fmt.Println("No XP targets set.")
		fmt.Println("Set one with 'habithero goals set --weekly 100'.")
		return nil
	}
	printGoals(goals)
	return nil
}

// GoalsSetCmd updates only the targets that are passed; -1 keeps the
// current value and 0 clears it.
type GoalsSetCmd struct {
	Weekly  int `help:"Weekly XP target." default:"-1"`
	Monthly int `help:"Monthly XP target." default:"-1"`
	Yearly  int `help:"Yearly XP target." default:"-1"`
}

func (c *GoalsSetCmd) Run(ctx *Context) error {
	if c.Weekly < 0 && c.Monthly < 0 && c.Yearly < 0 {
		return fmt.Errorf("nothing to change: pass --weekly, --monthly or --yearly")
	}

	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	targets, err := ctx.Habits.Targets(owner)
	if err != nil {
		return err
	}
	if c.Weekly >= 0 {
		targets.Weekly = c.Weekly
	}
	if c.Monthly >= 0 {
		targets.Monthly = c.Monthly
	}
	if c.Yearly >= 0 {
		targets.Yearly = c.Yearly
	}

	if err := ctx.Habits.SetTargets(owner, targets); err != nil {
		return err
	}

	fmt.Printf("✓ XP targets saved: weekly %d, monthly %d, yearly %d\n", targets.Weekly, targets.Monthly, targets.Yearly)
	return nil
}

func hasTargets(goals []stats.Goal) bool {
	for _, g := range goals {
		if g.Target > 0 {
			return true
		}
	}
	return false
}

func printGoals(goals []stats.Goal) {
	fmt.Println("XP goals:")
	for _, g := range goals {
		if g.Target <= 0 {
			fmt.Printf("  %-8s  not set\n", g.Period)
			continue
		}
		fmt.Printf("  %-8s  %s %3d%%  (%d/%d XP)\n", g.Period, ProgressBar(g.Percent, 20), g.Percent, g.Earned, g.Target)
	}
}

// ProgressBar draws percent (clamped to 0..100) as a bar width cells wide.
func ProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
