package cli

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/julianstephens/habithero/internal/datekey"
	"github.com/julianstephens/habithero/internal/ledger"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/stats"
	"github.com/julianstephens/habithero/internal/utils"
)

type HabitCmd struct {
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	List     HabitListCmd     `cmd:"" help:"List habits with streaks and XP."`
	Done     HabitDoneCmd     `cmd:"" help:"Mark a habit as completed today."`
	Edit     HabitEditCmd     `cmd:"" help:"Edit a habit's title, icon or XP reward."`
	Delete   HabitDeleteCmd   `cmd:"" help:"Delete a habit and its history."`
	Calendar HabitCalendarCmd `cmd:"" help:"Show a habit's completion calendar."`
}

type HabitAddCmd struct {
	Title string `arg:"" help:"Habit title."`
	Icon  string `help:"Emoji shown next to the habit." default:""`
	XP    string `name:"xp" help:"XP earned per completion (0 or empty means 5)." default:""`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	habit, err := ctx.Habits.Add(owner, models.HabitInput{
		Title:    c.Title,
		Icon:     c.Icon,
		XPReward: c.XP,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (+%d XP per completion)\n", displayTitle(habit.Icon, habit.Title), habit.XPReward)
	fmt.Printf("ID: %s\n", habit.ID)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	dash, err := ctx.Habits.Dashboard(owner)
	if err != nil {
		return err
	}

	if len(dash.Habits) == 0 {
		fmt.Println("No habits found.")
		fmt.Println("Add one with 'habithero habit add <title>'.")
		return nil
	}

	printHabitTable(dash.Habits)
	return nil
}

const titleWidth = 24

func printHabitTable(summaries []stats.HabitSummary) {
	fmt.Printf("   %-8s  %-*s  %7s  %7s  %6s\n", "ID", titleWidth, "Habit", "Streak", "Longest", "XP")
	fmt.Println(strings.Repeat("-", 3+8+2+titleWidth+2+7+2+7+2+6))
	for _, s := range summaries {
		mark := "○"
		if s.CompletedToday {
			mark = "✓"
		}
		fmt.Printf(" %s %-8s  %s  %7d  %7d  %6d\n",
			mark, shortID(s.ID), padTitle(displayTitle(s.Icon, s.Title), titleWidth),
			s.CurrentStreak, s.LongestStreak, s.TotalXP)
	}
}

type HabitDoneCmd struct {
	Habit string `arg:"" help:"Habit ID, ID prefix or title."`
}

func (c *HabitDoneCmd) Run(ctx *Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	habit, err := ctx.Habits.Resolve(owner, c.Habit)
	if err != nil {
		return err
	}

	res, err := ctx.Habits.CompleteToday(owner, habit.ID)
	if err != nil {
		return err
	}

	title := displayTitle(res.Habit.Icon, res.Habit.Title)
	if !res.Added {
		fmt.Printf("%s is already completed for %s.\n", title, res.Day)
	} else {
		fmt.Printf("✓ Completed %s for %s (+%d XP)\n", title, res.Day, res.Habit.XPReward)
	}
	fmt.Printf("Current streak: %d day(s), longest: %d, total XP: %d\n",
		res.Habit.CurrentStreak, res.Habit.LongestStreak, res.Habit.TotalXP)
	return nil
}

type HabitEditCmd struct {
	Habit     string `arg:"" help:"Habit ID, ID prefix or title."`
	Title     string `help:"New title." default:""`
	Icon      string `help:"New icon." default:""`
	ClearIcon bool   `help:"Remove the icon."`
	XP        int    `name:"xp" help:"New XP reward per completion." default:"0"`
}

func (c *HabitEditCmd) patch() models.HabitPatch {
	var patch models.HabitPatch
	if c.Title != "" {
		patch.Title = &c.Title
	}
	if c.ClearIcon {
		empty := ""
		patch.Icon = &empty
	} else if c.Icon != "" {
		patch.Icon = &c.Icon
	}
	if c.XP != 0 {
		patch.XPReward = &c.XP
	}
	return patch
}

func (c *HabitEditCmd) Run(ctx *Context) error {
	patch := c.patch()
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to change: pass --title, --icon, --clear-icon or --xp")
	}

	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	habit, err := ctx.Habits.Resolve(owner, c.Habit)
	if err != nil {
		return err
	}

	updated, err := ctx.Habits.Edit(owner, habit.ID, patch)
	if err != nil {
		return err
	}

	fmt.Printf("Updated habit: %s (+%d XP per completion)\n", displayTitle(updated.Icon, updated.Title), updated.XPReward)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID, ID prefix or title."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	habit, err := ctx.Habits.Resolve(owner, c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		prompt := fmt.Sprintf("Delete %s and its %d completion(s)?", displayTitle(habit.Icon, habit.Title), habit.Completions.Count())
		ok, err := ctx.Confirm(prompt)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Habits.Delete(owner, habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", habit.Title)
	return nil
}

type HabitCalendarCmd struct {
	Habit string `arg:"" help:"Habit ID, ID prefix or title."`
	End   string `help:"Last day shown, e.g. 2024-03-01, yesterday or 'last friday' (default: today)." default:""`
	Days  int    `help:"Number of days to show (default: calendar_days from config)." default:"0"`
}

func (c *HabitCalendarCmd) Run(ctx *Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	days := c.Days
	if days == 0 && ctx.Config != nil {
		days = ctx.Config.CalendarDays
	}

	end, err := utils.ParseDay(c.End, ctx.Habits.Now())
	if err != nil {
		return err
	}

	habit, err := ctx.Habits.Resolve(owner, c.Habit)
	if err != nil {
		return err
	}

	habit, window, err := ctx.Habits.Calendar(owner, habit.ID, end, days)
	if err != nil {
		return err
	}

	summary := stats.Summarize(habit, ctx.Habits.Now())
	fmt.Printf("%s: %s to %s\n\n", displayTitle(habit.Icon, habit.Title), window[0].Key, window[len(window)-1].Key)
	fmt.Print(RenderCalendar(window))
	fmt.Printf("\n%d of %d day(s) completed. Current streak: %d, longest: %d\n",
		countDone(window), len(window), summary.CurrentStreak, summary.LongestStreak)
	return nil
}

// RenderCalendar lays out window as week rows starting on Monday. Days
// outside the window are blank, completed days are ■ and missed days □.
func RenderCalendar(window []ledger.Day) string {
	if len(window) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("           Mo Tu We Th Fr Sa Su\n")

	lead := mondayOffset(window[0].Key)
	weekStart := datekey.AddDays(window[0].Key, -lead)
	b.WriteString(weekStart.String())
	b.WriteString(strings.Repeat("   ", lead))

	for i, d := range window {
		if i > 0 && mondayOffset(d.Key) == 0 {
			b.WriteString("\n")
			b.WriteString(d.Key.String())
		}
		if d.Done {
			b.WriteString("  ■")
		} else {
			b.WriteString("  □")
		}
	}
	b.WriteString("\n")
	return b.String()
}

func mondayOffset(k datekey.Key) int {
	return (int(k.Weekday()) + 6) % 7
}

func countDone(window []ledger.Day) int {
	n := 0
	for _, d := range window {
		if d.Done {
			n++
		}
	}
	return n
}

func displayTitle(icon, title string) string {
	if icon == "" {
		return title
	}
	return icon + " " + title
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// padTitle truncates or pads s to width terminal cells.
func padTitle(s string, width int) string {
	w := uniseg.StringWidth(s)
	if w <= width {
		return s + strings.Repeat(" ", width-w)
	}

	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := g.Width()
		if used+cw > width-3 {
			break
		}
		b.WriteString(g.Str())
		used += cw
	}
	b.WriteString("...")
	return b.String() + strings.Repeat(" ", width-used-3)
}
