package habits

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/period"
	"github.com/julianstephens/habithero/internal/registry"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits with their streaks." default:"1"`
	Show    HabitShowCmd    `cmd:"" help:"Show one habit's analytics and recent check-ins."`
	Log     HabitLogCmd     `cmd:"" help:"Show habit log (ASCII history)."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit and its check-ins."`
	Suggest HabitSuggestCmd `cmd:"" help:"Suggest habits to start."`
}

type HabitAddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name."`
	Category    string `short:"c" help:"Category: health, fitness, work, learning, mental_health, productivity." default:"health"`
	Frequency   string `short:"f" help:"Frequency: daily or weekly." default:"daily" enum:"daily,weekly"`
	Start       string `help:"Start date in YYYY-MM-DD format (default: today)."`
	Interactive bool   `short:"i" help:"Fill in the habit with an interactive form."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if c.Interactive {
		if err := c.form().Run(); err != nil {
			return err
		}
	}

	habit, err := ctx.Registry.Create(c.Name, models.Category(c.Category), models.Frequency(c.Frequency), c.Start)
	if err != nil {
		return err
	}
	ctx.Printf("Added habit: %s (%s, %s, starting %s)\n", habit.Name, habit.Category, habit.Frequency, habit.StartDate)
	return nil
}

func (c *HabitAddCmd) form() *huh.Form {
	categories := make([]huh.Option[string], 0, len(models.Categories))
	for _, cat := range models.Categories {
		categories = append(categories, huh.NewOption(categoryLabel(cat), string(cat)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&c.Name).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					if len([]rune(s)) > registry.MaxNameLength {
						return fmt.Errorf("habit name cannot exceed %d characters", registry.MaxNameLength)
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(categories...).
				Value(&c.Category),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", string(models.FrequencyDaily)),
					huh.NewOption("Weekly", string(models.FrequencyWeekly)),
				).
				Value(&c.Frequency),
			huh.NewInput().
				Title("Start date (YYYY-MM-DD, blank for today)").
				Value(&c.Start).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := period.ParseDay(strings.TrimSpace(s))
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

func categoryLabel(c models.Category) string {
	s := strings.ReplaceAll(string(c), "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Registry.List()
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found. Add one with 'habithero habit add'.")
		return nil
	}

	snapshots, err := ctx.Analytics.ComputeAll(habits)
	if err != nil {
		return err
	}

	ctx.Printf("%-24s %-14s %-7s %7s %6s %8s\n", "HABIT", "CATEGORY", "FREQ", "STREAK", "RATE", "TOTAL")
	for i, h := range habits {
		s := snapshots[i]
		ctx.Printf("%-24s %-14s %-7s %7d %5d%% %8d\n", truncate(h.Name, 24), h.Category, h.Frequency, s.Streak, s.SuccessRate, s.TotalCheckIns)
	}
	return nil
}

type HabitShowCmd struct {
	Habit  string `arg:"" help:"Habit name or id."`
	Recent int    `help:"Number of recent check-ins to show." default:"10"`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Registry.Find(c.Habit)
	if err != nil {
		return err
	}
	s, err := ctx.Analytics.Compute(habit)
	if err != nil {
		return err
	}

	ctx.Printf("%s\n", habit.Name)
	ctx.Printf("  ID:            %s\n", habit.ID)
	ctx.Printf("  Category:      %s\n", habit.Category)
	ctx.Printf("  Frequency:     %s\n", habit.Frequency)
	ctx.Printf("  Started:       %s\n", habit.StartDate)
	ctx.Printf("  Streak:        %d\n", s.Streak)
	ctx.Printf("  Success rate:  %d%% (%d of %d periods)\n", s.SuccessRate, s.CompletedPeriods, s.ElapsedPeriods)
	ctx.Printf("  Check-ins:     %d\n", s.TotalCheckIns)
	if s.LastCheckIn != "" {
		ctx.Printf("  Last check-in: %s\n", s.LastCheckIn)
	}

	var recent []models.CheckIn
	for ci, err := range ctx.Ledger.QueryErr(habit.ID) {
		if err != nil {
			return err
		}
		recent = append(recent, ci)
	}
	if len(recent) > c.Recent && c.Recent > 0 {
		recent = recent[len(recent)-c.Recent:]
	}
	if len(recent) > 0 {
		ctx.Println("\nRecent check-ins:")
		for i := len(recent) - 1; i >= 0; i-- {
			ci := recent[i]
			line := "  " + ci.Day
			if ci.Notes != "" {
				line += "  " + ci.Notes
			}
			ctx.Println(line)
		}
	}
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id to delete."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Registry.Find(c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		ctx.Printf("Delete %q and all of its check-ins? XP and badges already earned are kept. [y/N]: ", habit.Name)
		// EOF without an answer counts as no.
		response, _ := bufio.NewReader(ctx.Stdin()).ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	// Holding the profile lock keeps a concurrent check-in from awarding
	// XP for a habit that is disappearing.
	err = ctx.Engine.Exclusive(context.Background(), func() error {
		return ctx.Registry.Delete(habit.ID)
	})
	if err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
