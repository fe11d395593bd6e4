package habits

import (
	"strings"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/period"
)

const logNameWidth = 20

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		c.Days = 14
	}

	var habits []models.Habit
	if c.Habit != "" {
		h, err := ctx.Registry.Find(c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	} else {
		all, err := ctx.Registry.List()
		if err != nil {
			return err
		}
		habits = all
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	end, err := period.ParseDay(ctx.Today())
	if err != nil {
		return err
	}
	start := end.AddDate(0, 0, -(c.Days - 1))

	ctx.Printf("Habit log (last %d days):\n\n", c.Days)
	var header strings.Builder
	header.WriteString(strings.Repeat(" ", logNameWidth))
	for i := 0; i < c.Days; i++ {
		header.WriteString(" " + start.AddDate(0, 0, i).Format("01/02"))
	}
	ctx.Println(header.String())
	ctx.Println(strings.Repeat("-", logNameWidth+6*c.Days))

	for _, h := range habits {
		days, err := ctx.Ledger.Days(h.ID)
		if err != nil {
			return err
		}
		done := make(map[string]bool, len(days))
		for _, d := range days {
			done[period.FormatDay(d)] = true
		}

		var row strings.Builder
		name := truncate(h.Name, logNameWidth)
		row.WriteString(name + strings.Repeat(" ", logNameWidth-len([]rune(name))))
		for i := 0; i < c.Days; i++ {
			day := period.FormatDay(start.AddDate(0, 0, i))
			switch {
			case done[day]:
				row.WriteString("   x  ")
			case day < h.StartDate:
				row.WriteString("      ")
			default:
				row.WriteString("   .  ")
			}
		}
		ctx.Println(strings.TrimRight(row.String(), " "))
	}
	return nil
}
