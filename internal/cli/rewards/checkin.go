package rewards

import (
	"context"

	"github.com/julianstephens/habithero/internal/cli"
)

type CheckInCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
	Notes string `short:"n" help:"Optional note for this check-in."`
}

func (c *CheckInCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Registry.Find(c.Habit)
	if err != nil {
		return err
	}

	outcome, err := ctx.Engine.CheckIn(context.Background(), habit.ID, c.Date, c.Notes)
	if err != nil {
		return err
	}

	ctx.Println(cli.FormatOutcome(habit, outcome))
	if !outcome.Duplicate {
		if q := ctx.Quote(); q != "" {
			ctx.Println()
			ctx.Println(cli.MutedStyle.Render(q))
		}
	}
	return nil
}
