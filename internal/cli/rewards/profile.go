package rewards

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habithero/internal/cli"
)

type ProfileCmd struct{}

func (c *ProfileCmd) Run(ctx *cli.Context) error {
	p, err := ctx.Engine.Profile()
	if err != nil {
		return err
	}

	ctx.Printf("Profile: %s\n", p.ID)
	ctx.Printf("  %s\n", cli.LevelStyle.Render(fmt.Sprintf("Level %d", p.Level)))
	ctx.Printf("  %s\n", cli.XPBar(p.TotalXP, 30))
	ctx.Printf("  Total XP:       %d\n", p.TotalXP)
	ctx.Printf("  Longest streak: %d\n", p.LongestStreak)
	ctx.Printf("  Badges:         %d\n", len(p.Badges))
	return nil
}

type BadgesCmd struct {
	Earned bool `help:"Only show earned badges."`
}

func (c *BadgesCmd) Run(ctx *cli.Context) error {
	statuses, err := ctx.Engine.Catalog()
	if err != nil {
		return err
	}

	earned := 0
	for _, st := range statuses {
		if st.Earned {
			earned++
		}
	}
	ctx.Printf("Badges (%d/%d earned):\n\n", earned, len(statuses))

	for _, st := range statuses {
		if c.Earned && !st.Earned {
			continue
		}
		if st.Earned {
			ctx.Printf("  %s %s  %s\n", st.Badge.Icon, cli.BadgeStyle.Render(st.Badge.Name),
				cli.MutedStyle.Render("unlocked "+st.UnlockedOn))
		} else {
			ctx.Printf("  %s %s\n", cli.MutedStyle.Render("[locked]"), st.Badge.Name)
		}
		ctx.Printf("      %s\n", st.Badge.Description)
	}
	return nil
}

type HistoryCmd struct {
	Limit int `short:"l" help:"Number of events to show (0 for all)." default:"20"`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	events, err := ctx.Engine.History(c.Limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		ctx.Println("No rewards yet. Check in a habit to earn XP.")
		return nil
	}

	names := map[string]string{}
	habits, err := ctx.Registry.List()
	if err != nil {
		return err
	}
	for _, h := range habits {
		names[h.ID] = h.Name
	}

	ctx.Printf("%-10s  %-24s %5s %7s %6s  %s\n", "DAY", "HABIT", "XP", "STREAK", "LEVEL", "BADGES")
	for _, e := range events {
		name, ok := names[e.HabitID]
		if !ok {
			name = e.HabitID
		}
		ctx.Printf("%-10s  %-24s %+5d %7d %6d  %s\n", e.Day, name, e.XP, e.Streak, e.LevelAfter, strings.Join(e.Badges, ", "))
	}
	return nil
}
