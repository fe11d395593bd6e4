package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/models"
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	LevelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	BadgeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
)

// XPBar renders progress through the current level.
func XPBar(totalXP, width int) string {
	into := totalXP % constants.XPPerLevel
	filled := into * width / constants.XPPerLevel
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]" +
		fmt.Sprintf(" %d/%d XP", into, constants.XPPerLevel)
}

// FormatOutcome describes the result of a check-in, one line per fact.
func FormatOutcome(habit models.Habit, o models.RewardOutcome) string {
	var b strings.Builder
	if o.Duplicate {
		fmt.Fprintf(&b, "%s already checked in for %s", habit.Name, o.CheckIn.Day)
		if o.CheckIn.Notes != "" {
			b.WriteString(" (notes updated)")
		}
		b.WriteString(". No XP awarded.\n")
	} else {
		fmt.Fprintf(&b, "%s Checked in %s for %s: +%d XP\n",
			SuccessStyle.Render("✓"), habit.Name, o.CheckIn.Day, o.XPEarned)
	}

	fmt.Fprintf(&b, "  Streak: %d %s   Success rate: %d%%\n",
		o.Snapshot.Streak, periodUnit(habit.Frequency, o.Snapshot.Streak), o.Snapshot.SuccessRate)

	if o.LeveledUp {
		fmt.Fprintf(&b, "  %s\n", LevelStyle.Render(fmt.Sprintf("Level up! You reached level %d", o.Level)))
	}
	for _, badge := range o.NewBadges {
		fmt.Fprintf(&b, "  %s %s\n", badge.Icon, BadgeStyle.Render("Badge unlocked: "+badge.Name))
	}
	fmt.Fprintf(&b, "  Level %d %s", o.Profile.Level, XPBar(o.Profile.TotalXP, 20))
	return b.String()
}

func periodUnit(freq models.Frequency, n int) string {
	unit := "day"
	if freq == models.FrequencyWeekly {
		unit = "week"
	}
	if n != 1 {
		unit += "s"
	}
	return unit
}
