package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/errors"
)

const xpBarWidth = 20

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateHabits:
		content = m.habits.View()
	case StateBadges:
		content = m.viewBadges()
	case StateHistory:
		content = m.viewHistory()
	case StateAddHabit:
		content = m.form.View()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	))
}

func (m Model) viewHeader() string {
	p := m.profile
	line := fmt.Sprintf("%s   %s   longest streak %d   %d badges",
		levelStyle.Render(fmt.Sprintf("Level %d", max(p.Level, 1))),
		cli.XPBar(p.TotalXP, xpBarWidth),
		p.LongestStreak,
		len(p.Badges),
	)
	return headerStyle.Render(line)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Habits", "Badges", "History"} {
		active := m.state == SessionState(i) ||
			(SessionState(i) == StateHabits && m.state >= StateAddHabit)
		if active {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"
}

func (m Model) viewBadges() string {
	if len(m.badges) == 0 {
		return mutedStyle.Render("No badges defined.")
	}
	var b strings.Builder
	for _, s := range m.badges {
		if s.Earned {
			fmt.Fprintf(&b, "%s %s  %s\n", s.Badge.Icon, badgeStyle.Render(s.Badge.Name),
				mutedStyle.Render("earned "+s.UnlockedOn))
		} else {
			fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("🔒"), mutedStyle.Render(s.Badge.Name))
		}
		fmt.Fprintf(&b, "   %s\n", s.Badge.Description)
	}
	return b.String()
}

func (m Model) viewHistory() string {
	if len(m.history) == 0 {
		return mutedStyle.Render("No rewards yet. Check in a habit to earn XP.")
	}
	var b strings.Builder
	for _, ev := range m.history {
		name, ok := m.names[ev.HabitID]
		if !ok {
			name = mutedStyle.Render("(deleted)")
		}
		fmt.Fprintf(&b, "%s  %-20s +%-3d streak %-3d level %d", ev.Day, name, ev.XP, ev.Streak, ev.LevelAfter)
		if len(ev.Badges) > 0 {
			b.WriteString("  " + badgeStyle.Render(strings.Join(ev.Badges, ", ")))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewStatus() string {
	switch {
	case m.err != nil:
		return dangerStyle.Render("✗ " + errors.Format(m.err))
	case m.status != "":
		return successStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(m.height-chromeHeight, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q and all of its check-ins?", m.pendingName)),
			mutedStyle.Render("Earned XP and badges are kept."),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
