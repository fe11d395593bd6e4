package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/tui/components/habitlist"
)

// chromeHeight is the space taken by the header, tabs, status and help lines.
const chromeHeight = 9

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.habits.SetSize(msg.Width-h, max(msg.Height-v-chromeHeight, 1))
		return m, nil

	case loadedMsg:
		m.habits.SetItems(msg.items)
		m.profile = msg.profile
		m.badges = msg.badges
		m.history = msg.history
		m.names = msg.names
		return m, nil

	case checkedInMsg:
		m.err = nil
		m.status = checkInStatus(msg.habit, msg.outcome)
		return m, m.load

	case habitAddedMsg:
		m.err = nil
		m.status = fmt.Sprintf("Added %s", msg.habit.Name)
		return m, m.load

	case habitDeletedMsg:
		m.err = nil
		m.status = fmt.Sprintf("Deleted %s", msg.name)
		return m, m.load

	case errMsg:
		m.err = msg.err
		m.status = ""
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{
			Category:  string(models.CategoryHealth),
			Frequency: string(models.FrequencyDaily),
		}
		m.form = newHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case habitlist.CheckInMsg:
		return m, m.checkIn(msg.ID)

	case habitlist.DeleteHabitMsg:
		m.pendingID, m.pendingName = msg.ID, msg.Name
		m.state = StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			m.err = nil
			return m, m.load
		}
	}

	if m.state == StateHabits {
		var cmd tea.Cmd
		m.habits, cmd = m.habits.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.state = StateHabits
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = StateHabits
		fm := *m.habitForm
		fm.Name = strings.TrimSpace(fm.Name)
		m.form = nil
		return m, m.addHabit(fm)
	case huh.StateAborted:
		m.state = StateHabits
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, m.keys.Confirm):
		m.state = StateHabits
		return m, m.deleteHabit(m.pendingID, m.pendingName)
	case key.Matches(k, m.keys.Cancel):
		m.state = StateHabits
		m.pendingID, m.pendingName = "", ""
	}
	return m, nil
}

func checkInStatus(h models.Habit, o models.RewardOutcome) string {
	if o.Duplicate {
		return fmt.Sprintf("%s already checked in for %s", h.Name, o.CheckIn.Day)
	}
	parts := []string{fmt.Sprintf("%s: +%d XP, streak %d", h.Name, o.XPEarned, o.Snapshot.Streak)}
	if o.LeveledUp {
		parts = append(parts, fmt.Sprintf("level %d!", o.Level))
	}
	for _, b := range o.NewBadges {
		parts = append(parts, "badge "+b.Icon+" "+b.Name)
	}
	return strings.Join(parts, " | ")
}
