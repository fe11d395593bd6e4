package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habithero/internal/cli/clitest"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/tui/components/habitlist"
)

func newTestModel(t *testing.T) (Model, *clitest.Env, models.Habit) {
	t.Helper()
	env := clitest.New(t, "2026-10-15")
	h, err := env.Ctx.Registry.Create("Stretch", models.CategoryFitness, models.FrequencyDaily, "2026-10-14")
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	m := NewModel(env.Ctx)
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = step(t, m, m.load())
	return m, env, h
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return step(t, m, cmd())
}

func TestLoad(t *testing.T) {
	m, _, _ := newTestModel(t)

	items := m.habits.Items()
	if len(items) != 1 || items[0].Habit.Name != "Stretch" {
		t.Fatalf("items = %+v", items)
	}
	if items[0].Done {
		t.Error("habit should not be done before a check-in")
	}
	if len(m.badges) == 0 {
		t.Error("expected the badge catalog to be loaded")
	}
	if m.profile.Level != 1 {
		t.Errorf("level = %d, want 1", m.profile.Level)
	}
}

func TestCheckInFromList(t *testing.T) {
	m, _, h := newTestModel(t)

	m = run(t, m, m.checkIn(h.ID))
	if m.err != nil {
		t.Fatalf("check-in error: %v", m.err)
	}
	if !strings.Contains(m.status, "+10 XP") || !strings.Contains(m.status, "First Step") {
		t.Errorf("status = %q", m.status)
	}

	m = step(t, m, m.load())
	if !m.habits.Items()[0].Done {
		t.Error("habit should be done after a check-in")
	}
	if m.profile.TotalXP != 10 || len(m.history) != 1 {
		t.Errorf("profile = %+v, history = %d", m.profile, len(m.history))
	}

	// A second check-in the same day awards nothing
	m = run(t, m, m.checkIn(h.ID))
	if !strings.Contains(m.status, "already checked in") {
		t.Errorf("duplicate status = %q", m.status)
	}
}

func TestCheckInError(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = run(t, m, m.checkIn("missing"))
	if m.err == nil {
		t.Fatal("expected an error for an unknown habit")
	}
	if !strings.Contains(m.View(), "not found") {
		t.Error("expected the error in the view")
	}
}

func TestTabs(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateBadges {
		t.Fatalf("state = %v, want badges", m.state)
	}
	if !strings.Contains(m.View(), "First Step") {
		t.Error("badges view should list the catalog")
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateHistory {
		t.Fatalf("state = %v, want history", m.state)
	}
	if !strings.Contains(m.View(), "No rewards yet") {
		t.Error("expected empty history message")
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.state != StateHabits {
		t.Errorf("state = %v, want habits", m.state)
	}
}

func TestConfirmDelete(t *testing.T) {
	m, env, h := newTestModel(t)

	m = step(t, m, habitlist.DeleteHabitMsg{ID: h.ID, Name: h.Name})
	if m.state != StateConfirmDelete {
		t.Fatalf("state = %v, want confirm", m.state)
	}

	// Declining keeps the habit
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.state != StateHabits {
		t.Fatalf("state = %v after cancel", m.state)
	}
	if _, err := env.Ctx.Registry.Get(h.ID); err != nil {
		t.Fatalf("habit deleted after cancel: %v", err)
	}

	m = step(t, m, habitlist.DeleteHabitMsg{ID: h.ID, Name: h.Name})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m = run(t, next.(Model), cmd)
	if m.status != "Deleted Stretch" {
		t.Errorf("status = %q", m.status)
	}
	if _, err := env.Ctx.Registry.Get(h.ID); err == nil {
		t.Error("habit should be gone")
	}
}

func TestAddHabitCommand(t *testing.T) {
	m, env, _ := newTestModel(t)

	m = step(t, m, habitlist.AddHabitMsg{})
	if m.state != StateAddHabit || m.form == nil {
		t.Fatalf("state = %v, form = %v", m.state, m.form)
	}

	// Escape leaves the form without adding anything
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StateHabits || m.form != nil {
		t.Fatalf("state = %v after esc", m.state)
	}

	m = run(t, m, m.addHabit(HabitFormModel{Name: "Read", Category: "learning", Frequency: "weekly"}))
	if m.status != "Added Read" {
		t.Errorf("status = %q, err = %v", m.status, m.err)
	}
	h, err := env.Ctx.Registry.Find("read")
	if err != nil {
		t.Fatalf("added habit not found: %v", err)
	}
	if h.Frequency != models.FrequencyWeekly || h.StartDate != "2026-10-15" {
		t.Errorf("habit = %+v", h)
	}

	m = run(t, m, m.addHabit(HabitFormModel{Name: "", Category: "learning", Frequency: "daily"}))
	if m.err == nil {
		t.Error("expected a validation error for an empty name")
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil || !next.(Model).quitting {
		t.Error("q should quit")
	}
	if next.(Model).View() != "" {
		t.Error("view should be empty after quitting")
	}
}
