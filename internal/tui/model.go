// Package tui is the interactive dashboard: habits with their streaks, the
// badge catalog and the reward history, with check-ins from the keyboard.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/period"
	"github.com/julianstephens/habithero/internal/tui/components/habitlist"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateBadges
	StateHistory
	StateAddHabit
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 3

const historyLimit = 20

type HabitFormModel struct {
	Name      string
	Category  string
	Frequency string
}

type Model struct {
	app *cli.Context

	state       SessionState
	keys        KeyMap
	help        help.Model
	habits      habitlist.Model
	form        *huh.Form
	habitForm   *HabitFormModel
	profile     models.UserProfile
	badges      []models.BadgeStatus
	history     []models.RewardEvent
	names       map[string]string
	pendingID   string
	pendingName string
	status      string
	err         error
	quitting    bool
	width       int
	height      int
}

func NewModel(app *cli.Context) Model {
	return Model{
		app:    app,
		state:  StateHabits,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		habits: habitlist.New(nil, 0, 0),
		names:  map[string]string{},
	}
}

// Run starts the dashboard and blocks until it exits.
func Run(app *cli.Context) error {
	_, err := tea.NewProgram(NewModel(app), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.load
}

// loadedMsg carries a full refresh of the dashboard data.
type loadedMsg struct {
	items   []habitlist.Item
	profile models.UserProfile
	badges  []models.BadgeStatus
	history []models.RewardEvent
	names   map[string]string
}

type checkedInMsg struct {
	habit   models.Habit
	outcome models.RewardOutcome
}

type habitAddedMsg struct{ habit models.Habit }

type habitDeletedMsg struct{ name string }

type errMsg struct{ err error }

func (m Model) load() tea.Msg {
	app := m.app
	habits, err := app.Registry.List()
	if err != nil {
		return errMsg{err}
	}
	snapshots, err := app.Analytics.ComputeAll(habits)
	if err != nil {
		return errMsg{err}
	}

	items := make([]habitlist.Item, len(habits))
	names := make(map[string]string, len(habits))
	for i, h := range habits {
		items[i] = habitlist.Item{Habit: h, Snapshot: snapshots[i], Done: doneThisPeriod(h, snapshots[i])}
		names[h.ID] = h.Name
	}

	profile, err := app.Engine.Profile()
	if err != nil {
		return errMsg{err}
	}
	badges, err := app.Engine.Catalog()
	if err != nil {
		return errMsg{err}
	}
	history, err := app.Engine.History(historyLimit)
	if err != nil {
		return errMsg{err}
	}
	return loadedMsg{items: items, profile: profile, badges: badges, history: history, names: names}
}

// doneThisPeriod reports whether the period containing the snapshot day has a check-in.
func doneThisPeriod(h models.Habit, s models.AnalyticsSnapshot) bool {
	if s.LastCheckIn == "" {
		return false
	}
	last, err := period.ParseDay(s.LastCheckIn)
	if err != nil {
		return false
	}
	now, err := period.ParseDay(s.AsOf)
	if err != nil {
		return false
	}
	return period.Index(h.Frequency, last) == period.Index(h.Frequency, now)
}

func (m Model) checkIn(habitID string) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		habit, err := app.Registry.Get(habitID)
		if err != nil {
			return errMsg{err}
		}
		outcome, err := app.Engine.CheckIn(context.Background(), habitID, "", "")
		if err != nil {
			return errMsg{err}
		}
		return checkedInMsg{habit: habit, outcome: outcome}
	}
}

func (m Model) addHabit(f HabitFormModel) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		habit, err := app.Registry.Create(f.Name, models.Category(f.Category), models.Frequency(f.Frequency), "")
		if err != nil {
			return errMsg{err}
		}
		return habitAddedMsg{habit: habit}
	}
}

func (m Model) deleteHabit(id, name string) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		app.PerformAutomaticBackup()
		err := app.Engine.Exclusive(context.Background(), func() error {
			return app.Registry.Delete(id)
		})
		if err != nil {
			return errMsg{err}
		}
		return habitDeletedMsg{name: name}
	}
}

func newHabitForm(fm *HabitFormModel) *huh.Form {
	categories := make([]huh.Option[string], 0, len(models.Categories))
	for _, c := range models.Categories {
		categories = append(categories, huh.NewOption(string(c), string(c)))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name),
			huh.NewSelect[string]().
				Title("Category").
				Options(categories...).
				Value(&fm.Category),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", string(models.FrequencyDaily)),
					huh.NewOption("Weekly", string(models.FrequencyWeekly)),
				).
				Value(&fm.Frequency),
		),
	).WithTheme(huh.ThemeDracula())
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	if m.state == StateHabits {
		hk := habitlist.DefaultKeyMap()
		keys = append(keys, hk.CheckIn, hk.Add, hk.Delete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	hk := habitlist.DefaultKeyMap()
	return [][]key.Binding{
		{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
		{hk.CheckIn, hk.Add, hk.Delete},
	}
}
