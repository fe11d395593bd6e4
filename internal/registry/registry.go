// Package registry owns habit definitions.
package registry

import (
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/habithero/internal/clock"
	"github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/period"
	"github.com/julianstephens/habithero/internal/storage"
)

// MaxNameLength bounds habit names so they fit the dashboard.
const MaxNameLength = 100

type Registry struct {
	store storage.Provider
	clock clock.Clock
	log   logger.Logger
}

func New(store storage.Provider, clk clock.Clock, log logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop{}
	}
	return &Registry{store: store, clock: clk, log: log}
}

// Create validates and stores a new habit. An empty startDate means today.
func (r *Registry) Create(name string, category models.Category, frequency models.Frequency, startDate string) (models.Habit, error) {
	const op = "registry.Create"

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, errors.Validation(op, "habit name cannot be empty")
	}
	if len([]rune(name)) > MaxNameLength {
		return models.Habit{}, errors.Validation(op, "habit name cannot exceed %d characters", MaxNameLength)
	}
	if !category.Valid() {
		return models.Habit{}, errors.Validation(op, "unknown category %q", category)
	}
	if !frequency.Valid() {
		return models.Habit{}, errors.Validation(op, "unknown frequency %q (expected daily or weekly)", frequency)
	}

	startDate = strings.TrimSpace(startDate)
	if startDate == "" {
		startDate = clock.Today(r.clock)
	} else if _, err := period.ParseDay(startDate); err != nil {
		return models.Habit{}, errors.Validation(op, "%v", err)
	}

	habit := models.Habit{
		ID:        uuid.New().String(),
		Name:      name,
		Category:  category,
		Frequency: frequency,
		StartDate: startDate,
		CreatedAt: r.clock.Now().UTC(),
	}
	if err := r.store.AddHabit(habit); err != nil {
		return models.Habit{}, errors.Wrap(op, errors.ErrConflict, "failed to save habit", err)
	}

	r.log.Info("Habit created", "id", habit.ID, "name", habit.Name, "frequency", habit.Frequency)
	return habit, nil
}

// Delete removes the habit together with its check-ins and reward events.
// XP and badges already earned are kept.
func (r *Registry) Delete(habitID string) error {
	const op = "registry.Delete"

	err := r.store.DeleteHabit(habitID)
	if storage.IsNotFound(err) {
		return errors.NotFound(op, "habit %q not found", habitID)
	}
	if err != nil {
		return errors.Wrap(op, errors.ErrConflict, "failed to delete habit", err)
	}

	r.log.Info("Habit deleted", "id", habitID)
	return nil
}

// List returns every habit in creation order.
func (r *Registry) List() ([]models.Habit, error) {
	habits, err := r.store.GetAllHabits()
	if err != nil {
		return nil, errors.Wrap("registry.List", nil, "failed to list habits", err)
	}
	return habits, nil
}

func (r *Registry) Get(habitID string) (models.Habit, error) {
	habit, err := r.store.GetHabit(habitID)
	if storage.IsNotFound(err) {
		return models.Habit{}, errors.NotFound("registry.Get", "habit %q not found", habitID)
	}
	if err != nil {
		return models.Habit{}, errors.Wrap("registry.Get", nil, "failed to get habit", err)
	}
	return habit, nil
}

// Find resolves a habit by id, falling back to a case-insensitive name match.
func (r *Registry) Find(nameOrID string) (models.Habit, error) {
	const op = "registry.Find"

	key := strings.TrimSpace(nameOrID)
	if key == "" {
		return models.Habit{}, errors.Validation(op, "habit name or id is required")
	}

	habit, err := r.store.GetHabit(key)
	if err == nil {
		return habit, nil
	}
	if !storage.IsNotFound(err) {
		return models.Habit{}, errors.Wrap(op, nil, "failed to get habit", err)
	}

	habit, err = r.store.GetHabitByName(key)
	if storage.IsNotFound(err) {
		return models.Habit{}, errors.NotFound(op, "habit %q not found", key)
	}
	if err != nil {
		return models.Habit{}, errors.Wrap(op, nil, "failed to get habit", err)
	}
	return habit, nil
}
