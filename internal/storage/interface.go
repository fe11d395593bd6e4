package storage

import (
	"errors"

	"github.com/julianstephens/habithero/internal/models"
)

// ErrNotFound is returned by getters when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits() ([]models.Habit, error)
	// DeleteHabit removes the habit along with its check-ins and reward events.
	DeleteHabit(id string) error

	// Check-ins
	// UpsertCheckIn inserts the check-in, or replaces the notes of the existing
	// row for (habit_id, day). created reports whether a row was inserted.
	UpsertCheckIn(models.CheckIn) (created bool, err error)
	GetCheckIn(habitID, day string) (models.CheckIn, error)
	// GetCheckIns returns the habit's check-ins, day ascending.
	GetCheckIns(habitID string) ([]models.CheckIn, error)

	// Profiles
	// GetProfile returns ErrNotFound if the profile has never been saved.
	GetProfile(id string) (models.UserProfile, error)
	// GetProfileForUpdate returns the profile, creating a zero row if needed,
	// and locks it for the rest of the enclosing Atomic call where the
	// backend supports row locks.
	GetProfileForUpdate(id string) (models.UserProfile, error)
	// SaveProfile writes the totals and inserts any badges not stored yet.
	// Stored badges are never removed.
	SaveProfile(models.UserProfile) error

	// Reward events
	// AddRewardEvent stores the event unless one exists for (habit_id, day).
	AddRewardEvent(models.RewardEvent) (created bool, err error)
	GetRewardEvent(habitID, day string) (models.RewardEvent, error)
	// GetRewardEvents returns the newest events of a profile first.
	// A limit <= 0 returns all of them.
	GetRewardEvents(profileID string, limit int) ([]models.RewardEvent, error)

	// Atomic runs fn against a transaction-bound Provider. The transaction
	// commits if fn returns nil and rolls back otherwise. Nested calls join
	// the outer transaction.
	Atomic(fn func(Provider) error) error

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by stores with a versioned schema.
type Migrator interface {
	// Migrate applies pending migrations. It works on a database whose
	// schema is behind, which Load refuses to open.
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (int, error)
	LatestSchemaVersion() (int, error)
}

// IsNotFound reports whether err means a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
