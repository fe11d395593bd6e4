// Package profile holds the cumulative reward state of a profile. State only
// changes through Apply.
package profile

import (
	"github.com/julianstephens/habithero/internal/clock"
	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/storage"
)

// Transition is one award applied to a profile.
type Transition struct {
	XP     int
	Streak int
	Badges []string
	Day    string // unlock day recorded for new badges
}

type Store struct {
	store storage.Provider
	clock clock.Clock
}

func New(store storage.Provider, clk clock.Clock) *Store {
	return &Store{store: store, clock: clk}
}

// LevelFor maps total XP to a level: 100 XP per level, starting at 1.
func LevelFor(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/constants.XPPerLevel + 1
}

// Zero is the state of a profile that has never been awarded anything.
func Zero(id string) models.UserProfile {
	return models.UserProfile{ID: id, Level: 1, Badges: map[string]string{}}
}

// Get returns the stored profile, or Zero(id) if it was never written.
func (s *Store) Get(id string) (models.UserProfile, error) {
	p, err := s.store.GetProfile(id)
	if storage.IsNotFound(err) {
		return Zero(id), nil
	}
	if err != nil {
		return models.UserProfile{}, errors.Wrap("profile.Get", nil, "failed to get profile", err)
	}
	return p, nil
}

// GetForUpdate reads the profile for a following Apply in the same transaction.
func (s *Store) GetForUpdate(id string) (models.UserProfile, error) {
	p, err := s.store.GetProfileForUpdate(id)
	if err != nil {
		return models.UserProfile{}, errors.Wrap("profile.GetForUpdate", nil, "failed to get profile", err)
	}
	return p, nil
}

// Advance returns current with the XP and streak of t applied and the level
// recomputed. Badges are left alone.
func Advance(current models.UserProfile, t Transition) models.UserProfile {
	next := current.Clone()
	next.TotalXP += t.XP
	next.Level = LevelFor(next.TotalXP)
	if t.Streak > next.LongestStreak {
		next.LongestStreak = t.Streak
	}
	return next
}

// Apply advances current by t, adds its badges and saves the result.
func (s *Store) Apply(current models.UserProfile, t Transition) (models.UserProfile, error) {
	const op = "profile.Apply"

	if t.XP < 0 {
		return models.UserProfile{}, errors.Validation(op, "xp cannot decrease (got %d)", t.XP)
	}
	if t.Streak < 0 {
		return models.UserProfile{}, errors.Validation(op, "streak cannot be negative (got %d)", t.Streak)
	}

	next := Advance(current, t)
	for _, id := range t.Badges {
		if !next.HasBadge(id) {
			next.Badges[id] = t.Day
		}
	}
	next.UpdatedAt = s.clock.Now().UTC()

	if err := s.store.SaveProfile(next); err != nil {
		return models.UserProfile{}, errors.Wrap(op, nil, "failed to save profile", err)
	}
	return next, nil
}
