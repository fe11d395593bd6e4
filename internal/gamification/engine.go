// Package gamification turns check-ins into XP, levels and badges. The whole
// transition for one check-in runs in a single storage transaction while the
// profile lock is held.
package gamification

import (
	"context"
	"time"

	"github.com/julianstephens/habithero/internal/analytics"
	"github.com/julianstephens/habithero/internal/clock"
	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/ledger"
	"github.com/julianstephens/habithero/internal/lock"
	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/profile"
	"github.com/julianstephens/habithero/internal/storage"
)

type Options struct {
	ProfileID   string
	Catalog     []models.Badge // DefaultCatalog() when nil
	Locker      lock.Locker    // in-process lock when nil
	LockTimeout time.Duration
	Clock       clock.Clock
	Logger      logger.Logger
}

type Engine struct {
	store       storage.Provider
	profileID   string
	catalog     []models.Badge
	locker      lock.Locker
	lockTimeout time.Duration
	clock       clock.Clock
	log         logger.Logger
}

func New(store storage.Provider, opts Options) *Engine {
	e := &Engine{
		store:       store,
		profileID:   opts.ProfileID,
		catalog:     opts.Catalog,
		locker:      opts.Locker,
		lockTimeout: opts.LockTimeout,
		clock:       opts.Clock,
		log:         opts.Logger,
	}
	if e.profileID == "" {
		e.profileID = constants.DefaultProfile
	}
	if e.catalog == nil {
		e.catalog = DefaultCatalog()
	}
	if e.locker == nil {
		e.locker = lock.NewLocal()
	}
	if e.lockTimeout <= 0 {
		e.lockTimeout = constants.DefaultLockTimeout
	}
	if e.clock == nil {
		e.clock = clock.Real{}
	}
	if e.log == nil {
		e.log = logger.Nop{}
	}
	return e
}

// XPFor is the XP earned by a check-in that leaves the habit at streak.
func XPFor(streak int) int {
	xp := constants.BaseCheckInXP
	if streak > 0 && streak%constants.StreakMilestoneLength == 0 {
		xp += constants.StreakMilestoneBonus
	}
	return xp
}

func (e *Engine) ProfileID() string { return e.profileID }

// Exclusive runs fn while holding the profile lock.
func (e *Engine) Exclusive(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, e.lockTimeout)
	defer cancel()

	release, err := e.locker.Lock(ctx, e.profileID)
	if err != nil {
		return errors.Wrap("gamification.lock", errors.ErrConflict, "profile "+e.profileID+" is busy", err)
	}
	defer release()
	return fn()
}

// CheckIn records habitID as done on day (today when empty) and awards it,
// all or nothing. Checking in a day that was already awarded only updates the
// notes and returns a Duplicate outcome.
func (e *Engine) CheckIn(ctx context.Context, habitID, day, notes string) (models.RewardOutcome, error) {
	var outcome models.RewardOutcome
	err := e.Exclusive(ctx, func() error {
		return e.store.Atomic(func(tx storage.Provider) error {
			checkIn, _, err := ledger.New(tx, e.clock, e.log).Record(habitID, day, notes)
			if err != nil {
				return err
			}
			outcome, err = e.award(tx, checkIn.HabitID, checkIn.Day)
			return err
		})
	})
	if err != nil {
		return models.RewardOutcome{}, err
	}
	return outcome, nil
}

// AwardForCheckIn awards an already recorded check-in exactly once.
func (e *Engine) AwardForCheckIn(ctx context.Context, habitID, day string) (models.RewardOutcome, error) {
	var outcome models.RewardOutcome
	err := e.Exclusive(ctx, func() error {
		return e.store.Atomic(func(tx storage.Provider) error {
			var err error
			outcome, err = e.award(tx, habitID, day)
			return err
		})
	})
	if err != nil {
		return models.RewardOutcome{}, err
	}
	return outcome, nil
}

func (e *Engine) award(tx storage.Provider, habitID, day string) (models.RewardOutcome, error) {
	const op = "gamification.AwardForCheckIn"

	habit, err := tx.GetHabit(habitID)
	if storage.IsNotFound(err) {
		return models.RewardOutcome{}, errors.NotFound(op, "habit %q not found", habitID)
	}
	if err != nil {
		return models.RewardOutcome{}, errors.Wrap(op, nil, "failed to get habit", err)
	}

	checkIn, err := tx.GetCheckIn(habitID, day)
	if storage.IsNotFound(err) {
		return models.RewardOutcome{}, errors.NotFound(op, "no check-in for %q on %s", habit.Name, day)
	}
	if err != nil {
		return models.RewardOutcome{}, errors.Wrap(op, nil, "failed to get check-in", err)
	}

	profiles := profile.New(tx, e.clock)
	current, err := profiles.GetForUpdate(e.profileID)
	if err != nil {
		return models.RewardOutcome{}, err
	}

	snap, err := analytics.New(ledger.New(tx, e.clock, e.log), e.clock).Compute(habit)
	if err != nil {
		return models.RewardOutcome{}, err
	}

	outcome := models.RewardOutcome{
		NewBadges: []models.Badge{},
		CheckIn:   checkIn,
		Snapshot:  snap,
	}

	_, err = tx.GetRewardEvent(habitID, day)
	if err == nil {
		e.log.Debug("Check-in already awarded", "habit", habitID, "day", day)
		outcome.Duplicate = true
		outcome.Level = current.Level
		outcome.Profile = current
		return outcome, nil
	}
	if !storage.IsNotFound(err) {
		return models.RewardOutcome{}, errors.Wrap(op, nil, "failed to get reward event", err)
	}

	xp := XPFor(snap.Streak)
	transition := profile.Transition{XP: xp, Streak: snap.Streak, Day: clock.Today(e.clock)}
	newBadges := Unlocked(e.catalog, profile.Advance(current, transition), snap)
	for _, b := range newBadges {
		transition.Badges = append(transition.Badges, b.ID)
	}

	next, err := profiles.Apply(current, transition)
	if err != nil {
		return models.RewardOutcome{}, err
	}

	created, err := tx.AddRewardEvent(models.RewardEvent{
		HabitID:    habitID,
		Day:        day,
		ProfileID:  e.profileID,
		XP:         xp,
		Streak:     snap.Streak,
		LevelAfter: next.Level,
		Badges:     transition.Badges,
		CreatedAt:  e.clock.Now().UTC(),
	})
	if err != nil {
		return models.RewardOutcome{}, errors.Wrap(op, errors.ErrConflict, "failed to record reward", err)
	}
	if !created {
		return models.RewardOutcome{}, errors.Conflict(op, "check-in for %s on %s was awarded concurrently", habitID, day)
	}

	outcome.XPEarned = xp
	outcome.Level = next.Level
	outcome.LeveledUp = next.Level != current.Level
	outcome.NewBadges = append(outcome.NewBadges, newBadges...)
	outcome.Profile = next

	e.log.Info("Check-in awarded",
		"habit", habitID, "day", day, "xp", xp, "streak", snap.Streak,
		"level", next.Level, "badges", len(newBadges))
	return outcome, nil
}

// Profile returns the engine's profile, zero if nothing was awarded yet.
func (e *Engine) Profile() (models.UserProfile, error) {
	return profile.New(e.store, e.clock).Get(e.profileID)
}

// Catalog lists every badge with the profile's progress on it.
func (e *Engine) Catalog() ([]models.BadgeStatus, error) {
	p, err := e.Profile()
	if err != nil {
		return nil, err
	}

	statuses := make([]models.BadgeStatus, 0, len(e.catalog))
	for _, b := range e.catalog {
		day, earned := p.Badges[b.ID]
		statuses = append(statuses, models.BadgeStatus{Badge: b, Earned: earned, UnlockedOn: day})
	}
	return statuses, nil
}

// History returns the newest reward events of the profile.
func (e *Engine) History(limit int) ([]models.RewardEvent, error) {
	events, err := e.store.GetRewardEvents(e.profileID, limit)
	if err != nil {
		return nil, errors.Wrap("gamification.History", nil, "failed to get reward history", err)
	}
	return events, nil
}
