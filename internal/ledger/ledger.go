// Package ledger records habit completions, at most one per habit and day.
package ledger

import (
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habithero/internal/clock"
	"github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/period"
	"github.com/julianstephens/habithero/internal/storage"
)

type Ledger struct {
	store storage.Provider
	clock clock.Clock
	log   logger.Logger
}

func New(store storage.Provider, clk clock.Clock, log logger.Logger) *Ledger {
	if log == nil {
		log = logger.Nop{}
	}
	return &Ledger{store: store, clock: clk, log: log}
}

// Record marks habitID completed on day (today when empty). Recording an
// existing day only replaces its notes; created is false in that case.
func (l *Ledger) Record(habitID, day, notes string) (models.CheckIn, bool, error) {
	const op = "ledger.Record"

	today := clock.Today(l.clock)
	if day == "" {
		day = today
	}
	if _, err := period.ParseDay(day); err != nil {
		return models.CheckIn{}, false, errors.Validation(op, "%v", err)
	}

	habit, err := l.store.GetHabit(habitID)
	if storage.IsNotFound(err) {
		return models.CheckIn{}, false, errors.NotFound(op, "habit %q not found", habitID)
	}
	if err != nil {
		return models.CheckIn{}, false, errors.Wrap(op, nil, "failed to get habit", err)
	}

	// YYYY-MM-DD compares correctly as a string.
	if day < habit.StartDate {
		return models.CheckIn{}, false, errors.Validation(op, "%s is before the habit started on %s", day, habit.StartDate)
	}
	if day > today {
		return models.CheckIn{}, false, errors.Validation(op, "cannot check in for %s, a future date", day)
	}

	now := l.clock.Now().UTC()
	created, err := l.store.UpsertCheckIn(models.CheckIn{
		ID:        uuid.New().String(),
		HabitID:   habitID,
		Day:       day,
		Completed: true,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if _, getErr := l.store.GetHabit(habitID); storage.IsNotFound(getErr) {
			return models.CheckIn{}, false, errors.Conflict(op, "habit %q was deleted while checking in", habitID)
		}
		return models.CheckIn{}, false, errors.Wrap(op, errors.ErrConflict, "failed to save check-in", err)
	}

	checkIn, err := l.store.GetCheckIn(habitID, day)
	if err != nil {
		return models.CheckIn{}, false, errors.Wrap(op, nil, "failed to read back check-in", err)
	}

	if created {
		l.log.Info("Check-in recorded", "habit", habitID, "day", day)
	} else {
		l.log.Debug("Check-in notes updated", "habit", habitID, "day", day)
	}
	return checkIn, created, nil
}

// QueryErr yields the habit's check-ins by ascending day. Rows are read when
// iteration starts, so every range over the sequence sees current data. A
// storage failure is yielded once as the error.
func (l *Ledger) QueryErr(habitID string) iter.Seq2[models.CheckIn, error] {
	return func(yield func(models.CheckIn, error) bool) {
		checkIns, err := l.store.GetCheckIns(habitID)
		if err != nil {
			yield(models.CheckIn{}, errors.Wrap("ledger.Query", nil, "failed to read check-ins", err))
			return
		}
		for _, c := range checkIns {
			if !yield(c, nil) {
				return
			}
		}
	}
}

// Query is QueryErr for callers that only log storage failures.
func (l *Ledger) Query(habitID string) iter.Seq[models.CheckIn] {
	return func(yield func(models.CheckIn) bool) {
		for c, err := range l.QueryErr(habitID) {
			if err != nil {
				l.log.Error("Failed to query check-ins", "habit", habitID, "error", err)
				return
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Days returns the completed days of the habit, ascending.
func (l *Ledger) Days(habitID string) ([]time.Time, error) {
	var days []time.Time
	for c, err := range l.QueryErr(habitID) {
		if err != nil {
			return nil, err
		}
		if !c.Completed {
			continue
		}
		d, err := period.ParseDay(c.Day)
		if err != nil {
			return nil, errors.Wrap("ledger.Days", nil, "corrupt check-in day", err)
		}
		days = append(days, d)
	}
	return days, nil
}
