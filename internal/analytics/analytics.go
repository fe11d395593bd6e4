// Package analytics derives streaks and success rates from a habit's
// check-ins. Nothing here is stored; every value is recomputed on demand.
package analytics

import (
	"sync"
	"time"

	"github.com/julianstephens/habithero/internal/clock"
	"github.com/julianstephens/habithero/internal/ledger"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/period"
)

type Engine struct {
	ledger *ledger.Ledger
	clock  clock.Clock
}

func New(l *ledger.Ledger, clk clock.Clock) *Engine {
	return &Engine{ledger: l, clock: clk}
}

// Compute returns the habit's snapshot as of today. The only error source is
// reading the ledger.
func (e *Engine) Compute(habit models.Habit) (models.AnalyticsSnapshot, error) {
	days, err := e.ledger.Days(habit.ID)
	if err != nil {
		return models.AnalyticsSnapshot{}, err
	}
	return Snapshot(habit, days, e.clock.Now()), nil
}

// ComputeAll computes snapshots concurrently, in the order of habits.
func (e *Engine) ComputeAll(habits []models.Habit) ([]models.AnalyticsSnapshot, error) {
	snapshots := make([]models.AnalyticsSnapshot, len(habits))
	errs := make([]error, len(habits))

	var wg sync.WaitGroup
	for i, h := range habits {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshots[i], errs[i] = e.Compute(h)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return snapshots, nil
}

// Snapshot is the pure computation behind Compute. days are completed
// check-in days in any order; duplicates within a period count once.
func Snapshot(habit models.Habit, days []time.Time, now time.Time) models.AnalyticsSnapshot {
	snap := models.AnalyticsSnapshot{
		HabitID:       habit.ID,
		TotalCheckIns: len(days),
		AsOf:          period.FormatDay(now),
	}

	current := period.Index(habit.Frequency, now)
	done := make(map[int64]bool, len(days))
	var last time.Time
	for _, d := range days {
		done[period.Index(habit.Frequency, d)] = true
		if d.After(last) {
			last = d
		}
	}
	if len(days) > 0 {
		snap.LastCheckIn = period.FormatDay(last)
	}

	// The current period may still be completed later, so an open one does
	// not break the run.
	p := current
	if !done[p] {
		p--
	}
	for done[p] {
		snap.Streak++
		p--
	}

	start, err := period.ParseDay(habit.StartDate)
	if err != nil {
		// A stored habit always has a valid start date; count from the first check-in.
		start = now
		for _, d := range days {
			if d.Before(start) {
				start = d
			}
		}
	}
	first := period.Index(habit.Frequency, start)

	for idx := range done {
		if idx >= first && idx <= current {
			snap.CompletedPeriods++
		}
	}
	snap.ElapsedPeriods = period.Elapsed(habit.Frequency, start, now)
	snap.SuccessRate = SuccessRate(snap.CompletedPeriods, snap.ElapsedPeriods, snap.TotalCheckIns)
	return snap
}

// SuccessRate is completed/elapsed as an integer percent, rounded half away
// from zero and capped at 100. With nothing elapsed yet it is 100 if anything
// was checked in and 0 otherwise.
func SuccessRate(completed, elapsed, total int) int {
	if elapsed <= 0 {
		if total > 0 {
			return 100
		}
		return 0
	}
	if completed <= 0 {
		return 0
	}
	rate := (completed*200 + elapsed) / (2 * elapsed)
	if rate > 100 {
		return 100
	}
	return rate
}
