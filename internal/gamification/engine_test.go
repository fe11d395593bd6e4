package gamification

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/habithero/internal/clock"
	apperrors "github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/storage"
	"github.com/julianstephens/habithero/internal/storage/sqlite"
)

type fixture struct {
	store  *sqlite.Store
	clock  *clock.Stub
	engine *Engine
}

func setup(t *testing.T, today string) *fixture {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clk := clock.NewStubDay(today)
	return &fixture{
		store:  store,
		clock:  clk,
		engine: New(store, Options{Clock: clk, Logger: logger.Nop{}}),
	}
}

func (f *fixture) addHabit(t *testing.T, id string, freq models.Frequency, start string) {
	t.Helper()
	err := f.store.AddHabit(models.Habit{
		ID:        id,
		Name:      id,
		Category:  models.CategoryHealth,
		Frequency: freq,
		StartDate: start,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
}

func (f *fixture) checkIn(t *testing.T, habitID, day string) models.RewardOutcome {
	t.Helper()
	out, err := f.engine.CheckIn(context.Background(), habitID, day, "")
	if err != nil {
		t.Fatalf("failed to check in %s on %s: %v", habitID, day, err)
	}
	return out
}

func badgeIDs(badges []models.Badge) []string {
	ids := make([]string, 0, len(badges))
	for _, b := range badges {
		ids = append(ids, b.ID)
	}
	return ids
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func TestXPFor(t *testing.T) {
	tests := []struct{ streak, want int }{
		{0, 10}, {1, 10}, {6, 10}, {7, 15}, {8, 10}, {14, 15}, {21, 15},
	}
	for _, tt := range tests {
		if got := XPFor(tt.streak); got != tt.want {
			t.Errorf("XPFor(%d) = %d, want %d", tt.streak, got, tt.want)
		}
	}
}

func TestSevenDayScenario(t *testing.T) {
	f := setup(t, "2026-10-09")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-09")

	total := 0
	streakBadgeAwards := 0
	var last models.RewardOutcome
	for i := 1; i <= 7; i++ {
		last = f.checkIn(t, "h1", "")
		total += last.XPEarned

		if last.Snapshot.Streak != i {
			t.Errorf("day %d: streak = %d, want %d", i, last.Snapshot.Streak, i)
		}
		if last.Profile.TotalXP != total {
			t.Errorf("day %d: profile XP %d, running total %d", i, last.Profile.TotalXP, total)
		}
		ids := badgeIDs(last.NewBadges)
		if contains(ids, "streak_7") {
			streakBadgeAwards++
			if i != 7 {
				t.Errorf("streak_7 unlocked on day %d", i)
			}
		}
		if i == 1 && !contains(ids, "first_checkin") {
			t.Errorf("day 1: expected first_checkin, got %v", ids)
		}
		if i < 7 {
			f.clock.AddDays(1)
		}
	}

	if last.Snapshot.Streak != 7 || last.Snapshot.SuccessRate != 100 {
		t.Errorf("final snapshot = %+v, want streak 7 rate 100", last.Snapshot)
	}
	if total != 75 {
		t.Errorf("total XP = %d, want 75", total)
	}
	if last.XPEarned != 15 {
		t.Errorf("7th check-in earned %d, want 15", last.XPEarned)
	}
	if streakBadgeAwards != 1 {
		t.Errorf("streak_7 awarded %d times, want 1", streakBadgeAwards)
	}

	p, err := f.engine.Profile()
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if p.TotalXP != 75 || p.Level != 1 || p.LongestStreak != 7 {
		t.Errorf("unexpected profile: %+v", p)
	}
	if p.Badges["streak_7"] != "2026-10-15" {
		t.Errorf("streak_7 unlock day = %q, want 2026-10-15", p.Badges["streak_7"])
	}
}

func TestBackdatedWeekTotalsTheSameXP(t *testing.T) {
	f := setup(t, "2026-10-15")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-09")

	total := 0
	for _, day := range []string{"2026-10-09", "2026-10-10", "2026-10-11", "2026-10-12", "2026-10-13", "2026-10-14", "2026-10-15"} {
		total += f.checkIn(t, "h1", day).XPEarned
	}
	if total != 75 {
		t.Errorf("total XP = %d, want 75", total)
	}
}

func TestSameDayCheckInIsAwardedOnce(t *testing.T) {
	f := setup(t, "2026-10-15")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-01")

	first, err := f.engine.CheckIn(context.Background(), "h1", "", "morning")
	if err != nil {
		t.Fatalf("failed to check in: %v", err)
	}
	second, err := f.engine.CheckIn(context.Background(), "h1", "", "evening")
	if err != nil {
		t.Fatalf("failed to check in again: %v", err)
	}

	if first.Duplicate || first.XPEarned != 10 {
		t.Errorf("unexpected first outcome: %+v", first)
	}
	if !second.Duplicate || second.XPEarned != 0 || len(second.NewBadges) != 0 || second.LeveledUp {
		t.Errorf("expected zero duplicate outcome, got %+v", second)
	}
	if second.CheckIn.Notes != "evening" {
		t.Errorf("expected notes to be replaced, got %q", second.CheckIn.Notes)
	}
	if second.Profile.TotalXP != 10 || second.Level != 1 {
		t.Errorf("duplicate should report the unchanged profile, got %+v", second.Profile)
	}

	checkIns, err := f.store.GetCheckIns("h1")
	if err != nil {
		t.Fatalf("failed to get check-ins: %v", err)
	}
	if len(checkIns) != 1 {
		t.Errorf("expected one check-in row, got %d", len(checkIns))
	}

	again, err := f.engine.AwardForCheckIn(context.Background(), "h1", "2026-10-15")
	if err != nil {
		t.Fatalf("failed to re-award: %v", err)
	}
	if !again.Duplicate || again.XPEarned != 0 {
		t.Errorf("AwardForCheckIn on awarded day = %+v", again)
	}
}

func TestConcurrentCheckInsAwardOnce(t *testing.T) {
	f := setup(t, "2026-10-15")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-01")

	var wg sync.WaitGroup
	var mu sync.Mutex
	awarded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.engine.CheckIn(context.Background(), "h1", "", "")
			if err != nil {
				t.Errorf("failed to check in: %v", err)
				return
			}
			if !out.Duplicate {
				mu.Lock()
				awarded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if awarded != 1 {
		t.Errorf("expected exactly one award, got %d", awarded)
	}
	p, err := f.engine.Profile()
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if p.TotalXP != 10 {
		t.Errorf("TotalXP = %d, want 10", p.TotalXP)
	}
}

func TestMonotonicAcrossStreakBreak(t *testing.T) {
	f := setup(t, "2026-10-01")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-01")

	prevXP := 0
	prevLongest := 0
	check := func(out models.RewardOutcome) {
		t.Helper()
		if out.Profile.TotalXP < prevXP || out.Profile.LongestStreak < prevLongest {
			t.Errorf("profile went backwards: %+v", out.Profile)
		}
		if out.Profile.Level != out.Profile.TotalXP/100+1 {
			t.Errorf("level %d inconsistent with %d XP", out.Profile.Level, out.Profile.TotalXP)
		}
		prevXP, prevLongest = out.Profile.TotalXP, out.Profile.LongestStreak
	}

	for i := 0; i < 3; i++ {
		check(f.checkIn(t, "h1", ""))
		f.clock.AddDays(1)
	}
	f.clock.AddDays(2) // miss two days
	out := f.checkIn(t, "h1", "")
	check(out)

	if out.Snapshot.Streak != 1 {
		t.Errorf("streak after break = %d, want 1", out.Snapshot.Streak)
	}
	if out.Profile.LongestStreak != 3 {
		t.Errorf("longest streak = %d, want 3", out.Profile.LongestStreak)
	}
}

func TestLevelUp(t *testing.T) {
	f := setup(t, "2026-10-01")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-01")

	var out models.RewardOutcome
	for i := 1; i <= 10; i++ {
		out = f.checkIn(t, "h1", "")
		if i < 10 && out.LeveledUp {
			t.Errorf("unexpected level up on day %d at %d XP", i, out.Profile.TotalXP)
		}
		f.clock.AddDays(1)
	}

	if !out.LeveledUp || out.Level != 2 || out.Profile.TotalXP != 105 {
		t.Errorf("expected level 2 at 105 XP on day 10, got %+v", out)
	}
}

func TestUnknownHabitOrCheckIn(t *testing.T) {
	f := setup(t, "2026-10-15")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-01")
	ctx := context.Background()

	if _, err := f.engine.CheckIn(ctx, "missing", "", ""); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("CheckIn(unknown habit) error = %v, want not found", err)
	}
	if _, err := f.engine.AwardForCheckIn(ctx, "missing", "2026-10-15"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("AwardForCheckIn(unknown habit) error = %v, want not found", err)
	}
	if _, err := f.engine.AwardForCheckIn(ctx, "h1", "2026-10-15"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("AwardForCheckIn(no check-in) error = %v, want not found", err)
	}
	if _, err := f.engine.CheckIn(ctx, "h1", "2026-10-16", ""); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("CheckIn(future) error = %v, want validation", err)
	}

	p, err := f.engine.Profile()
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if p.TotalXP != 0 || len(p.Badges) != 0 {
		t.Errorf("failed calls must not mutate the profile: %+v", p)
	}
}

func TestAwardForRecordedCheckIn(t *testing.T) {
	f := setup(t, "2026-10-15")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-01")

	_, err := f.store.UpsertCheckIn(models.CheckIn{
		ID: "c1", HabitID: "h1", Day: "2026-10-15", Completed: true,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to insert check-in: %v", err)
	}

	out, err := f.engine.AwardForCheckIn(context.Background(), "h1", "2026-10-15")
	if err != nil {
		t.Fatalf("failed to award: %v", err)
	}
	if out.Duplicate || out.XPEarned != 10 || out.CheckIn.ID != "c1" {
		t.Errorf("unexpected outcome: %+v", out)
	}
}

var errBoom = errors.New("boom")

// failOnReward fails the last step of the transition.
type failOnReward struct{ storage.Provider }

func (failOnReward) AddRewardEvent(models.RewardEvent) (bool, error) { return false, errBoom }

func (f failOnReward) Atomic(fn func(storage.Provider) error) error {
	return f.Provider.Atomic(func(tx storage.Provider) error { return fn(failOnReward{tx}) })
}

func TestFailedAwardRollsBackEverything(t *testing.T) {
	f := setup(t, "2026-10-15")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-01")
	engine := New(failOnReward{f.store}, Options{Clock: f.clock})

	if _, err := engine.CheckIn(context.Background(), "h1", "", ""); !errors.Is(err, errBoom) {
		t.Fatalf("CheckIn() error = %v, want boom", err)
	}

	if _, err := f.store.GetCheckIn("h1", "2026-10-15"); !storage.IsNotFound(err) {
		t.Errorf("expected check-in to be rolled back, got %v", err)
	}
	p, err := f.engine.Profile()
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if p.TotalXP != 0 {
		t.Errorf("expected no partial XP, got %d", p.TotalXP)
	}
}

type blockingLocker struct{}

func (blockingLocker) Lock(ctx context.Context, _ string) (func(), error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestLockTimeoutIsConflict(t *testing.T) {
	f := setup(t, "2026-10-15")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-01")
	engine := New(f.store, Options{Clock: f.clock, Locker: blockingLocker{}, LockTimeout: 10 * time.Millisecond})

	if _, err := engine.CheckIn(context.Background(), "h1", "", ""); !apperrors.Is(err, apperrors.ErrConflict) {
		t.Errorf("CheckIn() with busy lock error = %v, want conflict", err)
	}
}

func TestCatalogAndHistory(t *testing.T) {
	f := setup(t, "2026-10-13")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-13")

	for i := 0; i < 3; i++ {
		f.checkIn(t, "h1", "")
		f.clock.AddDays(1)
	}

	statuses, err := f.engine.Catalog()
	if err != nil {
		t.Fatalf("failed to get catalog: %v", err)
	}
	if len(statuses) != len(DefaultRules()) {
		t.Fatalf("expected %d catalog entries, got %d", len(DefaultRules()), len(statuses))
	}
	earned := map[string]string{}
	for _, s := range statuses {
		if s.Earned {
			earned[s.Badge.ID] = s.UnlockedOn
		}
	}
	if earned["first_checkin"] != "2026-10-13" || earned["streak_3"] != "2026-10-15" || len(earned) != 2 {
		t.Errorf("unexpected earned badges: %v", earned)
	}

	history, err := f.engine.History(2)
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(history) != 2 || history[0].Day != "2026-10-15" || history[0].Streak != 3 {
		t.Errorf("unexpected history: %+v", history)
	}
}

func TestCustomCatalog(t *testing.T) {
	f := setup(t, "2026-10-15")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-15")

	calls := 0
	catalog := []models.Badge{
		{ID: "b", Name: "Custom", Unlock: func(p models.UserProfile, s models.AnalyticsSnapshot) bool {
			calls++
			return p.TotalXP == 10 && s.Streak == 1
		}},
		{ID: "never", Unlock: func(models.UserProfile, models.AnalyticsSnapshot) bool { return false }},
	}
	engine := New(f.store, Options{Clock: f.clock, Catalog: catalog, ProfileID: "alice"})

	out, err := engine.CheckIn(context.Background(), "h1", "", "")
	if err != nil {
		t.Fatalf("failed to check in: %v", err)
	}
	if ids := badgeIDs(out.NewBadges); len(ids) != 1 || ids[0] != "b" {
		t.Errorf("NewBadges = %v, want [b]", ids)
	}
	if calls != 1 {
		t.Errorf("predicate evaluated %d times, want 1", calls)
	}
	if out.Profile.ID != "alice" || engine.ProfileID() != "alice" {
		t.Errorf("unexpected profile id %q", out.Profile.ID)
	}

	// The default profile is untouched.
	p, err := f.engine.Profile()
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if p.TotalXP != 0 {
		t.Errorf("default profile XP = %d, want 0", p.TotalXP)
	}
}

func TestExclusiveSerializesDelete(t *testing.T) {
	f := setup(t, "2026-10-15")
	f.addHabit(t, "h1", models.FrequencyDaily, "2026-10-01")

	err := f.engine.Exclusive(context.Background(), func() error {
		return f.store.DeleteHabit("h1")
	})
	if err != nil {
		t.Fatalf("failed to delete under lock: %v", err)
	}
	if _, err := f.engine.CheckIn(context.Background(), "h1", "", ""); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("CheckIn after delete error = %v, want not found", err)
	}
}
