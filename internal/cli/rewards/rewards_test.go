package rewards

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/julianstephens/habithero/internal/cli/clitest"
	apperrors "github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/models"
)

func setup(t *testing.T, today string, habits ...string) *clitest.Env {
	t.Helper()
	env := clitest.New(t, today)
	for _, name := range habits {
		if _, err := env.Ctx.Registry.Create(name, models.CategoryHealth, models.FrequencyDaily, "2026-10-09"); err != nil {
			t.Fatalf("failed to create habit: %v", err)
		}
	}
	return env
}

func checkIn(t *testing.T, env *clitest.Env, habit, day string) string {
	t.Helper()
	if err := (&CheckInCmd{Habit: habit, Date: day}).Run(env.Ctx); err != nil {
		t.Fatalf("check-in %s on %s failed: %v", habit, day, err)
	}
	return env.Output()
}

func TestCheckInWeek(t *testing.T) {
	env := setup(t, "2026-10-15", "Meditate")

	out := checkIn(t, env, "Meditate", "2026-10-09")
	for _, want := range []string{"Checked in Meditate for 2026-10-09: +10 XP", "Badge unlocked: First Step", "Level 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("first check-in output missing %q:\n%s", want, out)
		}
	}

	for _, day := range []string{"2026-10-10", "2026-10-11", "2026-10-12", "2026-10-13", "2026-10-14"} {
		checkIn(t, env, "Meditate", day)
	}
	out = checkIn(t, env, "Meditate", "2026-10-15")
	if !strings.Contains(out, "+15 XP") || !strings.Contains(out, "Streak: 7 days") {
		t.Errorf("seventh check-in output:\n%s", out)
	}

	// Same day again is a duplicate
	if err := (&CheckInCmd{Habit: "meditate", Notes: "evening too"}).Run(env.Ctx); err != nil {
		t.Fatalf("duplicate check-in failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "already checked in for 2026-10-15 (notes updated). No XP awarded.") {
		t.Errorf("duplicate output:\n%s", out)
	}

	if err := (&ProfileCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	out = env.Output()
	if !strings.Contains(out, "Total XP:       75") || !strings.Contains(out, "Longest streak: 7") {
		t.Errorf("profile output:\n%s", out)
	}
}

func TestCheckInErrors(t *testing.T) {
	env := setup(t, "2026-10-15", "Meditate")

	if err := (&CheckInCmd{Habit: "Nope"}).Run(env.Ctx); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown habit: error = %v, want not found", err)
	}
	if err := (&CheckInCmd{Habit: "Meditate", Date: "2026-10-16"}).Run(env.Ctx); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("future date: error = %v, want validation", err)
	}
	if err := (&CheckInCmd{Habit: "Meditate", Date: "10/15/2026"}).Run(env.Ctx); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("bad date: error = %v, want validation", err)
	}
}

func TestCheckInPrintsQuote(t *testing.T) {
	env := setup(t, "2026-10-15", "Meditate")
	env.Ctx.Config.Quotes = true

	out := checkIn(t, env, "Meditate", "")
	if strings.Count(strings.TrimSpace(out), "\n") < 4 {
		t.Errorf("expected a quote after the outcome:\n%s", out)
	}
}

func TestBadgesAndHistory(t *testing.T) {
	env := setup(t, "2026-10-15", "Meditate", "Read")
	checkIn(t, env, "Meditate", "2026-10-14")
	checkIn(t, env, "Read", "2026-10-15")

	if err := (&BadgesCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("badges failed: %v", err)
	}
	out := env.Output()
	if !strings.Contains(out, "Badges (1/10 earned)") || !strings.Contains(out, "unlocked 2026-10-15") {
		t.Errorf("badges output:\n%s", out)
	}

	if err := (&BadgesCmd{Earned: true}).Run(env.Ctx); err != nil {
		t.Fatalf("badges failed: %v", err)
	}
	if out := env.Output(); strings.Contains(out, "[locked]") {
		t.Errorf("--earned should hide locked badges:\n%s", out)
	}

	if err := (&HistoryCmd{Limit: 1}).Run(env.Ctx); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	out = env.Output()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one event, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[1], "2026-10-15  Read") {
		t.Errorf("newest event = %q", lines[1])
	}
}

func TestHistoryEmpty(t *testing.T) {
	env := setup(t, "2026-10-15")
	if err := (&HistoryCmd{Limit: 5}).Run(env.Ctx); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "No rewards yet") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestStats(t *testing.T) {
	env := setup(t, "2026-10-15", "Meditate", "Read")
	checkIn(t, env, "Meditate", "2026-10-14")
	checkIn(t, env, "Meditate", "2026-10-15")
	checkIn(t, env, "Read", "2026-10-15")

	if err := (&StatsCmd{JSON: true}).Run(env.Ctx); err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	var s Summary
	if err := json.Unmarshal(env.Out.Bytes(), &s); err != nil {
		t.Fatalf("stats output is not JSON: %v", err)
	}
	if s.Habits != 2 || s.TotalCheckIns != 3 || s.BestStreak != 2 || s.BestHabit != "Meditate" {
		t.Errorf("summary = %+v", s)
	}
	// 2 of 7 days and 1 of 7 days
	if s.AverageRate != (29+14)/2 {
		t.Errorf("average rate = %d", s.AverageRate)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize("2026-10-15", nil, nil)
	if s.Habits != 0 || s.AverageRate != 0 || s.Snapshots == nil {
		t.Errorf("Summarize(empty) = %+v", s)
	}
}
