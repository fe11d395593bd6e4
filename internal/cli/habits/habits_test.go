package habits

import (
	"strings"
	"testing"

	"github.com/julianstephens/habithero/internal/cli/clitest"
	apperrors "github.com/julianstephens/habithero/internal/errors"
)

func addHabit(t *testing.T, env *clitest.Env, name, freq, start string) {
	t.Helper()
	cmd := &HabitAddCmd{Name: name, Category: "fitness", Frequency: freq, Start: start}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("failed to add habit %q: %v", name, err)
	}
}

func TestHabitAddAndList(t *testing.T) {
	env := clitest.New(t, "2026-10-15")
	addHabit(t, env, "Run", "daily", "")

	if out := env.Output(); !strings.Contains(out, "Added habit: Run (fitness, daily, starting 2026-10-15)") {
		t.Errorf("unexpected add output: %q", out)
	}

	if err := (&HabitListCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	out := env.Output()
	if !strings.Contains(out, "Run") || !strings.Contains(out, "fitness") {
		t.Errorf("list output missing habit: %q", out)
	}
}

func TestHabitAddValidation(t *testing.T) {
	env := clitest.New(t, "2026-10-15")

	tests := []struct {
		name string
		cmd  HabitAddCmd
	}{
		{"empty name", HabitAddCmd{Name: " ", Category: "health", Frequency: "daily"}},
		{"bad category", HabitAddCmd{Name: "Nap", Category: "leisure", Frequency: "daily"}},
		{"bad start", HabitAddCmd{Name: "Nap", Category: "health", Frequency: "daily", Start: "15-10-2026"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(env.Ctx)
			if !apperrors.Is(err, apperrors.ErrValidation) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestHabitListEmpty(t *testing.T) {
	env := clitest.New(t, "2026-10-15")
	if err := (&HabitListCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "No habits found") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestHabitShow(t *testing.T) {
	env := clitest.New(t, "2026-10-15")
	addHabit(t, env, "Run", "daily", "2026-10-13")
	for _, day := range []string{"2026-10-14", "2026-10-15"} {
		if _, _, err := env.Ctx.Ledger.Record(mustFind(t, env, "Run"), day, "felt good"); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
	}
	env.Output()

	if err := (&HabitShowCmd{Habit: "run", Recent: 1}).Run(env.Ctx); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	out := env.Output()
	for _, want := range []string{"Streak:        2", "Success rate:  67% (2 of 3 periods)", "2026-10-15  felt good"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "2026-10-14  felt good") {
		t.Errorf("show should list only the most recent check-in:\n%s", out)
	}
}

func TestHabitDelete(t *testing.T) {
	env := clitest.New(t, "2026-10-15")
	addHabit(t, env, "Run", "daily", "")

	// Declined prompt keeps the habit
	if err := (&HabitDeleteCmd{Habit: "Run"}).Run(env.Ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Delete cancelled.") {
		t.Errorf("expected cancellation, got %q", out)
	}

	env.Ctx.In = strings.NewReader("yes\n")
	if err := (&HabitDeleteCmd{Habit: "Run"}).Run(env.Ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Deleted habit: Run") {
		t.Errorf("unexpected output: %q", out)
	}
	if _, err := env.Ctx.Registry.Find("Run"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("habit still present after delete: %v", err)
	}

	// The automatic backup ran before the delete
	backups, err := env.Ctx.BackupManager().List()
	if err != nil || len(backups) != 1 {
		t.Errorf("expected one automatic backup, got %d (%v)", len(backups), err)
	}

	if err := (&HabitDeleteCmd{Habit: "Run", Yes: true}).Run(env.Ctx); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("deleting a missing habit: error = %v, want not found", err)
	}
}

func TestHabitLog(t *testing.T) {
	env := clitest.New(t, "2026-10-15")
	addHabit(t, env, "Run", "daily", "2026-10-13")
	if _, _, err := env.Ctx.Ledger.Record(mustFind(t, env, "Run"), "2026-10-14", ""); err != nil {
		t.Fatalf("failed to record: %v", err)
	}
	env.Output()

	if err := (&HabitLogCmd{Days: 4}).Run(env.Ctx); err != nil {
		t.Fatalf("log failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(env.Output()), "\n")
	last := lines[len(lines)-1]
	// 10/12 is before the start, 10/13 missed, 10/14 done, 10/15 open
	want := "Run" + strings.Repeat(" ", logNameWidth-3) + "         .     x     ."
	if last != want {
		t.Errorf("log row = %q, want %q", last, want)
	}
}

func TestHabitSuggest(t *testing.T) {
	env := clitest.New(t, "2026-10-15")
	addHabit(t, env, "Walk 10,000 steps", "daily", "")
	env.Output()

	if err := (&HabitSuggestCmd{Category: "fitness"}).Run(env.Ctx); err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	out := env.Output()
	if strings.Contains(out, "Walk 10,000 steps") {
		t.Errorf("suggest should skip habits already tracked:\n%s", out)
	}
	if !strings.Contains(out, "Stretch for 10 minutes") {
		t.Errorf("suggest output missing fitness idea:\n%s", out)
	}

	if err := (&HabitSuggestCmd{Category: "leisure"}).Run(env.Ctx); err == nil {
		t.Error("expected error for unknown category")
	}
}

func mustFind(t *testing.T, env *clitest.Env, name string) string {
	t.Helper()
	h, err := env.Ctx.Registry.Find(name)
	if err != nil {
		t.Fatalf("failed to find %q: %v", name, err)
	}
	return h.ID
}
