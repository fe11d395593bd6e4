package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestEndToEndWorkflow drives a built habithero binary through a week of
// check-ins. Build it first and point HABITHERO_BIN_DIR at its directory
// (defaults to ../../bin).
func TestEndToEndWorkflow(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}

	binDir := os.Getenv("HABITHERO_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	cliPath := filepath.Join(binDir, "habithero")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s. Please build it first.", cliPath)
	}

	tempDir := t.TempDir()
	t.Logf("Running test in temp dir: %s", tempDir)

	// Isolate from the user's config and environment
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "HABITHERO_") {
			env = append(env, e)
		}
	}
	env = append(env,
		fmt.Sprintf("HOME=%s", tempDir),
		fmt.Sprintf("HABITHERO_DATABASE=%s", filepath.Join(tempDir, "habithero.db")),
		fmt.Sprintf("HABITHERO_DATA_DIR=%s", tempDir),
		"HABITHERO_QUOTES=false",
		"HABITHERO_TIMEZONE=UTC",
	)
	config := filepath.Join(tempDir, "config.toml")
	run := func(args ...string) string {
		t.Helper()
		return runCmd(t, cliPath, env, append([]string{"--config", config}, args...)...)
	}

	t.Log("Initializing storage...")
	run("init")

	today := time.Now().UTC()
	start := today.AddDate(0, 0, -6).Format("2006-01-02")
	run("habit", "add", "Meditate", "--category", "mental_health", "--frequency", "daily", "--start", start)

	t.Log("Checking in for a week...")
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		out := run("checkin", "Meditate", "--date", day)
		if !strings.Contains(out, "Checked in Meditate for "+day) {
			t.Fatalf("unexpected check-in output for %s:\n%s", day, out)
		}
	}

	out := run("checkin", "Meditate")
	if !strings.Contains(out, "No XP awarded") {
		t.Errorf("second check-in today should be a duplicate:\n%s", out)
	}

	var stats struct {
		Habits     int `json:"habits"`
		BestStreak int `json:"best_streak"`
		Snapshots  []struct {
			Streak      int `json:"streak"`
			SuccessRate int `json:"success_rate"`
		} `json:"snapshots"`
	}
	if err := json.Unmarshal([]byte(run("stats", "--json")), &stats); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	if stats.Habits != 1 || stats.BestStreak != 7 || len(stats.Snapshots) != 1 || stats.Snapshots[0].SuccessRate != 100 {
		t.Errorf("stats = %+v", stats)
	}

	out = run("profile")
	if !strings.Contains(out, "Total XP:       75") {
		t.Errorf("expected 75 XP after a full week:\n%s", out)
	}

	out = run("badges", "--earned")
	for _, want := range []string{"First Step", "Week of Fire"} {
		if !strings.Contains(out, want) {
			t.Errorf("badges output missing %q:\n%s", want, out)
		}
	}

	t.Log("Backing up and running diagnostics...")
	run("backup", "create")
	out = run("doctor")
	if !strings.Contains(out, "All diagnostics passed!") {
		t.Errorf("doctor output:\n%s", out)
	}

	run("habit", "delete", "Meditate", "--yes")
	out = run("profile")
	if !strings.Contains(out, "Total XP:       75") {
		t.Errorf("XP should survive deleting the habit:\n%s", out)
	}
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}
