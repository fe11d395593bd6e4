package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/keyring"
	"github.com/julianstephens/habithero/internal/period"
	"github.com/julianstephens/habithero/internal/profile"
	"github.com/julianstephens/habithero/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database cannot be loaded.
	needsDB bool
	warn    bool
	run     func(*cli.Context) error
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Backups present", warn: true, run: checkBackupsPresent},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Profile lock", run: checkLock},
	{name: "Keyring", warn: true, run: checkKeyring},
	{name: "Habit integrity", needsDB: true, run: checkHabitsIntegrity},
	{name: "Check-in dates", needsDB: true, run: checkCheckInDates},
	{name: "Profile consistency", needsDB: true, run: checkProfile},
}

var errSkipped = errors.New("not applicable")

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	failed := false
	dbReachable := true
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			ctx.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			failed = true
			if c.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if failed {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if ctx.Store == nil {
		return fmt.Errorf("no storage configured")
	}
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	_, err := ctx.Store.GetAllHabits()
	return err
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return fmt.Errorf("%w: storage has no schema version", errSkipped)
	}
	current, err := m.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := m.LatestSchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d; run 'habithero migrate'", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := ctx.BackupManager()
	if mgr == nil {
		return fmt.Errorf("%w: PostgreSQL storage", errSkipped)
	}
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s; run 'habithero backup'", mgr.Dir())
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("newest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	if _, err := ctx.Config.Location(); err != nil {
		return err
	}
	now := ctx.Clock.Now()
	if now.Year() < 2000 || now.Year() > 2100 {
		return fmt.Errorf("system clock reports an unlikely year: %d", now.Year())
	}
	return nil
}

type pinger interface {
	Ping(context.Context) error
}

func checkLock(ctx *cli.Context) error {
	p, ok := ctx.Locker.(pinger)
	if !ok {
		return nil
	}
	pctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Ping(pctx); err != nil {
		return fmt.Errorf("lock backend unreachable: %w", err)
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if ctx.Config.Database != constants.DatabaseFromKeyring {
		return fmt.Errorf("%w: database not read from keyring", errSkipped)
	}
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	_, err := keyring.GetConnectionString()
	return err
}

func checkHabitsIntegrity(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}
	var problems []string
	for _, h := range habits {
		if !h.Category.Valid() {
			problems = append(problems, fmt.Sprintf("habit %q has unknown category %q", h.Name, h.Category))
		}
		if !h.Frequency.Valid() {
			problems = append(problems, fmt.Sprintf("habit %q has unknown frequency %q", h.Name, h.Frequency))
		}
		if !period.ValidateDay(h.StartDate) {
			problems = append(problems, fmt.Sprintf("habit %q has invalid start date %q", h.Name, h.StartDate))
		}
	}
	return joinProblems(problems)
}

func checkCheckInDates(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}
	today := ctx.Today()
	var problems []string
	for _, h := range habits {
		checkIns, err := ctx.Store.GetCheckIns(h.ID)
		if err != nil {
			return err
		}
		for _, ci := range checkIns {
			switch {
			case !period.ValidateDay(ci.Day):
				problems = append(problems, fmt.Sprintf("%s: invalid day %q", h.Name, ci.Day))
			case ci.Day < h.StartDate:
				problems = append(problems, fmt.Sprintf("%s: check-in %s before start date %s", h.Name, ci.Day, h.StartDate))
			case ci.Day > today:
				problems = append(problems, fmt.Sprintf("%s: check-in %s is in the future", h.Name, ci.Day))
			}
		}
	}
	return joinProblems(problems)
}

func checkProfile(ctx *cli.Context) error {
	p, err := ctx.Engine.Profile()
	if err != nil {
		return err
	}
	if p.TotalXP < 0 || p.LongestStreak < 0 {
		return fmt.Errorf("profile %s has negative totals", p.ID)
	}
	if want := profile.LevelFor(p.TotalXP); p.Level != want {
		return fmt.Errorf("profile %s is level %d but %d XP means level %d", p.ID, p.Level, p.TotalXP, want)
	}
	return nil
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	errs := make([]error, len(problems))
	for i, p := range problems {
		errs[i] = errors.New(p)
	}
	return errors.Join(errs...)
}
