package rewards

import (
	"encoding/json"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/models"
)

// Summary aggregates the snapshots of every habit.
type Summary struct {
	AsOf          string                     `json:"as_of"`
	Habits        int                        `json:"habits"`
	TotalCheckIns int                        `json:"total_checkins"`
	BestStreak    int                        `json:"best_streak"`
	BestHabit     string                     `json:"best_habit,omitempty"`
	AverageRate   int                        `json:"average_rate"`
	Snapshots     []models.AnalyticsSnapshot `json:"snapshots"`
}

// Summarize assumes snapshots[i] belongs to habits[i].
func Summarize(asOf string, habits []models.Habit, snapshots []models.AnalyticsSnapshot) Summary {
	s := Summary{AsOf: asOf, Habits: len(habits), Snapshots: snapshots}
	if s.Snapshots == nil {
		s.Snapshots = []models.AnalyticsSnapshot{}
	}
	rateSum := 0
	for i, snap := range snapshots {
		s.TotalCheckIns += snap.TotalCheckIns
		rateSum += snap.SuccessRate
		if snap.Streak > s.BestStreak {
			s.BestStreak = snap.Streak
			s.BestHabit = habits[i].Name
		}
	}
	if len(snapshots) > 0 {
		s.AverageRate = rateSum / len(snapshots)
	}
	return s
}

type StatsCmd struct {
	JSON bool `help:"Print the statistics as JSON."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Registry.List()
	if err != nil {
		return err
	}
	snapshots, err := ctx.Analytics.ComputeAll(habits)
	if err != nil {
		return err
	}
	s := Summarize(ctx.Today(), habits, snapshots)

	if c.JSON {
		enc := json.NewEncoder(ctx.Stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	ctx.Printf("Statistics as of %s\n\n", s.AsOf)
	ctx.Printf("  Habits:               %d\n", s.Habits)
	ctx.Printf("  Total check-ins:      %d\n", s.TotalCheckIns)
	ctx.Printf("  Average success rate: %d%%\n", s.AverageRate)
	if s.BestHabit != "" {
		ctx.Printf("  Best current streak:  %d (%s)\n", s.BestStreak, s.BestHabit)
	}
	return nil
}
