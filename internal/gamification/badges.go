package gamification

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habithero/internal/models"
)

// Metric names a number a badge rule can test.
type Metric string

const (
	// Snapshot metrics, from the habit that was just checked in.
	MetricStreak        Metric = "streak"
	MetricSuccessRate   Metric = "success_rate"
	MetricTotalCheckIns Metric = "total_checkins"

	// Profile metrics, after the XP of the check-in has been added.
	MetricTotalXP       Metric = "total_xp"
	MetricLevel         Metric = "level"
	MetricLongestStreak Metric = "longest_streak"
	MetricBadgeCount    Metric = "badge_count"
)

func (m Metric) value(p models.UserProfile, s models.AnalyticsSnapshot) (int, bool) {
	switch m {
	case MetricStreak:
		return s.Streak, true
	case MetricSuccessRate:
		return s.SuccessRate, true
	case MetricTotalCheckIns:
		return s.TotalCheckIns, true
	case MetricTotalXP:
		return p.TotalXP, true
	case MetricLevel:
		return p.Level, true
	case MetricLongestStreak:
		return p.LongestStreak, true
	case MetricBadgeCount:
		return len(p.Badges), true
	}
	return 0, false
}

// Rule is a declarative badge: it unlocks once Metric reaches Min. Rules can
// be loaded from the config file.
type Rule struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Icon        string `toml:"icon"`
	Metric      Metric `toml:"metric"`
	Min         int    `toml:"min"`
	// MinElapsed guards rate rules against trivially perfect new habits.
	MinElapsed int `toml:"min_elapsed"`
}

// Badge compiles the rule into a catalog entry.
func (r Rule) Badge() (models.Badge, error) {
	if strings.TrimSpace(r.ID) == "" {
		return models.Badge{}, fmt.Errorf("badge rule has no id")
	}
	if _, ok := r.Metric.value(models.UserProfile{}, models.AnalyticsSnapshot{}); !ok {
		return models.Badge{}, fmt.Errorf("badge %s: unknown metric %q", r.ID, r.Metric)
	}
	if r.Min < 1 {
		return models.Badge{}, fmt.Errorf("badge %s: min must be at least 1", r.ID)
	}

	name := r.Name
	if name == "" {
		name = r.ID
	}
	metric, threshold, minElapsed := r.Metric, r.Min, r.MinElapsed
	return models.Badge{
		ID:          r.ID,
		Name:        name,
		Description: r.Description,
		Icon:        r.Icon,
		Unlock: func(p models.UserProfile, s models.AnalyticsSnapshot) bool {
			if s.ElapsedPeriods < minElapsed {
				return false
			}
			v, _ := metric.value(p, s)
			return v >= threshold
		},
	}, nil
}

// DefaultRules is the built-in catalog, in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{ID: "first_checkin", Name: "First Step", Description: "Complete your first check-in", Icon: "🎯", Metric: MetricTotalCheckIns, Min: 1},
		{ID: "streak_3", Name: "Warming Up", Description: "Reach a 3 period streak", Icon: "✨", Metric: MetricStreak, Min: 3},
		{ID: "streak_7", Name: "Week of Fire", Description: "Reach a 7 period streak", Icon: "🔥", Metric: MetricStreak, Min: 7},
		{ID: "streak_30", Name: "Iron Will", Description: "Reach a 30 period streak", Icon: "💪", Metric: MetricStreak, Min: 30},
		{ID: "checkins_50", Name: "Regular", Description: "Check in 50 times on one habit", Icon: "📅", Metric: MetricTotalCheckIns, Min: 50},
		{ID: "consistent", Name: "Consistent", Description: "Keep a 90% success rate over 14 periods", Icon: "🎖️", Metric: MetricSuccessRate, Min: 90, MinElapsed: 14},
		{ID: "level_5", Name: "Apprentice", Description: "Reach level 5", Icon: "📚", Metric: MetricLevel, Min: 5},
		{ID: "level_10", Name: "Master", Description: "Reach level 10", Icon: "🧙", Metric: MetricLevel, Min: 10},
		{ID: "xp_1000", Name: "Thousand Club", Description: "Earn 1000 XP", Icon: "🏆", Metric: MetricTotalXP, Min: 1000},
		{ID: "collector", Name: "Collector", Description: "Earn 5 other badges", Icon: "🏅", Metric: MetricBadgeCount, Min: 5},
	}
}

// BuildCatalog compiles rules in order. Ids must be unique.
func BuildCatalog(rules []Rule) ([]models.Badge, error) {
	seen := make(map[string]bool, len(rules))
	catalog := make([]models.Badge, 0, len(rules))
	for _, r := range rules {
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate badge id %q", r.ID)
		}
		seen[r.ID] = true

		b, err := r.Badge()
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, b)
	}
	return catalog, nil
}

// DefaultCatalog is BuildCatalog(DefaultRules()).
func DefaultCatalog() []models.Badge {
	catalog, err := BuildCatalog(DefaultRules())
	if err != nil {
		panic(err)
	}
	return catalog
}

// Unlocked returns the catalog badges p does not have yet whose predicate
// holds, in catalog order. Every predicate sees the same p, so a badge
// unlocked in this pass does not count toward another one until the next.
func Unlocked(catalog []models.Badge, p models.UserProfile, s models.AnalyticsSnapshot) []models.Badge {
	var unlocked []models.Badge
	for _, b := range catalog {
		if p.HasBadge(b.ID) || b.Unlock == nil {
			continue
		}
		if b.Unlock(p, s) {
			unlocked = append(unlocked, b)
		}
	}
	return unlocked
}
