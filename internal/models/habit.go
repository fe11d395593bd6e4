package models

import "time"

type Category string

const (
	CategoryHealth       Category = "health"
	CategoryFitness      Category = "fitness"
	CategoryWork         Category = "work"
	CategoryLearning     Category = "learning"
	CategoryMentalHealth Category = "mental_health"
	CategoryProductivity Category = "productivity"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryHealth,
	CategoryFitness,
	CategoryWork,
	CategoryLearning,
	CategoryMentalHealth,
	CategoryProductivity,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// Habit represents a recurring practice to track
type Habit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Frequency Frequency `json:"frequency"`
	StartDate string    `json:"start_date"` // YYYY-MM-DD format
	CreatedAt time.Time `json:"created_at"`
}

// CheckIn represents a single day's completion record of a habit
type CheckIn struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	Day       string    `json:"day"` // YYYY-MM-DD format
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnalyticsSnapshot is derived from a habit's check-ins as of a given day.
type AnalyticsSnapshot struct {
	HabitID          string `json:"habit_id"`
	Streak           int    `json:"streak"`
	SuccessRate      int    `json:"success_rate"`
	TotalCheckIns    int    `json:"total_checkins"`
	ElapsedPeriods   int    `json:"elapsed_periods"`
	CompletedPeriods int    `json:"completed_periods"`
	LastCheckIn      string `json:"last_checkin,omitempty"`
	AsOf             string `json:"as_of"`
}
