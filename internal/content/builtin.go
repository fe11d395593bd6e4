package content

import "github.com/julianstephens/habithero/internal/models"

var builtinQuotes = []Quote{
	{Text: "We are what we repeatedly do. Excellence, then, is not an act, but a habit.", Author: "Will Durant"},
	{Text: "Motivation is what gets you started. Habit is what keeps you going.", Author: "Jim Ryun"},
	{Text: "Small daily improvements over time lead to stunning results.", Author: "Robin Sharma"},
	{Text: "Success is the sum of small efforts, repeated day in and day out.", Author: "Robert Collier"},
	{Text: "The secret of getting ahead is getting started.", Author: "Mark Twain"},
	{Text: "You will never change your life until you change something you do daily.", Author: "John C. Maxwell"},
	{Text: "Don't break the chain."},
}

var builtinSuggestions = []Suggestion{
	{Name: "Drink 8 glasses of water", Category: models.CategoryHealth, Frequency: models.FrequencyDaily},
	{Name: "Sleep before midnight", Category: models.CategoryHealth, Frequency: models.FrequencyDaily},
	{Name: "Cook a meal at home", Category: models.CategoryHealth, Frequency: models.FrequencyWeekly},
	{Name: "Walk 10,000 steps", Category: models.CategoryFitness, Frequency: models.FrequencyDaily},
	{Name: "Stretch for 10 minutes", Category: models.CategoryFitness, Frequency: models.FrequencyDaily},
	{Name: "Go for a long run", Category: models.CategoryFitness, Frequency: models.FrequencyWeekly},
	{Name: "Plan tomorrow's top 3 tasks", Category: models.CategoryWork, Frequency: models.FrequencyDaily},
	{Name: "Clear your inbox", Category: models.CategoryWork, Frequency: models.FrequencyDaily},
	{Name: "Review the week's goals", Category: models.CategoryWork, Frequency: models.FrequencyWeekly},
	{Name: "Read 20 pages", Category: models.CategoryLearning, Frequency: models.FrequencyDaily},
	{Name: "Practice a language for 15 minutes", Category: models.CategoryLearning, Frequency: models.FrequencyDaily},
	{Name: "Finish an online lesson", Category: models.CategoryLearning, Frequency: models.FrequencyWeekly},
	{Name: "Meditate for 10 minutes", Category: models.CategoryMentalHealth, Frequency: models.FrequencyDaily},
	{Name: "Write in a journal", Category: models.CategoryMentalHealth, Frequency: models.FrequencyDaily},
	{Name: "Call a friend", Category: models.CategoryMentalHealth, Frequency: models.FrequencyWeekly},
	{Name: "Work 90 minutes without distractions", Category: models.CategoryProductivity, Frequency: models.FrequencyDaily},
	{Name: "Tidy your desk", Category: models.CategoryProductivity, Frequency: models.FrequencyDaily},
	{Name: "Do a weekly review", Category: models.CategoryProductivity, Frequency: models.FrequencyWeekly},
}
