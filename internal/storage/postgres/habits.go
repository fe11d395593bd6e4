package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/storage"
)

const habitColumns = "id, name, category, frequency, start_date, created_at"

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var category, frequency string
	if err := row.Scan(&h.ID, &h.Name, &category, &frequency, &h.StartDate, &h.CreatedAt); err != nil {
		return models.Habit{}, err
	}
	h.Category = models.Category(category)
	h.Frequency = models.Frequency(frequency)
	return h, nil
}

func (s *Store) AddHabit(habit models.Habit) error {
	_, err := s.q.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		habit.ID, habit.Name, string(habit.Category), string(habit.Frequency), habit.StartDate, habit.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	h, err := scanHabit(s.q.QueryRow("SELECT "+habitColumns+" FROM habits WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	return h, err
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	h, err := scanHabit(s.q.QueryRow(`
		SELECT `+habitColumns+` FROM habits
		WHERE lower(name) = lower($1)
		ORDER BY created_at, id LIMIT 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	return h, err
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	rows, err := s.q.Query("SELECT " + habitColumns + " FROM habits ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// DeleteHabit relies on ON DELETE CASCADE for check-ins and reward events.
func (s *Store) DeleteHabit(id string) error {
	result, err := s.q.Exec("DELETE FROM habits WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
