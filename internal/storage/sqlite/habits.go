package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/storage"
)

const habitColumns = "id, name, category, frequency, start_date, created_at"

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var category, frequency, createdAt string

	if err := row.Scan(&h.ID, &h.Name, &category, &frequency, &h.StartDate, &createdAt); err != nil {
		return models.Habit{}, err
	}
	h.Category = models.Category(category)
	h.Frequency = models.Frequency(frequency)

	var err error
	h.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	return h, nil
}

func (s *Store) AddHabit(habit models.Habit) error {
	_, err := s.q.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.Name, string(habit.Category), string(habit.Frequency),
		habit.StartDate, habit.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	h, err := scanHabit(s.q.QueryRow("SELECT "+habitColumns+" FROM habits WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	return h, err
}

// GetHabitByName matches case-insensitively and returns the oldest habit
// when several share a name.
func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	h, err := scanHabit(s.q.QueryRow(`
		SELECT `+habitColumns+` FROM habits
		WHERE name = ? COLLATE NOCASE
		ORDER BY created_at, rowid LIMIT 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	return h, err
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	rows, err := s.q.Query("SELECT " + habitColumns + " FROM habits ORDER BY created_at, rowid")
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

func (s *Store) DeleteHabit(id string) error {
	return s.Atomic(func(p storage.Provider) error {
		tx := p.(*Store)

		if _, err := tx.q.Exec("DELETE FROM reward_events WHERE habit_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete reward events: %w", err)
		}
		if _, err := tx.q.Exec("DELETE FROM checkins WHERE habit_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete check-ins: %w", err)
		}

		result, err := tx.q.Exec("DELETE FROM habits WHERE id = ?", id)
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
	})
}
