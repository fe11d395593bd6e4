package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/storage"
)

const checkInColumns = "id, habit_id, day, completed, notes, created_at, updated_at"

func scanCheckIn(row scanner) (models.CheckIn, error) {
	var c models.CheckIn
	var completed int
	var createdAt, updatedAt string

	if err := row.Scan(&c.ID, &c.HabitID, &c.Day, &completed, &c.Notes, &createdAt, &updatedAt); err != nil {
		return models.CheckIn{}, err
	}
	c.Completed = completed == 1

	var err error
	c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("failed to parse created_at for check-in %s: %w", c.ID, err)
	}
	c.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("failed to parse updated_at for check-in %s: %w", c.ID, err)
	}
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) UpsertCheckIn(c models.CheckIn) (bool, error) {
	created := false
	err := s.Atomic(func(p storage.Provider) error {
		tx := p.(*Store)

		result, err := tx.q.Exec(`
			INSERT INTO checkins (`+checkInColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(habit_id, day) DO NOTHING`,
			c.ID, c.HabitID, c.Day, boolToInt(c.Completed), c.Notes,
			c.CreatedAt.UTC().Format(time.RFC3339Nano), c.UpdatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to insert check-in: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if n > 0 {
			created = true
			return nil
		}

		// Existing row: only the notes change.
		_, err = tx.q.Exec(`
			UPDATE checkins SET notes = ?, updated_at = ?
			WHERE habit_id = ? AND day = ?`,
			c.Notes, c.UpdatedAt.UTC().Format(time.RFC3339Nano), c.HabitID, c.Day)
		if err != nil {
			return fmt.Errorf("failed to update check-in: %w", err)
		}
		return nil
	})
	return created, err
}

func (s *Store) GetCheckIn(habitID, day string) (models.CheckIn, error) {
	c, err := scanCheckIn(s.q.QueryRow(
		"SELECT "+checkInColumns+" FROM checkins WHERE habit_id = ? AND day = ?", habitID, day))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CheckIn{}, storage.ErrNotFound
	}
	return c, err
}

func (s *Store) GetCheckIns(habitID string) ([]models.CheckIn, error) {
	rows, err := s.q.Query(
		"SELECT "+checkInColumns+" FROM checkins WHERE habit_id = ? ORDER BY day", habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	defer rows.Close()

	checkIns := []models.CheckIn{}
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, rows.Err()
}
