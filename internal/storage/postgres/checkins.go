package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/storage"
)

const checkInColumns = "id, habit_id, day, completed, notes, created_at, updated_at"

func scanCheckIn(row scanner) (models.CheckIn, error) {
	var c models.CheckIn
	err := row.Scan(&c.ID, &c.HabitID, &c.Day, &c.Completed, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// UpsertCheckIn uses xmax = 0 to tell an insert from a conflict update in
// one round trip.
func (s *Store) UpsertCheckIn(c models.CheckIn) (bool, error) {
	var inserted bool
	err := s.q.QueryRow(`
		INSERT INTO checkins (`+checkInColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (habit_id, day) DO UPDATE SET
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0)`,
		c.ID, c.HabitID, c.Day, c.Completed, c.Notes, c.CreatedAt, c.UpdatedAt).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert check-in: %w", err)
	}
	return inserted, nil
}

func (s *Store) GetCheckIn(habitID, day string) (models.CheckIn, error) {
	c, err := scanCheckIn(s.q.QueryRow(
		"SELECT "+checkInColumns+" FROM checkins WHERE habit_id = $1 AND day = $2", habitID, day))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CheckIn{}, storage.ErrNotFound
	}
	return c, err
}

func (s *Store) GetCheckIns(habitID string) ([]models.CheckIn, error) {
	rows, err := s.q.Query(
		"SELECT "+checkInColumns+" FROM checkins WHERE habit_id = $1 ORDER BY day", habitID)
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
