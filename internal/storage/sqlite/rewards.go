package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/storage"
)

const rewardColumns = "habit_id, day, profile_id, xp, streak, level_after, badges, created_at"

func scanRewardEvent(row scanner) (models.RewardEvent, error) {
	var e models.RewardEvent
	var badges, createdAt string

	if err := row.Scan(&e.HabitID, &e.Day, &e.ProfileID, &e.XP, &e.Streak, &e.LevelAfter, &badges, &createdAt); err != nil {
		return models.RewardEvent{}, err
	}
	if badges != "" {
		e.Badges = strings.Split(badges, ",")
	}

	var err error
	e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.RewardEvent{}, fmt.Errorf("failed to parse created_at for reward %s/%s: %w", e.HabitID, e.Day, err)
	}
	return e, nil
}

func (s *Store) AddRewardEvent(e models.RewardEvent) (bool, error) {
	result, err := s.q.Exec(`
		INSERT INTO reward_events (`+rewardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO NOTHING`,
		e.HabitID, e.Day, e.ProfileID, e.XP, e.Streak, e.LevelAfter,
		strings.Join(e.Badges, ","), e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, fmt.Errorf("failed to insert reward event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *Store) GetRewardEvent(habitID, day string) (models.RewardEvent, error) {
	e, err := scanRewardEvent(s.q.QueryRow(
		"SELECT "+rewardColumns+" FROM reward_events WHERE habit_id = ? AND day = ?", habitID, day))
	if errors.Is(err, sql.ErrNoRows) {
		return models.RewardEvent{}, storage.ErrNotFound
	}
	return e, err
}

func (s *Store) GetRewardEvents(profileID string, limit int) ([]models.RewardEvent, error) {
	query := "SELECT " + rewardColumns + " FROM reward_events WHERE profile_id = ? ORDER BY created_at DESC, rowid DESC"
	args := []any{profileID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reward events: %w", err)
	}
	defer rows.Close()

	events := []models.RewardEvent{}
	for rows.Next() {
		e, err := scanRewardEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
