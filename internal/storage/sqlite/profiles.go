package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/storage"
)

func (s *Store) GetProfile(id string) (models.UserProfile, error) {
	p := models.UserProfile{ID: id, Badges: map[string]string{}}
	var updatedAt string

	err := s.q.QueryRow(`
		SELECT total_xp, level, longest_streak, updated_at
		FROM profiles WHERE id = ?`, id).
		Scan(&p.TotalXP, &p.Level, &p.LongestStreak, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProfile{}, storage.ErrNotFound
	}
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to get profile: %w", err)
	}

	p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to parse updated_at for profile %s: %w", id, err)
	}

	rows, err := s.q.Query("SELECT badge_id, unlocked_on FROM profile_badges WHERE profile_id = ?", id)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var badgeID, unlockedOn string
		if err := rows.Scan(&badgeID, &unlockedOn); err != nil {
			return models.UserProfile{}, err
		}
		p.Badges[badgeID] = unlockedOn
	}
	return p, rows.Err()
}

// GetProfileForUpdate relies on the immediate transaction already holding
// the database write lock.
func (s *Store) GetProfileForUpdate(id string) (models.UserProfile, error) {
	_, err := s.q.Exec(`
		INSERT INTO profiles (id, total_xp, level, longest_streak, updated_at)
		VALUES (?, 0, 1, 0, ?)
		ON CONFLICT(id) DO NOTHING`,
		id, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to create profile: %w", err)
	}
	return s.GetProfile(id)
}

func (s *Store) SaveProfile(p models.UserProfile) error {
	return s.Atomic(func(tp storage.Provider) error {
		tx := tp.(*Store)

		_, err := tx.q.Exec(`
			INSERT INTO profiles (id, total_xp, level, longest_streak, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				total_xp = excluded.total_xp,
				level = excluded.level,
				longest_streak = excluded.longest_streak,
				updated_at = excluded.updated_at`,
			p.ID, p.TotalXP, p.Level, p.LongestStreak, p.UpdatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		for badgeID, day := range p.Badges {
			_, err := tx.q.Exec(`
				INSERT INTO profile_badges (profile_id, badge_id, unlocked_on)
				VALUES (?, ?, ?)
				ON CONFLICT(profile_id, badge_id) DO NOTHING`,
				p.ID, badgeID, day)
			if err != nil {
				return fmt.Errorf("failed to save badge %s: %w", badgeID, err)
			}
		}
		return nil
	})
}
