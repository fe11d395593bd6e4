package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/storage"
)

func (s *Store) getProfile(id string, forUpdate bool) (models.UserProfile, error) {
	p := models.UserProfile{ID: id, Badges: map[string]string{}}

	query := "SELECT total_xp, level, longest_streak, updated_at FROM profiles WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	err := s.q.QueryRow(query, id).Scan(&p.TotalXP, &p.Level, &p.LongestStreak, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProfile{}, storage.ErrNotFound
	}
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to get profile: %w", err)
	}

	rows, err := s.q.Query("SELECT badge_id, unlocked_on FROM profile_badges WHERE profile_id = $1", id)
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

func (s *Store) GetProfile(id string) (models.UserProfile, error) {
	return s.getProfile(id, false)
}

// GetProfileForUpdate takes a row lock held until the enclosing transaction ends.
func (s *Store) GetProfileForUpdate(id string) (models.UserProfile, error) {
	_, err := s.q.Exec(`
		INSERT INTO profiles (id, total_xp, level, longest_streak, updated_at)
		VALUES ($1, 0, 1, 0, $2)
		ON CONFLICT (id) DO NOTHING`, id, time.Now().UTC())
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to create profile: %w", err)
	}
	return s.getProfile(id, s.inTx)
}

func (s *Store) SaveProfile(p models.UserProfile) error {
	return s.Atomic(func(tp storage.Provider) error {
		tx := tp.(*Store)

		_, err := tx.q.Exec(`
			INSERT INTO profiles (id, total_xp, level, longest_streak, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				total_xp = EXCLUDED.total_xp,
				level = EXCLUDED.level,
				longest_streak = EXCLUDED.longest_streak,
				updated_at = EXCLUDED.updated_at`,
			p.ID, p.TotalXP, p.Level, p.LongestStreak, p.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		if len(p.Badges) == 0 {
			return nil
		}
		ids := make([]string, 0, len(p.Badges))
		days := make([]string, 0, len(p.Badges))
		for id, day := range p.Badges {
			ids = append(ids, id)
			days = append(days, day)
		}
		_, err = tx.q.Exec(`
			INSERT INTO profile_badges (profile_id, badge_id, unlocked_on)
			SELECT $1, b.id, b.day FROM unnest($2::text[], $3::text[]) AS b(id, day)
			ON CONFLICT (profile_id, badge_id) DO NOTHING`,
			p.ID, pq.Array(ids), pq.Array(days))
		if err != nil {
			return fmt.Errorf("failed to save badges %s: %w", strings.Join(ids, ","), err)
		}
		return nil
	})
}
