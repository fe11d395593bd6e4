package models

import (
	"sort"
	"time"
)

// UserProfile is the cumulative reward state of one profile.
type UserProfile struct {
	ID            string            `json:"id"`
	TotalXP       int               `json:"total_xp"`
	Level         int               `json:"level"`
	LongestStreak int               `json:"longest_streak"`
	Badges        map[string]string `json:"badges"` // badge id -> day unlocked
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (p UserProfile) HasBadge(id string) bool {
	_, ok := p.Badges[id]
	return ok
}

// BadgeIDs returns the earned badge ids sorted by unlock day, then id.
func (p UserProfile) BadgeIDs() []string {
	ids := make([]string, 0, len(p.Badges))
	for id := range p.Badges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		di, dj := p.Badges[ids[i]], p.Badges[ids[j]]
		if di != dj {
			return di < dj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Clone returns a copy that shares no state with p.
func (p UserProfile) Clone() UserProfile {
	c := p
	c.Badges = make(map[string]string, len(p.Badges))
	for id, day := range p.Badges {
		c.Badges[id] = day
	}
	return c
}

// Badge is a catalog entry. Unlock is evaluated against the profile after the
// XP update and the snapshot of the habit that was just checked in.
type Badge struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Unlock      UnlockFunc `json:"-"`
}

// UnlockFunc is a badge predicate.
type UnlockFunc func(UserProfile, AnalyticsSnapshot) bool

// BadgeStatus pairs a catalog badge with the profile's progress on it.
type BadgeStatus struct {
	Badge      Badge  `json:"badge"`
	Earned     bool   `json:"earned"`
	UnlockedOn string `json:"unlocked_on,omitempty"`
}

// RewardEvent records the award for one (habit, day). At most one exists per key.
type RewardEvent struct {
	HabitID    string    `json:"habit_id"`
	Day        string    `json:"day"`
	ProfileID  string    `json:"profile_id"`
	XP         int       `json:"xp"`
	Streak     int       `json:"streak"`
	LevelAfter int       `json:"level_after"`
	Badges     []string  `json:"badges,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RewardOutcome is the single result returned for a check-in.
type RewardOutcome struct {
	XPEarned  int               `json:"xp_earned"`
	LeveledUp bool              `json:"leveled_up"`
	Level     int               `json:"level"`
	NewBadges []Badge           `json:"new_badges"`
	Duplicate bool              `json:"duplicate"`
	CheckIn   CheckIn           `json:"checkin"`
	Snapshot  AnalyticsSnapshot `json:"snapshot"`
	Profile   UserProfile       `json:"profile"`
}
