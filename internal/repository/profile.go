package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/storage"
)

// Profile reads and refreshes the singleton user_profile row.
type Profile struct {
	h   storage.Handle
	now clock
}

func NewProfile(h storage.Handle) *Profile {
	return &Profile{h: h, now: systemClock}
}

func scanProfile(row storage.Scanner) (models.UserProfile, error) {
	var p models.UserProfile
	var lastActive sql.NullString
	var updatedAt string
	if err := row.Scan(&p.DisplayName, &p.FocusMinutes, &p.CompletedTasks, &p.CompletedSessions,
		&p.PerfectSessions, &p.DayStreak, &lastActive, &updatedAt); err != nil {
		return models.UserProfile{}, err
	}
	p.LastActiveDate = lastActive.String
	var err error
	if p.UpdatedAt, err = storage.ParseTimestamp(updatedAt); err != nil {
		return models.UserProfile{}, fmt.Errorf("user profile: %w", err)
	}
	return p, nil
}

func (r *Profile) Get(ctx context.Context) (models.UserProfile, error) {
	p, err := storage.SelectOne(ctx, r.h, `
		SELECT display_name, focus_minutes, completed_tasks, completed_sessions,
			perfect_sessions, day_streak, last_active_date, updated_at
		FROM user_profile WHERE id = ?`, scanProfile, constants.ProfileID)
	return p, storage.Wrap("select", "user_profile", err)
}

func (r *Profile) SetDisplayName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("display name cannot be empty")
	}
	res, err := storage.Update(ctx, r.h, "user_profile", storage.Fields{
		"display_name": name,
		"updated_at":   storage.FormatTimestamp(r.now()),
	}, "id = ?", constants.ProfileID)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SaveSnapshot overwrites the aggregate counters. DisplayName in snap is ignored.
func (r *Profile) SaveSnapshot(ctx context.Context, snap models.UserProfile) error {
	res, err := storage.Update(ctx, r.h, "user_profile", storage.Fields{
		"focus_minutes":      snap.FocusMinutes,
		"completed_tasks":    snap.CompletedTasks,
		"completed_sessions": snap.CompletedSessions,
		"perfect_sessions":   snap.PerfectSessions,
		"day_streak":         snap.DayStreak,
		"last_active_date":   storage.NullableString(snap.LastActiveDate),
		"updated_at":         storage.FormatTimestamp(r.now()),
	}, "id = ?", constants.ProfileID)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
