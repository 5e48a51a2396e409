package models

import "time"

// UserProfile is the singleton aggregate snapshot. It is refreshed
// opportunistically and may lag behind the session table.
type UserProfile struct {
	DisplayName       string    `json:"display_name"`
	FocusMinutes      int       `json:"focus_minutes"`
	CompletedTasks    int       `json:"completed_tasks"`
	CompletedSessions int       `json:"completed_sessions"`
	PerfectSessions   int       `json:"perfect_sessions"`
	DayStreak         int       `json:"day_streak"`
	LastActiveDate    string    `json:"last_active_date,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}
