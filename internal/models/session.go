package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/pomolit/internal/constants"
)

type SessionType string

const (
	SessionWork       SessionType = constants.SessionWork
	SessionShortBreak SessionType = constants.SessionShortBreak
	SessionLongBreak  SessionType = constants.SessionLongBreak
)

// ParseSessionType accepts the stored names plus the dashed spellings used on the command line.
func ParseSessionType(s string) (SessionType, error) {
	switch s {
	case "work", "focus", "pomodoro":
		return SessionWork, nil
	case "short_break", "short-break", "short":
		return SessionShortBreak, nil
	case "long_break", "long-break", "long":
		return SessionLongBreak, nil
	}
	return "", fmt.Errorf("unknown session type %q", s)
}

// Valid reports whether t is one of the stored type names.
func (t SessionType) Valid() bool {
	return t == SessionWork || t == SessionShortBreak || t == SessionLongBreak
}

func (t SessionType) IsBreak() bool {
	return t == SessionShortBreak || t == SessionLongBreak
}

// Session is a single timed work or break interval. Sessions are immutable once recorded.
type Session struct {
	ID              string      `json:"id"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
	DurationSeconds int         `json:"duration_seconds"`
	TaskID          string      `json:"task_id,omitempty"`
	Type            SessionType `json:"type"`
	Completed       bool        `json:"completed"`
	Date            string      `json:"date"` // YYYY-MM-DD, in the user's timezone
	Hour            int         `json:"hour"` // 0-23, in the user's timezone
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (s Session) IsWork() bool {
	return s.Type == SessionWork
}

// Validate checks the invariants the store relies on.
func (s Session) Validate() error {
	if !s.Type.Valid() {
		return fmt.Errorf("invalid session type %q", s.Type)
	}
	if err := ValidateDate(s.Date); err != nil {
		return fmt.Errorf("session date: %w", err)
	}
	if s.Hour < 0 || s.Hour >= constants.HoursPerDay {
		return fmt.Errorf("session hour %d out of range", s.Hour)
	}
	if s.DurationSeconds < 0 {
		return fmt.Errorf("session duration cannot be negative")
	}
	if !s.EndTime.IsZero() && s.EndTime.Before(s.StartTime) {
		return fmt.Errorf("session ends before it starts")
	}
	return nil
}
