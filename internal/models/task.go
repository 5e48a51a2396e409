package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/pomolit/internal/constants"
)

type Task struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Date               string    `json:"date"`               // YYYY-MM-DD
	DueDate            string    `json:"due_date,omitempty"` // YYYY-MM-DD
	Completed          bool      `json:"completed"`
	TargetPomodoros    int       `json:"target_pomodoros"`
	CompletedPomodoros int       `json:"completed_pomodoros"`
	FocusSeconds       int       `json:"focus_seconds"`
	Tags               []string  `json:"tags,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Version            int       `json:"version"`
}

// FocusMinutes converts the accumulated focus time for presentation.
func (t Task) FocusMinutes() int {
	return t.FocusSeconds / 60
}

// Validate checks the invariants the store relies on. CompletedPomodoros may
// exceed TargetPomodoros; that is allowed.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task title cannot be empty")
	}
	if err := ValidateDate(t.Date); err != nil {
		return fmt.Errorf("task date: %w", err)
	}
	if t.DueDate != "" {
		if err := ValidateDate(t.DueDate); err != nil {
			return fmt.Errorf("task due date: %w", err)
		}
	}
	if t.TargetPomodoros < 0 || t.CompletedPomodoros < 0 || t.FocusSeconds < 0 {
		return fmt.Errorf("task counters cannot be negative")
	}
	return nil
}

// TaskPatch carries a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title           *string
	Description     *string
	Date            *string
	DueDate         *string
	Completed       *bool
	TargetPomodoros *int
	Tags            *[]string
}

// Apply shallow-merges the patch into t.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.TargetPomodoros != nil {
		t.TargetPomodoros = *p.TargetPomodoros
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), (*p.Tags)...)
	}
	return t
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.DueDate == nil &&
		p.Completed == nil && p.TargetPomodoros == nil && p.Tags == nil
}

// ValidateDate checks a YYYY-MM-DD date string.
func ValidateDate(date string) error {
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return nil
}
