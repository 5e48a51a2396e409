package models

import (
	"fmt"
	"time"
)

// Analysis is a stored schedule analysis covering a date range.
type Analysis struct {
	ID          string    `json:"id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Summary     string    `json:"summary"`
	Suggestions []string  `json:"suggestions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a Analysis) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("analysis id cannot be empty")
	}
	if err := ValidateDate(a.StartDate); err != nil {
		return fmt.Errorf("analysis %s start: %w", a.ID, err)
	}
	if err := ValidateDate(a.EndDate); err != nil {
		return fmt.Errorf("analysis %s end: %w", a.ID, err)
	}
	if a.EndDate < a.StartDate {
		return fmt.Errorf("analysis %s: end date %s is before start date %s", a.ID, a.EndDate, a.StartDate)
	}
	return nil
}
