// Package timer runs pomodoro intervals and records them when they end.
package timer

import (
	"time"

	"github.com/julianstephens/pomolit/internal/config"
	"github.com/julianstephens/pomolit/internal/models"
)

// Plan holds the interval lengths and the long break cadence.
type Plan struct {
	Work       time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration
	// LongBreakEvery is the number of completed work intervals between long breaks.
	LongBreakEvery int
}

func PlanFromConfig(cfg config.Timer) Plan {
	return Plan{
		Work:           time.Duration(cfg.WorkSeconds) * time.Second,
		ShortBreak:     time.Duration(cfg.ShortBreakSeconds) * time.Second,
		LongBreak:      time.Duration(cfg.LongBreakSeconds) * time.Second,
		LongBreakEvery: cfg.LongBreakInterval,
	}
}

// Length returns the configured length of an interval type.
func (p Plan) Length(t models.SessionType) time.Duration {
	switch t {
	case models.SessionShortBreak:
		return p.ShortBreak
	case models.SessionLongBreak:
		return p.LongBreak
	}
	return p.Work
}

// Next picks the interval that follows current. completedWork counts the
// work intervals completed so far in this run, including current.
func (p Plan) Next(current models.SessionType, completedWork int) models.SessionType {
	if current.IsBreak() {
		return models.SessionWork
	}
	if p.LongBreakEvery > 0 && completedWork > 0 && completedWork%p.LongBreakEvery == 0 {
		return models.SessionLongBreak
	}
	return models.SessionShortBreak
}

// Interval is one running or finished countdown.
type Interval struct {
	Type   models.SessionType
	Length time.Duration
	TaskID string
	Start  time.Time
	// Elapsed is the time actually counted down. It is used when the
	// interval is skipped.
	Elapsed time.Duration
}

// NewInterval starts an interval of type t at start.
func (p Plan) NewInterval(t models.SessionType, taskID string, start time.Time) Interval {
	in := Interval{Type: t, Length: p.Length(t), Start: start}
	if t == models.SessionWork {
		in.TaskID = taskID
	}
	return in
}
