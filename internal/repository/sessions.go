package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/storage"
	"github.com/julianstephens/pomolit/internal/utils"
)

const sessionColumns = `id, start_time, end_time, duration_seconds, task_id, type, completed,
	date, hour, created_at, updated_at`

// NewSession describes a finished interval. DurationSeconds of zero is
// derived from the start and end times.
type NewSession struct {
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds int
	TaskID          string
	Type            models.SessionType
	Completed       bool
}

// Sessions persists models.Session rows. Date and hour are derived in loc.
type Sessions struct {
	h   storage.Handle
	loc *time.Location
	now clock
}

func NewSessions(h storage.Handle, loc *time.Location) *Sessions {
	if loc == nil {
		loc = time.Local
	}
	return &Sessions{h: h, loc: loc, now: systemClock}
}

func scanSession(row storage.Scanner) (models.Session, error) {
	var s models.Session
	var taskID sql.NullString
	var sessionType string
	var completed int
	var startTime, endTime, createdAt, updatedAt string

	if err := row.Scan(
		&s.ID, &startTime, &endTime, &s.DurationSeconds, &taskID, &sessionType, &completed,
		&s.Date, &s.Hour, &createdAt, &updatedAt,
	); err != nil {
		return models.Session{}, err
	}

	s.TaskID = taskID.String
	s.Type = models.SessionType(sessionType)
	s.Completed = completed != 0

	var err error
	for _, ts := range []struct {
		raw string
		dst *time.Time
	}{
		{startTime, &s.StartTime},
		{endTime, &s.EndTime},
		{createdAt, &s.CreatedAt},
		{updatedAt, &s.UpdatedAt},
	} {
		if *ts.dst, err = storage.ParseTimestamp(ts.raw); err != nil {
			return models.Session{}, fmt.Errorf("session %s: %w", s.ID, err)
		}
	}
	if err := s.Validate(); err != nil {
		return models.Session{}, fmt.Errorf("session %s: corrupt row: %w", s.ID, err)
	}
	return s, nil
}

// Record stores a finished interval and returns it with its derived fields.
func (r *Sessions) Record(ctx context.Context, in NewSession) (models.Session, error) {
	if in.StartTime.IsZero() {
		return models.Session{}, fmt.Errorf("session start time is required")
	}
	end := in.EndTime
	if end.IsZero() {
		end = in.StartTime.Add(time.Duration(in.DurationSeconds) * time.Second)
	}
	duration := in.DurationSeconds
	if duration == 0 {
		duration = int(end.Sub(in.StartTime) / time.Second)
	}

	date, hour := utils.DateAndHour(in.StartTime, r.loc)
	now := r.now()
	s := models.Session{
		ID:              newID(),
		StartTime:       in.StartTime,
		EndTime:         end,
		DurationSeconds: duration,
		TaskID:          in.TaskID,
		Type:            in.Type,
		Completed:       in.Completed,
		Date:            date,
		Hour:            hour,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Validate(); err != nil {
		return models.Session{}, err
	}

	if _, err := storage.Insert(ctx, r.h, "sessions", SessionRow(s)); err != nil {
		return models.Session{}, err
	}
	return s, nil
}

func (r *Sessions) selectSessions(ctx context.Context, where string, args ...interface{}) ([]models.Session, error) {
	query := "SELECT " + sessionColumns + " FROM sessions"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY start_time, id"
	sessions, err := storage.Select(ctx, r.h, query, scanSession, args...)
	return sessions, storage.Wrap("select", "sessions", err)
}

func (r *Sessions) Get(ctx context.Context, id string) (models.Session, error) {
	s, err := storage.SelectOne(ctx, r.h, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", scanSession, id)
	return s, storage.Wrap("select", "sessions", err)
}

func (r *Sessions) ListByDate(ctx context.Context, date string) ([]models.Session, error) {
	if err := models.ValidateDate(date); err != nil {
		return nil, err
	}
	return r.selectSessions(ctx, "date = ?", date)
}

// ListByDateRange returns sessions dated between start and end inclusive.
func (r *Sessions) ListByDateRange(ctx context.Context, start, end string) ([]models.Session, error) {
	if err := models.ValidateDate(start); err != nil {
		return nil, err
	}
	if err := models.ValidateDate(end); err != nil {
		return nil, err
	}
	return r.selectSessions(ctx, "date >= ? AND date <= ?", start, end)
}

func (r *Sessions) ListAll(ctx context.Context) ([]models.Session, error) {
	return r.selectSessions(ctx, "")
}

// ListByTask returns the sessions attributed to one task.
func (r *Sessions) ListByTask(ctx context.Context, taskID string) ([]models.Session, error) {
	return r.selectSessions(ctx, "task_id = ?", taskID)
}

// CountCompletedWork counts completed work sessions across all dates.
func (r *Sessions) CountCompletedWork(ctx context.Context) (int, error) {
	return countRows(ctx, r.h, "sessions",
		"SELECT count(*) FROM sessions WHERE type = ? AND completed = 1", string(models.SessionWork))
}

// SumWorkSeconds totals the duration of every work session, completed or not.
func (r *Sessions) SumWorkSeconds(ctx context.Context) (int, error) {
	return countRows(ctx, r.h, "sessions",
		"SELECT sum(duration_seconds) FROM sessions WHERE type = ?", string(models.SessionWork))
}

// SumCompletedWorkSeconds totals the duration of completed work sessions.
func (r *Sessions) SumCompletedWorkSeconds(ctx context.Context) (int, error) {
	return countRows(ctx, r.h, "sessions",
		"SELECT sum(duration_seconds) FROM sessions WHERE type = ? AND completed = 1", string(models.SessionWork))
}

// CountPerfect counts completed work sessions that ran exactly targetSeconds.
func (r *Sessions) CountPerfect(ctx context.Context, targetSeconds int) (int, error) {
	return countRows(ctx, r.h, "sessions",
		"SELECT count(*) FROM sessions WHERE type = ? AND completed = 1 AND duration_seconds = ?",
		string(models.SessionWork), targetSeconds)
}

// ActiveDates lists distinct dates with at least one completed work session, newest first.
func (r *Sessions) ActiveDates(ctx context.Context) ([]string, error) {
	dates, err := storage.Select(ctx, r.h,
		"SELECT DISTINCT date FROM sessions WHERE type = ? AND completed = 1 ORDER BY date DESC",
		func(row storage.Scanner) (string, error) {
			var d string
			err := row.Scan(&d)
			return d, err
		}, string(models.SessionWork))
	return dates, storage.Wrap("select", "sessions", err)
}
