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

const taskColumns = `id, title, description, date, due_date, completed, target_pomodoros,
	completed_pomodoros, focus_seconds, tags, version, created_at, updated_at`

// NewTask is the caller-supplied part of a task. Zero TargetPomodoros means the default.
type NewTask struct {
	Title           string
	Description     string
	Date            string
	DueDate         string
	TargetPomodoros int
	Tags            []string
}

// Tasks persists models.Task rows.
type Tasks struct {
	h   storage.Handle
	now clock
}

func NewTasks(h storage.Handle) *Tasks {
	return &Tasks{h: h, now: systemClock}
}

func scanTask(row storage.Scanner) (models.Task, error) {
	var t models.Task
	var description, dueDate, tags sql.NullString
	var completed int
	var createdAt, updatedAt string

	if err := row.Scan(
		&t.ID, &t.Title, &description, &t.Date, &dueDate, &completed, &t.TargetPomodoros,
		&t.CompletedPomodoros, &t.FocusSeconds, &tags, &t.Version, &createdAt, &updatedAt,
	); err != nil {
		return models.Task{}, err
	}

	t.Description = description.String
	t.DueDate = dueDate.String
	t.Completed = completed != 0

	var err error
	if t.Tags, err = storage.DecodeList(tags); err != nil {
		return models.Task{}, fmt.Errorf("task %s: %w", t.ID, err)
	}
	if t.CreatedAt, err = storage.ParseTimestamp(createdAt); err != nil {
		return models.Task{}, fmt.Errorf("task %s: %w", t.ID, err)
	}
	if t.UpdatedAt, err = storage.ParseTimestamp(updatedAt); err != nil {
		return models.Task{}, fmt.Errorf("task %s: %w", t.ID, err)
	}
	if err := t.Validate(); err != nil {
		return models.Task{}, fmt.Errorf("task %s: corrupt row: %w", t.ID, err)
	}
	return t, nil
}

func (r *Tasks) selectTasks(ctx context.Context, where string, args ...interface{}) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY date, created_at, id"
	tasks, err := storage.Select(ctx, r.h, query, scanTask, args...)
	return tasks, storage.Wrap("select", "tasks", err)
}

// List returns every task ordered by date, then creation time.
func (r *Tasks) List(ctx context.Context) ([]models.Task, error) {
	return r.selectTasks(ctx, "")
}

// Get returns the task with id, or storage.ErrNotFound.
func (r *Tasks) Get(ctx context.Context, id string) (models.Task, error) {
	t, err := storage.SelectOne(ctx, r.h, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", scanTask, id)
	return t, storage.Wrap("select", "tasks", err)
}

func (r *Tasks) ListByDate(ctx context.Context, date string) ([]models.Task, error) {
	if err := models.ValidateDate(date); err != nil {
		return nil, err
	}
	return r.selectTasks(ctx, "date = ?", date)
}

// ListByDateRange returns tasks dated between start and end inclusive.
func (r *Tasks) ListByDateRange(ctx context.Context, start, end string) ([]models.Task, error) {
	if err := models.ValidateDate(start); err != nil {
		return nil, err
	}
	if err := models.ValidateDate(end); err != nil {
		return nil, err
	}
	return r.selectTasks(ctx, "date >= ? AND date <= ?", start, end)
}

// CountCompleted returns the number of completed tasks across all dates.
func (r *Tasks) CountCompleted(ctx context.Context) (int, error) {
	return countRows(ctx, r.h, "tasks", "SELECT count(*) FROM tasks WHERE completed = 1")
}

func (r *Tasks) Create(ctx context.Context, in NewTask) (models.Task, error) {
	now := r.now()
	target := in.TargetPomodoros
	if target == 0 {
		target = constants.DefaultTargetPomodoros
	}
	t := models.Task{
		ID:              newID(),
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		Date:            in.Date,
		DueDate:         in.DueDate,
		TargetPomodoros: target,
		Tags:            in.Tags,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}

	row, err := TaskRow(t)
	if err != nil {
		return models.Task{}, err
	}
	if _, err := storage.Insert(ctx, r.h, "tasks", row); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Update applies patch to the stored task. The write only lands if nobody
// else bumped the version since the read; otherwise storage.ErrConflict.
func (r *Tasks) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	next := patch.Apply(current)
	next.Title = strings.TrimSpace(next.Title)
	if err := next.Validate(); err != nil {
		return models.Task{}, err
	}
	next.Version = current.Version + 1
	next.UpdatedAt = r.now()

	tags, err := storage.EncodeList(next.Tags)
	if err != nil {
		return models.Task{}, err
	}
	res, err := storage.Update(ctx, r.h, "tasks", storage.Fields{
		"title":            next.Title,
		"description":      storage.NullableString(next.Description),
		"date":             next.Date,
		"due_date":         storage.NullableString(next.DueDate),
		"completed":        storage.BoolToInt(next.Completed),
		"target_pomodoros": next.TargetPomodoros,
		"tags":             tags,
		"version":          next.Version,
		"updated_at":       storage.FormatTimestamp(next.UpdatedAt),
	}, "id = ? AND version = ?", id, current.Version)
	if err != nil {
		return models.Task{}, err
	}
	if res.RowsAffected == 0 {
		return models.Task{}, storage.ErrConflict
	}
	return next, nil
}

func (r *Tasks) Delete(ctx context.Context, id string) error {
	res, err := storage.Delete(ctx, r.h, "tasks", "id = ?", id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ToggleCompletion flips the completed flag through the versioned update path.
func (r *Tasks) ToggleCompletion(ctx context.Context, id string) (models.Task, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	completed := !current.Completed
	return r.Update(ctx, id, models.TaskPatch{Completed: &completed})
}

// IncrementPomodoros adds one completed pomodoro in a single statement.
func (r *Tasks) IncrementPomodoros(ctx context.Context, id string) error {
	return r.bump(ctx, id, "completed_pomodoros = completed_pomodoros + 1")
}

// AddFocusTime adds seconds of focus to the task in a single statement.
func (r *Tasks) AddFocusTime(ctx context.Context, id string, seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("focus seconds cannot be negative")
	}
	return r.bump(ctx, id, "focus_seconds = focus_seconds + ?", seconds)
}

func (r *Tasks) bump(ctx context.Context, id, set string, args ...interface{}) error {
	query := "UPDATE tasks SET " + set + ", version = version + 1, updated_at = ? WHERE id = ?"
	args = append(args, storage.FormatTimestamp(r.now()), id)
	res, err := r.h.Exec(ctx, query, args...)
	if err != nil {
		return storage.Wrap("update", "tasks", err)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func countRows(ctx context.Context, h storage.Handle, table, query string, args ...interface{}) (int, error) {
	row, err := h.QueryRow(ctx, query, args...)
	if err != nil {
		return 0, storage.Wrap("count", table, err)
	}
	var n sql.NullInt64
	if err := row.Scan(&n); err != nil {
		return 0, storage.Wrap("count", table, err)
	}
	return int(n.Int64), nil
}
