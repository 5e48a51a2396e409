package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/storage"
)

func newTestSessions(t *testing.T, loc *time.Location) *Sessions {
	t.Helper()
	return NewSessions(setupTestStore(t), loc)
}

func TestSessionRecordDerivesFields(t *testing.T) {
	ctx := context.Background()
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	repo := newTestSessions(t, ny)

	// 02:30 UTC on Jan 2 is 21:30 on Jan 1 in New York.
	start := time.Date(2024, 1, 2, 2, 30, 0, 0, time.UTC)
	s, err := repo.Record(ctx, NewSession{
		StartTime: start,
		EndTime:   start.Add(25 * time.Minute),
		Type:      models.SessionWork,
		Completed: true,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if s.Date != "2024-01-01" || s.Hour != 21 {
		t.Errorf("Date/Hour = %s/%d, want 2024-01-01/21", s.Date, s.Hour)
	}
	if s.DurationSeconds != 1500 {
		t.Errorf("DurationSeconds = %d, want 1500", s.DurationSeconds)
	}

	got, err := repo.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.StartTime.Equal(start) || !got.EndTime.Equal(start.Add(25*time.Minute)) {
		t.Errorf("times did not round-trip: %v - %v", got.StartTime, got.EndTime)
	}
	if !got.Completed || got.Type != models.SessionWork {
		t.Errorf("flags did not round-trip: %+v", got)
	}
}

func TestSessionRecordDurationOnly(t *testing.T) {
	repo := newTestSessions(t, time.UTC)
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	s, err := repo.Record(context.Background(), NewSession{
		StartTime:       start,
		DurationSeconds: 300,
		Type:            models.SessionShortBreak,
		Completed:       true,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if !s.EndTime.Equal(start.Add(5 * time.Minute)) {
		t.Errorf("EndTime = %v, want start+5m", s.EndTime)
	}
}

func TestSessionRecordValidation(t *testing.T) {
	repo := newTestSessions(t, time.UTC)
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   NewSession
	}{
		{name: "missing start", in: NewSession{Type: models.SessionWork, DurationSeconds: 60}},
		{name: "unknown type", in: NewSession{StartTime: start, DurationSeconds: 60, Type: "nap"}},
		{name: "command-line alias", in: NewSession{StartTime: start, DurationSeconds: 60, Type: "pomodoro"}},
		{name: "ends before start", in: NewSession{StartTime: start, EndTime: start.Add(-time.Minute), Type: models.SessionWork}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Record(context.Background(), tt.in)
			if err == nil {
				t.Fatal("Record expected error, got nil")
			}
			var opErr *storage.OpError
			if errors.As(err, &opErr) {
				t.Errorf("Record reached the database: %v", err)
			}
		})
	}
}

func TestSessionTotals(t *testing.T) {
	ctx := context.Background()
	repo := newTestSessions(t, time.UTC)

	_, err := repo.Record(ctx, NewSession{
		StartTime:       time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		DurationSeconds: 1500,
		Type:            models.SessionWork,
		Completed:       true,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	day, err := repo.ListByDate(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	completed, err := repo.CountCompletedWork(ctx)
	if err != nil {
		t.Fatalf("CountCompletedWork failed: %v", err)
	}
	seconds, err := repo.SumCompletedWorkSeconds(ctx)
	if err != nil {
		t.Fatalf("SumCompletedWorkSeconds failed: %v", err)
	}
	if len(day) != 1 || completed != 1 || seconds != 1500 {
		t.Errorf("totals = %d/%d/%d, want 1/1/1500", len(day), completed, seconds)
	}
}

func TestSessionAggregates(t *testing.T) {
	ctx := context.Background()
	repo := newTestSessions(t, time.UTC)

	record := func(date string, hour, seconds int, typ models.SessionType, completed bool) {
		t.Helper()
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			t.Fatal(err)
		}
		_, err = repo.Record(ctx, NewSession{
			StartTime:       d.Add(time.Duration(hour) * time.Hour),
			DurationSeconds: seconds,
			Type:            typ,
			Completed:       completed,
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	record("2024-01-01", 9, 1500, models.SessionWork, true)
	record("2024-01-01", 10, 300, models.SessionShortBreak, true)
	record("2024-01-02", 9, 1200, models.SessionWork, true)
	record("2024-01-03", 9, 600, models.SessionWork, false)
	record("2024-01-05", 14, 1500, models.SessionWork, true)

	if n, err := repo.CountCompletedWork(ctx); err != nil || n != 3 {
		t.Errorf("CountCompletedWork = %d, %v; want 3", n, err)
	}
	if n, err := repo.SumWorkSeconds(ctx); err != nil || n != 4800 {
		t.Errorf("SumWorkSeconds = %d, %v; want 4800", n, err)
	}
	if n, err := repo.SumCompletedWorkSeconds(ctx); err != nil || n != 4200 {
		t.Errorf("SumCompletedWorkSeconds = %d, %v; want 4200", n, err)
	}
	if n, err := repo.CountPerfect(ctx, 1500); err != nil || n != 2 {
		t.Errorf("CountPerfect = %d, %v; want 2", n, err)
	}

	dates, err := repo.ActiveDates(ctx)
	if err != nil {
		t.Fatalf("ActiveDates failed: %v", err)
	}
	want := []string{"2024-01-05", "2024-01-02", "2024-01-01"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("ActiveDates = %v, want %v", dates, want)
	}

	rng, err := repo.ListByDateRange(ctx, "2024-01-02", "2024-01-05")
	if err != nil {
		t.Fatalf("ListByDateRange failed: %v", err)
	}
	if len(rng) != 3 {
		t.Errorf("ListByDateRange returned %d sessions, want 3", len(rng))
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("ListAll returned %d sessions, want 5", len(all))
	}
}

func TestSessionEmptyAggregates(t *testing.T) {
	ctx := context.Background()
	repo := newTestSessions(t, time.UTC)

	if n, err := repo.SumCompletedWorkSeconds(ctx); err != nil || n != 0 {
		t.Errorf("SumCompletedWorkSeconds on empty table = %d, %v; want 0", n, err)
	}
	dates, err := repo.ActiveDates(ctx)
	if err != nil {
		t.Fatalf("ActiveDates failed: %v", err)
	}
	if len(dates) != 0 {
		t.Errorf("ActiveDates = %v, want empty", dates)
	}
	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSessionListByTask(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	tasks := NewTasks(store)
	sessions := NewSessions(store, time.UTC)

	task, err := tasks.Create(ctx, NewTask{Title: "Focus", Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, taskID := range []string{task.ID, "", task.ID} {
		_, err := sessions.Record(ctx, NewSession{
			StartTime:       start.Add(time.Duration(i) * time.Hour),
			DurationSeconds: 1500,
			TaskID:          taskID,
			Type:            models.SessionWork,
			Completed:       true,
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	got, err := sessions.ListByTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListByTask returned %d sessions, want 2", len(got))
	}
}
