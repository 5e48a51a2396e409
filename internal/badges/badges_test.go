package badges

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/repository"
	"github.com/julianstephens/pomolit/internal/storage"
)

func TestTierFor(t *testing.T) {
	thresholds := [3]int{10, 50, 100}
	tests := []struct {
		value int
		want  models.Tier
	}{
		{0, models.TierNone},
		{9, models.TierNone},
		{10, models.TierBronze},
		{49, models.TierBronze},
		{50, models.TierSilver},
		{55, models.TierSilver},
		{99, models.TierSilver},
		{100, models.TierGold},
		{5000, models.TierGold},
	}
	for _, tt := range tests {
		if got := TierFor(thresholds, tt.value); got != tt.want {
			t.Errorf("TierFor(%v, %d) = %s, want %s", thresholds, tt.value, got, tt.want)
		}
	}
}

func TestCountersValue(t *testing.T) {
	c := Counters{FocusMinutes: 1, CompletedTasks: 2, DayStreak: 3, CompletedSessions: 4, PerfectSessions: 5}
	for category, want := range map[models.BadgeCategory]int{
		models.CategoryFocusTime:         1,
		models.CategoryTasksCompleted:    2,
		models.CategoryDayStreak:         3,
		models.CategorySessionsCompleted: 4,
		models.CategoryPerfectSession:    5,
	} {
		got, err := c.Value(category)
		if err != nil {
			t.Fatalf("Value(%s) failed: %v", category, err)
		}
		if got != want {
			t.Errorf("Value(%s) = %d, want %d", category, got, want)
		}
	}
	if _, err := c.Value("karma"); err == nil {
		t.Error("Value accepted an unknown category")
	}
}

type fixture struct {
	store     *storage.Store
	sessions  *repository.Sessions
	tasks     *repository.Tasks
	badges    *repository.Badges
	profile   *repository.Profile
	evaluator *Evaluator
}

func newFixture(t *testing.T, today string) *fixture {
	t.Helper()
	ctx := context.Background()
	store := storage.NewStore(filepath.Join(t.TempDir(), "badges.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	f := &fixture{
		store:    store,
		sessions: repository.NewSessions(store, time.UTC),
		tasks:    repository.NewTasks(store),
		badges:   repository.NewBadges(store),
		profile:  repository.NewProfile(store),
	}
	f.evaluator = NewEvaluator(f.sessions, f.tasks, f.badges, f.profile, 1500, func() string { return today })
	return f
}

func (f *fixture) work(t *testing.T, start time.Time, seconds int) {
	t.Helper()
	_, err := f.sessions.Record(context.Background(), repository.NewSession{
		StartTime:       start,
		DurationSeconds: seconds,
		Type:            models.SessionWork,
		Completed:       true,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
}

func (f *fixture) completeTasks(t *testing.T, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		task, err := f.tasks.Create(ctx, repository.NewTask{Title: "done", Date: "2024-01-01"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := f.tasks.ToggleCompletion(ctx, task.ID); err != nil {
			t.Fatalf("ToggleCompletion failed: %v", err)
		}
	}
}

func TestEvaluateAwardsAndRatchets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "2024-01-03")

	for day := 1; day <= 3; day++ {
		f.work(t, time.Date(2024, 1, day, 9, 0, 0, 0, time.UTC), 1500)
	}
	f.completeTasks(t, 55)

	awards, err := f.evaluator.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	got := make(map[string]models.Tier)
	for _, a := range awards {
		got[a.Badge.ID] = a.To
	}
	if got["task-finisher"] != models.TierSilver {
		t.Errorf("task-finisher tier = %s, want silver", got["task-finisher"])
	}
	if got["on-a-roll"] != models.TierBronze {
		t.Errorf("on-a-roll tier = %s, want bronze", got["on-a-roll"])
	}
	if _, ok := got["focus-master"]; ok {
		t.Error("focus-master awarded with only 75 minutes")
	}

	pending, err := f.evaluator.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != len(awards) {
		t.Errorf("Pending = %d badges, want %d", len(pending), len(awards))
	}

	// Second pass with unchanged counters awards nothing.
	again, err := f.evaluator.Evaluate(ctx)
	if err != nil {
		t.Fatalf("second Evaluate failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second Evaluate awarded %v, want none", again)
	}

	// Un-completing tasks lowers the counter but never the stored tier.
	all, err := f.tasks.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, task := range all[:50] {
		if _, err := f.tasks.ToggleCompletion(ctx, task.ID); err != nil {
			t.Fatalf("ToggleCompletion failed: %v", err)
		}
	}
	if _, err := f.evaluator.Evaluate(ctx); err != nil {
		t.Fatalf("third Evaluate failed: %v", err)
	}
	stored, err := f.badges.UserBadges(ctx)
	if err != nil {
		t.Fatalf("UserBadges failed: %v", err)
	}
	if ub := stored["task-finisher"]; ub.Tier != models.TierSilver || ub.Progress != 55 {
		t.Errorf("task-finisher after un-completion = %s/%d, want silver/55", ub.Tier, ub.Progress)
	}
}

func TestEvaluateRefreshesProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "2024-01-02")

	f.work(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), 1500)
	f.work(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), 1500)
	f.work(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), 1200)
	f.completeTasks(t, 2)

	if _, err := f.evaluator.Evaluate(ctx); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	p, err := f.profile.Get(ctx)
	if err != nil {
		t.Fatalf("Get profile failed: %v", err)
	}
	if p.FocusMinutes != 70 {
		t.Errorf("FocusMinutes = %d, want 70", p.FocusMinutes)
	}
	if p.CompletedSessions != 3 || p.PerfectSessions != 2 {
		t.Errorf("sessions = %d perfect %d, want 3/2", p.CompletedSessions, p.PerfectSessions)
	}
	if p.CompletedTasks != 2 || p.DayStreak != 2 || p.LastActiveDate != "2024-01-02" {
		t.Errorf("profile = %+v", p)
	}
}

func TestAcknowledge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "2024-01-01")
	f.completeTasks(t, 10)

	awards, err := f.evaluator.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(awards) != 1 || awards[0].Badge.ID != "task-finisher" || awards[0].From != models.TierNone {
		t.Fatalf("awards = %+v, want task-finisher from none", awards)
	}

	n, err := f.evaluator.Acknowledge(ctx, "task-finisher")
	if err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Acknowledge cleared %d, want 1", n)
	}
	pending, err := f.evaluator.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Pending = %v, want empty", pending)
	}
}

type failingCounter struct{ *repository.Sessions }

func (failingCounter) SumWorkSeconds(context.Context) (int, error) {
	return 0, errors.New("disk gone")
}

func TestEvaluatePropagatesCounterErrors(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	e := NewEvaluator(failingCounter{f.sessions}, f.tasks, f.badges, f.profile, 1500, func() string { return "2024-01-01" })

	if _, err := e.Evaluate(context.Background()); err == nil {
		t.Error("Evaluate swallowed a counter error")
	}
}
