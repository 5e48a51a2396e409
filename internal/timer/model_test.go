package timer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pomolit/internal/badges"
	"github.com/julianstephens/pomolit/internal/models"
)

type recordingFinisher struct {
	calls  []Interval
	done   []bool
	awards []badges.Award
	err    error
}

func (f *recordingFinisher) Finish(_ context.Context, in Interval, completed bool) (Result, error) {
	f.calls = append(f.calls, in)
	f.done = append(f.done, completed)
	if f.err != nil {
		return Result{}, f.err
	}
	seconds := int(in.Length / time.Second)
	if !completed {
		seconds = int(in.Elapsed / time.Second)
	}
	return Result{
		Session: models.Session{Type: in.Type, TaskID: in.TaskID, Completed: completed, DurationSeconds: seconds},
		Awards:  f.awards,
	}, nil
}

func testPlan() Plan {
	return Plan{Work: 25 * time.Minute, ShortBreak: 5 * time.Minute, LongBreak: 15 * time.Minute, LongBreakEvery: 2}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and any batched commands, feeding finishedMsg back into m.
// Tick commands are never produced on these paths, so nothing sleeps.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
	case finishedMsg:
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModelStartsWithWork(t *testing.T) {
	m := New(testPlan(), &recordingFinisher{}, "t1", "Write report")
	if m.interval.Type != models.SessionWork || m.interval.TaskID != "t1" {
		t.Errorf("first interval = %+v", m.interval)
	}
	view := m.View()
	if !strings.Contains(view, "25:00") || !strings.Contains(view, "Write report") {
		t.Errorf("view missing clock or task:\n%s", view)
	}
}

func TestModelSkipRecordsElapsed(t *testing.T) {
	f := &recordingFinisher{}
	m := New(testPlan(), f, "t1", "")

	for i := 0; i < 90; i++ {
		m, _ = update(m, timer.TickMsg{ID: m.timer.ID()})
	}
	m, cmd := update(m, keyPress("s"))
	if m.state != stateSaving {
		t.Fatalf("state = %v, want saving", m.state)
	}
	m = drain(t, m, cmd)

	if len(f.calls) != 1 || f.done[0] {
		t.Fatalf("finisher calls = %+v, completed = %v", f.calls, f.done)
	}
	if f.calls[0].Elapsed != 90*time.Second {
		t.Errorf("elapsed = %v, want 90s", f.calls[0].Elapsed)
	}
	if m.state != stateFinished || m.CompletedWork() != 0 {
		t.Errorf("state = %v, completed work = %d", m.state, m.CompletedWork())
	}
	if !strings.Contains(m.View(), "Skipped after 01:30") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestModelTimeoutCompletesAndAdvances(t *testing.T) {
	f := &recordingFinisher{}
	m := New(testPlan(), f, "t1", "")

	want := []models.SessionType{
		models.SessionShortBreak,
		models.SessionWork,
		models.SessionLongBreak,
		models.SessionWork,
	}
	for _, next := range want {
		var cmd tea.Cmd
		m, cmd = update(m, timer.TimeoutMsg{ID: m.timer.ID()})
		m = drain(t, m, cmd)
		if m.state != stateFinished {
			t.Fatalf("state = %v after timeout", m.state)
		}
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.interval.Type != next {
			t.Fatalf("next interval = %s, want %s", m.interval.Type, next)
		}
	}

	if m.CompletedWork() != 2 {
		t.Errorf("completed work = %d, want 2", m.CompletedWork())
	}
	for i, in := range f.calls {
		if !f.done[i] {
			t.Errorf("call %d not completed", i)
		}
		if in.Type.IsBreak() && in.TaskID != "" {
			t.Errorf("break %d carries task %q", i, in.TaskID)
		}
	}
}

func TestModelIgnoresForeignTimeout(t *testing.T) {
	f := &recordingFinisher{}
	m := New(testPlan(), f, "", "")
	m, cmd := update(m, timer.TimeoutMsg{ID: m.timer.ID() + 1000})
	if cmd != nil || m.state != stateRunning {
		t.Errorf("foreign timeout handled: state = %v", m.state)
	}
}

func TestModelShowsAwards(t *testing.T) {
	f := &recordingFinisher{awards: []badges.Award{{
		Badge: models.Badge{ID: "perfectionist", Name: "Perfectionist"},
		From:  models.TierNone,
		To:    models.TierBronze,
	}}}
	m := New(testPlan(), f, "", "")
	m, cmd := update(m, timer.TimeoutMsg{ID: m.timer.ID()})
	m = drain(t, m, cmd)
	if view := m.View(); !strings.Contains(view, "Perfectionist: bronze") {
		t.Errorf("view missing award:\n%s", view)
	}
}

func TestModelShowsFinishError(t *testing.T) {
	f := &recordingFinisher{err: errors.New("disk full")}
	m := New(testPlan(), f, "", "")
	m, cmd := update(m, timer.TimeoutMsg{ID: m.timer.ID()})
	m = drain(t, m, cmd)
	if m.CompletedWork() != 0 {
		t.Errorf("failed save counted as completed work")
	}
	if view := m.View(); !strings.Contains(view, "disk full") {
		t.Errorf("view missing error:\n%s", view)
	}
}

func TestModelPause(t *testing.T) {
	m := New(testPlan(), &recordingFinisher{}, "", "")
	m, cmd := update(m, keyPress(" "))
	if cmd == nil {
		t.Fatal("pause returned no command")
	}
	m, _ = update(m, cmd())
	if !strings.Contains(m.View(), "(paused)") {
		t.Errorf("view not paused:\n%s", m.View())
	}
}

func TestModelKeysIgnoredOutOfState(t *testing.T) {
	f := &recordingFinisher{}
	m := New(testPlan(), f, "", "")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.interval.Type != models.SessionWork || m.state != stateRunning {
		t.Errorf("enter while running changed interval")
	}

	m, cmd := update(m, timer.TimeoutMsg{ID: m.timer.ID()})
	m = drain(t, m, cmd)
	m, cmd = update(m, keyPress("s"))
	if cmd != nil || len(f.calls) != 1 {
		t.Errorf("skip after finish recorded again: %d calls", len(f.calls))
	}
}

func TestModelQuitAndHelp(t *testing.T) {
	m := New(testPlan(), &recordingFinisher{}, "", "")
	m, _ = update(m, keyPress("?"))
	if !m.help.ShowAll {
		t.Error("help not expanded")
	}
	m, cmd := update(m, keyPress("q"))
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not quit")
	}
	if m.View() != "" {
		t.Error("view not cleared after quit")
	}
}

// pendingFinish runs cmd and returns the finishedMsg it produces without feeding it back.
func pendingFinish(t *testing.T, cmd tea.Cmd) finishedMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("no command to run")
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if fm, ok := c().(finishedMsg); ok {
				return fm
			}
		}
	case finishedMsg:
		return msg
	}
	t.Fatal("command did not record the interval")
	return finishedMsg{}
}

func TestModelQuitWaitsForSave(t *testing.T) {
	f := &recordingFinisher{}
	m := New(testPlan(), f, "t1", "")

	m, saveCmd := update(m, keyPress("s"))
	m, cmd := update(m, keyPress("q"))
	if cmd != nil {
		t.Fatal("quit while saving returned a command before the save finished")
	}
	if !strings.Contains(m.View(), "will quit") {
		t.Errorf("view does not show pending quit:\n%s", m.View())
	}

	m, cmd = update(m, pendingFinish(t, saveCmd))
	if len(f.calls) != 1 {
		t.Fatalf("Finish called %d times, want 1", len(f.calls))
	}
	if cmd == nil {
		t.Fatal("no quit after save finished")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("command after save did not quit")
	}
	if m.View() != "" {
		t.Error("view not cleared after quit")
	}
}

type ctxKey struct{}

type contextFinisher struct {
	got context.Context
}

func (f *contextFinisher) Finish(ctx context.Context, in Interval, completed bool) (Result, error) {
	f.got = ctx
	return Result{Session: models.Session{Type: in.Type, Completed: completed}}, nil
}

func TestModelFinishUsesContext(t *testing.T) {
	f := &contextFinisher{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "run")
	m := New(testPlan(), f, "", "").WithContext(ctx)

	m, cmd := update(m, timer.TimeoutMsg{ID: m.timer.ID()})
	drain(t, m, cmd)
	if f.got == nil || f.got.Value(ctxKey{}) != "run" {
		t.Errorf("Finish ran under %v, want the model context", f.got)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{25 * time.Minute, "25:00"},
		{90 * time.Second, "01:30"},
		{0, "00:00"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.in); got != tt.want {
			t.Errorf("formatClock(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
