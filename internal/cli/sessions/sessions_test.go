package sessions

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/config"
	"github.com/julianstephens/pomolit/internal/notifier"
	"github.com/julianstephens/pomolit/internal/repository"
)

var fixedNow = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.User.Timezone = "UTC"
	ctx := cli.NewContext(cfg, filepath.Join(dir, "config.toml"))
	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.Now = func() time.Time { return fixedNow }
	if err := ctx.Store.Init(ctx.Context()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { ctx.Store.Close() })
	return ctx, out
}

func createTask(t *testing.T, ctx *cli.Context) string {
	t.Helper()
	task, err := ctx.Tasks().Create(ctx.Context(), repository.NewTask{Title: "Essay", Date: "2024-03-04"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return task.ID
}

func TestParseStart(t *testing.T) {
	ctx, _ := setupTestContext(t)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-03-01T09:30", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), false},
		{"2024-03-01 09:30", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), false},
		{"2024-03-01T09:30:00Z", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), false},
		{"08:15", time.Date(2024, 3, 4, 8, 15, 0, 0, time.UTC), false},
		{"yesterday", time.Time{}, true},
		{"25:00", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseStart(ctx, tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseStart(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("parseStart(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSessionRecordCompletedWork(t *testing.T) {
	ctx, out := setupTestContext(t)
	taskID := createTask(t, ctx)

	cmd := &SessionRecordCmd{Type: "work", Start: "09:00", Duration: 25 * time.Minute, Task: taskID[:6]}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	list, err := ctx.Sessions().ListByTask(ctx.Context(), taskID)
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d sessions, want 1", len(list))
	}
	s := list[0]
	if !s.Completed || s.DurationSeconds != 1500 || s.Hour != 9 || s.Date != "2024-03-04" {
		t.Errorf("session = %+v", s)
	}

	task, err := ctx.Tasks().Get(ctx.Context(), taskID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if task.CompletedPomodoros != 1 || task.FocusSeconds != 1500 {
		t.Errorf("task progress = %d pomodoros, %ds", task.CompletedPomodoros, task.FocusSeconds)
	}
	if !strings.Contains(out.String(), "Recorded work session (completed") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSessionRecordSkippedIsClamped(t *testing.T) {
	ctx, out := setupTestContext(t)
	taskID := createTask(t, ctx)

	cmd := &SessionRecordCmd{Type: "work", Start: "10:00", Duration: 40 * time.Minute, Task: taskID, Skipped: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	task, err := ctx.Tasks().Get(ctx.Context(), taskID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if task.CompletedPomodoros != 0 || task.FocusSeconds != ctx.Config.Timer.WorkSeconds {
		t.Errorf("task progress = %d pomodoros, %ds", task.CompletedPomodoros, task.FocusSeconds)
	}
	if !strings.Contains(out.String(), "skipped") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSessionRecordDefaults(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&SessionRecordCmd{Type: "short-break"}).Run(ctx); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	list, err := ctx.Sessions().ListByDate(ctx.Context(), "2024-03-04")
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d sessions, want 1", len(list))
	}
	want := fixedNow.Add(-time.Duration(ctx.Config.Timer.ShortBreakSeconds) * time.Second)
	if !list[0].StartTime.Equal(want) || list[0].DurationSeconds != ctx.Config.Timer.ShortBreakSeconds {
		t.Errorf("session = %+v", list[0])
	}
}

func TestSessionRecordErrors(t *testing.T) {
	ctx, _ := setupTestContext(t)
	taskID := createTask(t, ctx)

	tests := []struct {
		name string
		cmd  SessionRecordCmd
	}{
		{"unknown type", SessionRecordCmd{Type: "nap"}},
		{"break with task", SessionRecordCmd{Type: "long-break", Task: taskID}},
		{"negative duration", SessionRecordCmd{Type: "work", Duration: -time.Minute}},
		{"bad start", SessionRecordCmd{Type: "work", Start: "soon"}},
		{"missing task", SessionRecordCmd{Type: "work", Task: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSessionList(t *testing.T) {
	ctx, out := setupTestContext(t)
	taskID := createTask(t, ctx)

	if err := (&SessionListCmd{Date: "today"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No sessions found") {
		t.Errorf("output = %q", out.String())
	}

	if err := (&SessionRecordCmd{Type: "work", Start: "09:00", Duration: 25 * time.Minute, Task: taskID}).Run(ctx); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := (&SessionRecordCmd{Type: "short", Start: "09:25", Duration: 5 * time.Minute}).Run(ctx); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	out.Reset()
	if err := (&SessionListCmd{Date: "2024-03-04"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"09:00", "work", "25m0s", "Task: Essay", "short break", "5m0s"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	out.Reset()
	if err := (&SessionListCmd{Task: taskID}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.Contains(out.String(), "short break") {
		t.Errorf("task list includes break:\n%s", out.String())
	}
}

func TestSessionRecordNotifiesWebhook(t *testing.T) {
	ctx, _ := setupTestContext(t)
	var got []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload notifier.WebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			got = append(got, payload.Text)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	ctx.Config.Notify.WebhookURL = server.URL

	if err := (&SessionRecordCmd{Type: "work", Start: "09:00", Duration: 25 * time.Minute}).Run(ctx); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0], "Pomodoro complete") {
		t.Errorf("notifications = %q", got)
	}
}
