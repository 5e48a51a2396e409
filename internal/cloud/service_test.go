package cloud

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/repository"
	"github.com/julianstephens/pomolit/internal/storage"
)

func setupStore(t *testing.T) *storage.Store {
	t.Helper()
	store := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedStore(t *testing.T, store *storage.Store) models.Task {
	t.Helper()
	ctx := context.Background()
	task, err := repository.NewTasks(store).Create(ctx, repository.NewTask{
		Title: "Write report",
		Date:  "2024-03-04",
		Tags:  []string{"work"},
	})
	if err != nil {
		t.Fatalf("Create task failed: %v", err)
	}
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	if _, err := repository.NewSessions(store, time.UTC).Record(ctx, repository.NewSession{
		StartTime:       start,
		DurationSeconds: 1500,
		TaskID:          task.ID,
		Type:            models.SessionWork,
		Completed:       true,
	}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	notes := repository.NewNotes(store)
	folder, err := notes.CreateFolder(ctx, "Ideas", "#ff8800")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	if _, err := notes.CreateNote(ctx, folder.ID, "Retro", "# Went well", nil); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if err := repository.NewProfile(store).SetDisplayName(ctx, "Ada"); err != nil {
		t.Fatalf("SetDisplayName failed: %v", err)
	}
	return task
}

func TestBackupUploadsExport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := setupStore(t)
	seedStore(t, store)

	var uploaded []byte
	mirror := NewMockMirror(ctrl)
	mirror.EXPECT().Put(gomock.Any(), "ada", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, payload []byte) error {
			uploaded = payload
			return nil
		})

	snap, err := NewService(store, mirror, "").Backup(context.Background(), "ada")
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if len(snap.Tasks) != 1 || len(snap.Sessions) != 1 || len(snap.Folders) != 1 || len(snap.Notes) != 1 {
		t.Errorf("snapshot counts = %d tasks, %d sessions, %d folders, %d notes, want 1 each",
			len(snap.Tasks), len(snap.Sessions), len(snap.Folders), len(snap.Notes))
	}
	if snap.Profile.DisplayName != "Ada" {
		t.Errorf("profile name = %q, want Ada", snap.Profile.DisplayName)
	}
	if IsSealed(uploaded) {
		t.Error("payload sealed without a passphrase")
	}
	decoded, err := Decode(uploaded, "")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.UserID != "ada" {
		t.Errorf("decoded user = %q, want ada", decoded.UserID)
	}
}

func TestBackupSealsWithPassphrase(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := setupStore(t)
	mirror := NewMockMirror(ctrl)
	mirror.EXPECT().Put(gomock.Any(), "ada", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, payload []byte) error {
			if !IsSealed(payload) {
				t.Error("payload not sealed")
			}
			return nil
		})

	if _, err := NewService(store, mirror, "hunter2").Backup(context.Background(), "ada"); err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
}

func TestBackupPropagatesMirrorError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("network down")
	mirror := NewMockMirror(ctrl)
	mirror.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)

	_, err := NewService(setupStore(t), mirror, "").Backup(context.Background(), "ada")
	if !errors.Is(err, boom) {
		t.Errorf("Backup error = %v, want %v", err, boom)
	}
}

func TestRestoreReplacesLocalData(t *testing.T) {
	ctx := context.Background()
	source := setupStore(t)
	task := seedStore(t, source)

	snap, err := NewService(source, nil, "").Export(ctx, "ada")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	payload, err := Encode(snap, "")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mirror := NewMockMirror(ctrl)
	mirror.EXPECT().Get(gomock.Any(), "ada").Return(payload, nil)

	target := setupStore(t)
	stale, err := repository.NewTasks(target).Create(ctx, repository.NewTask{Title: "Stale", Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := NewService(target, mirror, "").Restore(ctx, "ada"); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	tasks := repository.NewTasks(target)
	if _, err := tasks.Get(ctx, stale.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("stale task still present: err = %v", err)
	}
	got, err := tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("restored task missing: %v", err)
	}
	if got.Title != task.Title || got.Version != task.Version || len(got.Tags) != 1 {
		t.Errorf("restored task = %+v, want %+v", got, task)
	}
	sessions, err := repository.NewSessions(target, time.UTC).ListByTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].DurationSeconds != 1500 {
		t.Errorf("restored sessions = %+v", sessions)
	}
	profile, err := repository.NewProfile(target).Get(ctx)
	if err != nil {
		t.Fatalf("Get profile failed: %v", err)
	}
	if profile.DisplayName != "Ada" {
		t.Errorf("restored display name = %q, want Ada", profile.DisplayName)
	}
}

func TestRestoreRejectsOtherUser(t *testing.T) {
	payload, err := Encode(Snapshot{Version: 1, UserID: "bob"}, "")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mirror := NewMockMirror(ctrl)
	mirror.EXPECT().Get(gomock.Any(), "ada").Return(payload, nil)

	store := setupStore(t)
	seedStore(t, store)
	if _, err := NewService(store, mirror, "").Restore(context.Background(), "ada"); err == nil {
		t.Fatal("expected user mismatch error")
	}
	tasks, err := repository.NewTasks(store).List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("local tasks = %d after rejected restore, want 1", len(tasks))
	}
}

func TestRestoreInvalidRowLeavesDataIntact(t *testing.T) {
	day := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		snap Snapshot
	}{
		{"unknown session type", Snapshot{Sessions: []models.Session{{ID: "s1", Type: "nap", Date: "2024-01-01"}}}},
		{"session type alias", Snapshot{Sessions: []models.Session{{ID: "s1", Type: "focus", Date: "2024-01-01", Hour: 9, StartTime: day, EndTime: day}}}},
		{"badge tier above gold", Snapshot{UserBadges: []models.UserBadge{{BadgeID: "task-finisher", Tier: 7, Progress: 3}}}},
		{"negative badge tier", Snapshot{UserBadges: []models.UserBadge{{BadgeID: "task-finisher", Tier: -1}}}},
		{"negative badge progress", Snapshot{UserBadges: []models.UserBadge{{BadgeID: "task-finisher", Progress: -4}}}},
		{"unnamed folder", Snapshot{Folders: []models.NoteFolder{{ID: "f1", Name: "  "}}}},
		{"untitled note", Snapshot{Notes: []models.Note{{ID: "n1", Version: 1}}}},
		{"analysis bad date", Snapshot{Analyses: []models.Analysis{{ID: "a1", StartDate: "2024-13-01", EndDate: "2024-01-02"}}}},
		{"analysis reversed range", Snapshot{Analyses: []models.Analysis{{ID: "a1", StartDate: "2024-01-05", EndDate: "2024-01-02"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupStore(t)
			seedStore(t, store)

			bad := tt.snap
			bad.Version = 1
			bad.UserID = "ada"
			bad.Tasks = []models.Task{{ID: "t1", Title: "ok", Date: "2024-01-01", Version: 1}}
			if err := NewService(store, nil, "").Import(context.Background(), bad); err == nil {
				t.Fatal("expected validation error")
			}
			tasks, err := repository.NewTasks(store).List(context.Background())
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(tasks) != 1 || tasks[0].Title != "Write report" {
				t.Errorf("local tasks changed by a failed import: %+v", tasks)
			}
			if _, err := repository.NewBadges(store).UserBadges(context.Background()); err != nil {
				t.Errorf("UserBadges after failed import: %v", err)
			}
		})
	}
}

func TestRestoreNoSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mirror := NewMockMirror(ctrl)
	mirror.EXPECT().Get(gomock.Any(), "ada").Return(nil, ErrNoSnapshot)

	_, err := NewService(setupStore(t), mirror, "").Restore(context.Background(), "ada")
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Restore error = %v, want ErrNoSnapshot", err)
	}
}

func TestFileMirrorSealedRoundTrip(t *testing.T) {
	ctx := context.Background()
	mirror := NewFileMirror(t.TempDir())

	source := setupStore(t)
	task := seedStore(t, source)
	if _, err := NewService(source, mirror, "correct horse").Backup(ctx, "ada"); err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	target := setupStore(t)
	if _, err := NewService(target, mirror, "wrong").Restore(ctx, "ada"); !errors.Is(err, ErrBadPassphrase) {
		t.Fatalf("Restore with wrong passphrase error = %v, want ErrBadPassphrase", err)
	}
	if _, err := NewService(target, mirror, "correct horse").Restore(ctx, "ada"); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if _, err := repository.NewTasks(target).Get(ctx, task.ID); err != nil {
		t.Errorf("restored task missing: %v", err)
	}
}
