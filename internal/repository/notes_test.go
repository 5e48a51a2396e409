package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/storage"
)

func TestNotesLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewNotes(setupTestStore(t))
	repo.now = fixedClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	folder, err := repo.CreateFolder(ctx, "Work", "#ff0000")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	if _, err := repo.CreateFolder(ctx, " ", ""); err == nil {
		t.Error("CreateFolder accepted an empty name")
	}

	note, err := repo.CreateNote(ctx, folder.ID, "Standup", "# Notes\n- one", []string{"daily"})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	loose, err := repo.CreateNote(ctx, "", "Ideas", "", nil)
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	inFolder, err := repo.ListNotes(ctx, folder.ID)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(inFolder) != 1 || inFolder[0].ID != note.ID {
		t.Errorf("ListNotes(folder) = %v, want only %s", inFolder, note.ID)
	}
	all, err := repo.ListNotes(ctx, "")
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListNotes(all) returned %d notes, want 2", len(all))
	}
	// Newest first.
	if all[0].ID != loose.ID {
		t.Errorf("ListNotes first = %s, want most recently updated %s", all[0].ID, loose.ID)
	}

	content := "# Notes\n- one\n- two"
	updated, err := repo.UpdateNote(ctx, note.ID, models.NotePatch{Content: &content})
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("Version = %d, want 2", updated.Version)
	}
	got, err := repo.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if got.Content != content || len(got.Tags) != 1 || got.Tags[0] != "daily" {
		t.Errorf("GetNote = %+v", got)
	}

	if err := repo.DeleteFolder(ctx, folder.ID); err != nil {
		t.Fatalf("DeleteFolder failed: %v", err)
	}
	orphan, err := repo.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetNote after folder delete failed: %v", err)
	}
	if orphan.FolderID != "" {
		t.Errorf("FolderID = %q, want note moved out of deleted folder", orphan.FolderID)
	}
	folders, err := repo.ListFolders(ctx)
	if err != nil {
		t.Fatalf("ListFolders failed: %v", err)
	}
	if len(folders) != 0 {
		t.Errorf("ListFolders = %v, want empty", folders)
	}

	if err := repo.DeleteNote(ctx, note.ID); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if _, err := repo.GetNote(ctx, note.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetNote after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteFolder(ctx, folder.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteFolder error = %v, want ErrNotFound", err)
	}
}

func TestUpdateNoteRejectsEmptyTitle(t *testing.T) {
	ctx := context.Background()
	repo := NewNotes(setupTestStore(t))

	note, err := repo.CreateNote(ctx, "", "Title", "", nil)
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	blank := "  "
	if _, err := repo.UpdateNote(ctx, note.ID, models.NotePatch{Title: &blank}); err == nil {
		t.Error("UpdateNote accepted an empty title")
	}
}

func TestAnalyses(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalyses(setupTestStore(t))
	repo.now = fixedClock(time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC))

	if _, err := repo.LatestAnalysis(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("LatestAnalysis on empty table error = %v, want ErrNotFound", err)
	}

	if _, err := repo.SaveAnalysis(ctx, "2024-01-01", "2024-01-07", "Mornings are best.", []string{"Start at 9", "Batch email"}); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}
	second, err := repo.SaveAnalysis(ctx, "2024-01-08", "2024-01-14", "Steady week.", nil)
	if err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	latest, err := repo.LatestAnalysis(ctx)
	if err != nil {
		t.Fatalf("LatestAnalysis failed: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("LatestAnalysis = %s, want %s", latest.ID, second.ID)
	}

	list, err := repo.ListAnalyses(ctx)
	if err != nil {
		t.Fatalf("ListAnalyses failed: %v", err)
	}
	if len(list) != 2 || len(list[1].Suggestions) != 2 || list[1].Suggestions[0] != "Start at 9" {
		t.Errorf("ListAnalyses = %+v", list)
	}

	if _, err := repo.SaveAnalysis(ctx, "2024-01-07", "2024-01-01", "", nil); err == nil {
		t.Error("SaveAnalysis accepted a reversed range")
	}
}
