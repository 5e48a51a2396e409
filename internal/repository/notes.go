package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/storage"
)

const noteColumns = "id, folder_id, title, content, tags, version, created_at, updated_at"

// Notes persists note folders and markdown notes.
type Notes struct {
	h   storage.Handle
	now clock
}

func NewNotes(h storage.Handle) *Notes {
	return &Notes{h: h, now: systemClock}
}

func scanFolder(row storage.Scanner) (models.NoteFolder, error) {
	var f models.NoteFolder
	var color sql.NullString
	var createdAt string
	if err := row.Scan(&f.ID, &f.Name, &color, &createdAt); err != nil {
		return models.NoteFolder{}, err
	}
	f.Color = color.String
	var err error
	if f.CreatedAt, err = storage.ParseTimestamp(createdAt); err != nil {
		return models.NoteFolder{}, fmt.Errorf("folder %s: %w", f.ID, err)
	}
	return f, nil
}

func scanNote(row storage.Scanner) (models.Note, error) {
	var n models.Note
	var folderID, tags sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&n.ID, &folderID, &n.Title, &n.Content, &tags, &n.Version, &createdAt, &updatedAt); err != nil {
		return models.Note{}, err
	}
	n.FolderID = folderID.String

	var err error
	if n.Tags, err = storage.DecodeList(tags); err != nil {
		return models.Note{}, fmt.Errorf("note %s: %w", n.ID, err)
	}
	if n.CreatedAt, err = storage.ParseTimestamp(createdAt); err != nil {
		return models.Note{}, fmt.Errorf("note %s: %w", n.ID, err)
	}
	if n.UpdatedAt, err = storage.ParseTimestamp(updatedAt); err != nil {
		return models.Note{}, fmt.Errorf("note %s: %w", n.ID, err)
	}
	return n, nil
}

func (r *Notes) CreateFolder(ctx context.Context, name, color string) (models.NoteFolder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.NoteFolder{}, fmt.Errorf("folder name cannot be empty")
	}
	f := models.NoteFolder{ID: newID(), Name: name, Color: color, CreatedAt: r.now()}
	if _, err := storage.Insert(ctx, r.h, "note_folders", FolderRow(f)); err != nil {
		return models.NoteFolder{}, err
	}
	return f, nil
}

func (r *Notes) ListFolders(ctx context.Context) ([]models.NoteFolder, error) {
	folders, err := storage.Select(ctx, r.h,
		"SELECT id, name, color, created_at FROM note_folders ORDER BY name, id", scanFolder)
	return folders, storage.Wrap("select", "note_folders", err)
}

// DeleteFolder removes a folder and moves its notes out of it.
func (r *Notes) DeleteFolder(ctx context.Context, id string) error {
	if _, err := r.h.Exec(ctx,
		"UPDATE notes SET folder_id = NULL, version = version + 1, updated_at = ? WHERE folder_id = ?",
		storage.FormatTimestamp(r.now()), id); err != nil {
		return storage.Wrap("update", "notes", err)
	}
	res, err := storage.Delete(ctx, r.h, "note_folders", "id = ?", id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Notes) CreateNote(ctx context.Context, folderID, title, content string, tags []string) (models.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Note{}, fmt.Errorf("note title cannot be empty")
	}
	now := r.now()
	n := models.Note{
		ID:        newID(),
		FolderID:  folderID,
		Title:     title,
		Content:   content,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	row, err := NoteRow(n)
	if err != nil {
		return models.Note{}, err
	}
	if _, err := storage.Insert(ctx, r.h, "notes", row); err != nil {
		return models.Note{}, err
	}
	return n, nil
}

func (r *Notes) GetNote(ctx context.Context, id string) (models.Note, error) {
	n, err := storage.SelectOne(ctx, r.h, "SELECT "+noteColumns+" FROM notes WHERE id = ?", scanNote, id)
	return n, storage.Wrap("select", "notes", err)
}

// ListNotes returns notes in folderID, or every note when folderID is empty.
func (r *Notes) ListNotes(ctx context.Context, folderID string) ([]models.Note, error) {
	query := "SELECT " + noteColumns + " FROM notes"
	var args []interface{}
	if folderID != "" {
		query += " WHERE folder_id = ?"
		args = append(args, folderID)
	}
	query += " ORDER BY updated_at DESC, id"
	notes, err := storage.Select(ctx, r.h, query, scanNote, args...)
	return notes, storage.Wrap("select", "notes", err)
}

// UpdateNote applies patch with the same version check as task updates.
func (r *Notes) UpdateNote(ctx context.Context, id string, patch models.NotePatch) (models.Note, error) {
	current, err := r.GetNote(ctx, id)
	if err != nil {
		return models.Note{}, err
	}
	next := patch.Apply(current)
	next.Title = strings.TrimSpace(next.Title)
	if next.Title == "" {
		return models.Note{}, fmt.Errorf("note title cannot be empty")
	}
	next.Version = current.Version + 1
	next.UpdatedAt = r.now()

	encoded, err := storage.EncodeList(next.Tags)
	if err != nil {
		return models.Note{}, err
	}
	res, err := storage.Update(ctx, r.h, "notes", storage.Fields{
		"folder_id":  storage.NullableString(next.FolderID),
		"title":      next.Title,
		"content":    next.Content,
		"tags":       encoded,
		"version":    next.Version,
		"updated_at": storage.FormatTimestamp(next.UpdatedAt),
	}, "id = ? AND version = ?", id, current.Version)
	if err != nil {
		return models.Note{}, err
	}
	if res.RowsAffected == 0 {
		return models.Note{}, storage.ErrConflict
	}
	return next, nil
}

func (r *Notes) DeleteNote(ctx context.Context, id string) error {
	res, err := storage.Delete(ctx, r.h, "notes", "id = ?", id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
