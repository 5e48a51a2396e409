package models

import (
	"fmt"
	"strings"
	"time"
)

type NoteFolder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (f NoteFolder) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("folder id cannot be empty")
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("folder %s: name cannot be empty", f.ID)
	}
	return nil
}

// Note is a markdown note, optionally filed in a folder.
type Note struct {
	ID        string    `json:"id"`
	FolderID  string    `json:"folder_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

func (n Note) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("note id cannot be empty")
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("note %s: title cannot be empty", n.ID)
	}
	if n.Version < 1 {
		return fmt.Errorf("note %s: version must be positive", n.ID)
	}
	return nil
}

type NotePatch struct {
	FolderID *string
	Title    *string
	Content  *string
	Tags     *[]string
}

func (p NotePatch) Apply(n Note) Note {
	if p.FolderID != nil {
		n.FolderID = *p.FolderID
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Tags != nil {
		n.Tags = append([]string(nil), (*p.Tags)...)
	}
	return n
}
