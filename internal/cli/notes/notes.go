// Package notes holds the note, folder and analysis commands.
package notes

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/storage"
)

const renderWidth = 80

// render formats markdown for the terminal, falling back to the raw text.
func render(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func parseTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// findFolder matches a folder by id, id prefix or case-insensitive name.
func findFolder(ctx *cli.Context, ref string) (models.NoteFolder, error) {
	ref = strings.TrimSpace(ref)
	folders, err := ctx.Notes().ListFolders(ctx.Context())
	if err != nil {
		return models.NoteFolder{}, err
	}
	var matches []models.NoteFolder
	for _, f := range folders {
		if f.ID == ref || strings.EqualFold(f.Name, ref) {
			return f, nil
		}
		if ref != "" && strings.HasPrefix(f.ID, ref) {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return models.NoteFolder{}, fmt.Errorf("folder %q: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return models.NoteFolder{}, fmt.Errorf("folder %q is ambiguous (%d matches)", ref, len(matches))
}

// findNote resolves a full note id or a unique prefix.
func findNote(ctx *cli.Context, ref string) (models.Note, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Note{}, fmt.Errorf("note id cannot be empty")
	}
	if n, err := ctx.Notes().GetNote(ctx.Context(), ref); err == nil {
		return n, nil
	}
	all, err := ctx.Notes().ListNotes(ctx.Context(), "")
	if err != nil {
		return models.Note{}, err
	}
	var matches []models.Note
	for _, n := range all {
		if strings.HasPrefix(n.ID, ref) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return models.Note{}, fmt.Errorf("note %q: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return models.Note{}, fmt.Errorf("note id prefix %q is ambiguous (%d matches)", ref, len(matches))
}

type FolderAddCmd struct {
	Name  string `arg:"" help:"Folder name."`
	Color string `help:"Display color, e.g. #ff8800."`
}

func (c *FolderAddCmd) Run(ctx *cli.Context) error {
	f, err := ctx.Notes().CreateFolder(ctx.Context(), c.Name, c.Color)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added folder %s: %s\n", shortID(f.ID), f.Name)
	return nil
}

type FoldersCmd struct{}

func (c *FoldersCmd) Run(ctx *cli.Context) error {
	folders, err := ctx.Notes().ListFolders(ctx.Context())
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		ctx.Println("No folders found")
		return nil
	}
	ctx.Println("Folders:")
	for _, f := range folders {
		notes, err := ctx.Notes().ListNotes(ctx.Context(), f.ID)
		if err != nil {
			return err
		}
		ctx.Printf("  %s  %s (%d notes)\n", shortID(f.ID), f.Name, len(notes))
	}
	return nil
}

type NoteAddCmd struct {
	Title  string `arg:"" help:"Note title."`
	Body   string `short:"m" help:"Markdown body."`
	File   string `short:"F" help:"Read the markdown body from a file." type:"existingfile"`
	Folder string `help:"Folder name or ID."`
	Tags   string `short:"t" help:"Comma-separated tags."`
}

func (c *NoteAddCmd) Run(ctx *cli.Context) error {
	body := c.Body
	if c.File != "" {
		if body != "" {
			return fmt.Errorf("use either --body or --file, not both")
		}
		data, err := os.ReadFile(c.File)
		if err != nil {
			return fmt.Errorf("read note body: %w", err)
		}
		body = string(data)
	}

	folderID := ""
	if c.Folder != "" {
		f, err := findFolder(ctx, c.Folder)
		if err != nil {
			return err
		}
		folderID = f.ID
	}

	n, err := ctx.Notes().CreateNote(ctx.Context(), folderID, c.Title, body, parseTags(c.Tags))
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added note %s: %s\n", shortID(n.ID), n.Title)
	return nil
}

type NoteListCmd struct {
	Folder string `help:"Only list notes in this folder (name or ID)."`
	Tag    string `help:"Only list notes with this tag."`
}

func (c *NoteListCmd) Run(ctx *cli.Context) error {
	folderID := ""
	if c.Folder != "" {
		f, err := findFolder(ctx, c.Folder)
		if err != nil {
			return err
		}
		folderID = f.ID
	}
	notes, err := ctx.Notes().ListNotes(ctx.Context(), folderID)
	if err != nil {
		return err
	}

	shown := 0
	for _, n := range notes {
		if c.Tag != "" && !hasTag(n.Tags, c.Tag) {
			continue
		}
		if shown == 0 {
			ctx.Println("Notes:")
		}
		shown++
		ctx.Printf("  %s  %s  (%s)\n", shortID(n.ID), n.Title, n.UpdatedAt.In(ctx.Location()).Format("2006-01-02 15:04"))
		if len(n.Tags) > 0 {
			ctx.Printf("      Tags: %s\n", strings.Join(n.Tags, ", "))
		}
	}
	if shown == 0 {
		ctx.Println("No notes found")
	}
	return nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

type NoteShowCmd struct {
	ID  string `arg:"" help:"Note ID or unique prefix."`
	Raw bool   `help:"Print the markdown source instead of rendering it."`
}

func (c *NoteShowCmd) Run(ctx *cli.Context) error {
	n, err := findNote(ctx, c.ID)
	if err != nil {
		return err
	}
	ctx.Printf("# %s\n", n.Title)
	if len(n.Tags) > 0 {
		ctx.Printf("Tags: %s\n", strings.Join(n.Tags, ", "))
	}
	ctx.Println()
	if c.Raw {
		ctx.Println(n.Content)
		return nil
	}
	ctx.Printf("%s", render(n.Content))
	return nil
}

type NoteEditCmd struct {
	ID     string  `arg:"" help:"Note ID or unique prefix."`
	Title  *string `help:"New title."`
	Body   *string `short:"m" help:"New markdown body."`
	Folder *string `help:"Move to this folder (name or ID, empty for none)."`
	Tags   *string `short:"t" help:"New comma-separated tags (empty to clear)."`
}

func (c *NoteEditCmd) Run(ctx *cli.Context) error {
	n, err := findNote(ctx, c.ID)
	if err != nil {
		return err
	}
	patch := models.NotePatch{Title: c.Title, Content: c.Body}
	if c.Folder != nil {
		folderID := ""
		if *c.Folder != "" {
			f, err := findFolder(ctx, *c.Folder)
			if err != nil {
				return err
			}
			folderID = f.ID
		}
		patch.FolderID = &folderID
	}
	if c.Tags != nil {
		tags := parseTags(*c.Tags)
		patch.Tags = &tags
	}
	if patch == (models.NotePatch{}) {
		return fmt.Errorf("nothing to change: pass at least one field flag")
	}
	updated, err := ctx.Notes().UpdateNote(ctx.Context(), n.ID, patch)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Updated note %s: %s\n", shortID(updated.ID), updated.Title)
	return nil
}

// NoteDeleteCmd removes a note, or a folder with --folder. Notes in a
// deleted folder are kept and moved out of it.
type NoteDeleteCmd struct {
	ID     string `arg:"" help:"Note ID or prefix, or folder name or ID with --folder."`
	Folder bool   `help:"Delete a folder instead of a note."`
	Yes    bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *NoteDeleteCmd) Run(ctx *cli.Context) error {
	var title, description string
	var del func() error
	if c.Folder {
		f, err := findFolder(ctx, c.ID)
		if err != nil {
			return err
		}
		title = "Delete folder \"" + f.Name + "\"?"
		description = "Notes in it are kept and moved out of the folder."
		del = func() error { return ctx.Notes().DeleteFolder(ctx.Context(), f.ID) }
	} else {
		n, err := findNote(ctx, c.ID)
		if err != nil {
			return err
		}
		title = "Delete note \"" + n.Title + "\"?"
		description = "This cannot be undone."
		del = func() error { return ctx.Notes().DeleteNote(ctx.Context(), n.ID) }
	}

	if !c.Yes {
		ok, err := ctx.Confirm(title, description)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}
	if err := del(); err != nil {
		return err
	}
	ctx.Println("✓ Deleted")
	return nil
}
