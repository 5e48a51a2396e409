// Package tasks holds the task management commands.
package tasks

import (
	"fmt"
	"strings"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/storage"
)

// Find resolves a full task id or a unique id prefix.
func Find(ctx *cli.Context, idOrPrefix string) (models.Task, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return models.Task{}, fmt.Errorf("task id cannot be empty")
	}
	if t, err := ctx.Tasks().Get(ctx.Context(), idOrPrefix); err == nil {
		return t, nil
	}

	all, err := ctx.Tasks().List(ctx.Context())
	if err != nil {
		return models.Task{}, err
	}
	var matches []models.Task
	for _, t := range all {
		if strings.HasPrefix(t.ID, idOrPrefix) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("task %q: %w", idOrPrefix, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return models.Task{}, fmt.Errorf("task id prefix %q is ambiguous (%d matches)", idOrPrefix, len(matches))
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
