package tasks

import (
	"fmt"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/models"
)

type TaskEditCmd struct {
	ID          string  `arg:"" help:"Task ID or unique prefix."`
	Title       *string `help:"New title."`
	Description *string `short:"m" help:"New description."`
	Date        *string `short:"d" help:"New planned day (YYYY-MM-DD, today, yesterday)."`
	Due         *string `help:"New due date (YYYY-MM-DD, empty to clear)."`
	Pomodoros   *int    `short:"p" help:"New target number of pomodoros."`
	Tags        *string `short:"t" help:"New comma-separated tags (empty to clear)."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	task, err := Find(ctx, c.ID)
	if err != nil {
		return err
	}

	patch := models.TaskPatch{
		Title:       c.Title,
		Description: c.Description,
		DueDate:     c.Due,
	}
	if c.Date != nil {
		date, err := ctx.ResolveDate(*c.Date)
		if err != nil {
			return err
		}
		patch.Date = &date
	}
	if c.Pomodoros != nil {
		if *c.Pomodoros < 1 {
			return fmt.Errorf("pomodoros must be at least 1")
		}
		patch.TargetPomodoros = c.Pomodoros
	}
	if c.Tags != nil {
		tags := parseTags(*c.Tags)
		patch.Tags = &tags
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to change: pass at least one field flag")
	}

	updated, err := ctx.Tasks().Update(ctx.Context(), task.ID, patch)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Updated task %s: %s\n", shortID(updated.ID), updated.Title)
	return nil
}
