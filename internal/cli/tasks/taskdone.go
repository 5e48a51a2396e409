package tasks

import (
	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/logger"
)

type TaskDoneCmd struct {
	ID   string `arg:"" help:"Task ID or unique prefix."`
	Undo bool   `help:"Mark the task as not completed."`
}

func (c *TaskDoneCmd) Run(ctx *cli.Context) error {
	task, err := Find(ctx, c.ID)
	if err != nil {
		return err
	}
	if task.Completed == !c.Undo {
		ctx.Printf("Task %s is already in that state.\n", shortID(task.ID))
		return nil
	}
	updated, err := ctx.Tasks().ToggleCompletion(ctx.Context(), task.ID)
	if err != nil {
		return err
	}
	if updated.Completed {
		ctx.Printf("✓ Completed task %s: %s\n", shortID(updated.ID), updated.Title)
	} else {
		ctx.Printf("✓ Reopened task %s: %s\n", shortID(updated.ID), updated.Title)
	}

	awards, err := ctx.Evaluator().Evaluate(ctx.Context())
	if err != nil {
		logger.Warn("Badge evaluation failed", "error", err)
		return nil
	}
	ctx.PrintAwards(awards)
	return nil
}
