package tasks

import (
	"github.com/julianstephens/pomolit/internal/cli"
)

type TaskDeleteCmd struct {
	ID  string `arg:"" help:"Task ID or unique prefix."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	task, err := Find(ctx, c.ID)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := ctx.Confirm("Delete task \""+task.Title+"\"?",
			"Sessions recorded against it are kept.")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}
	if err := ctx.Tasks().Delete(ctx.Context(), task.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted task %s: %s\n", shortID(task.ID), task.Title)
	return nil
}
