package tasks

import (
	"fmt"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/repository"
)

type TaskAddCmd struct {
	Title       string `arg:"" help:"Task title."`
	Description string `short:"m" help:"Longer description."`
	Date        string `short:"d" help:"Day the task is planned for (YYYY-MM-DD, today, yesterday)." default:"today"`
	Due         string `help:"Due date (YYYY-MM-DD)."`
	Pomodoros   int    `short:"p" help:"Target number of pomodoros." default:"1"`
	Tags        string `short:"t" help:"Comma-separated tags."`
}

func (c *TaskAddCmd) Validate() error {
	if c.Pomodoros < 1 {
		return fmt.Errorf("pomodoros must be at least 1")
	}
	return nil
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	task, err := ctx.Tasks().Create(ctx.Context(), repository.NewTask{
		Title:           c.Title,
		Description:     c.Description,
		Date:            date,
		DueDate:         c.Due,
		TargetPomodoros: c.Pomodoros,
		Tags:            parseTags(c.Tags),
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added task %s: %s (%s, %d pomodoro(s))\n", shortID(task.ID), task.Title, task.Date, task.TargetPomodoros)
	return nil
}
