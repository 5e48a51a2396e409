package tasks

import (
	"strings"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/models"
)

type TaskListCmd struct {
	Date    string `short:"d" help:"Day to list (YYYY-MM-DD, today, yesterday)." default:"today"`
	All     bool   `short:"a" help:"List tasks for every day."`
	Pending bool   `help:"Hide completed tasks."`
	ShowIDs bool   `help:"Show full task IDs." name:"show-ids"`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	var tasks []models.Task
	var err error
	if c.All {
		tasks, err = ctx.Tasks().List(ctx.Context())
	} else {
		var date string
		if date, err = ctx.ResolveDate(c.Date); err != nil {
			return err
		}
		tasks, err = ctx.Tasks().ListByDate(ctx.Context(), date)
	}
	if err != nil {
		return err
	}

	shown := 0
	for _, task := range tasks {
		if c.Pending && task.Completed {
			continue
		}
		if shown == 0 {
			ctx.Println("Tasks:")
		}
		shown++

		status := " "
		if task.Completed {
			status = "x"
		}
		id := shortID(task.ID)
		if c.ShowIDs {
			id = task.ID
		}
		ctx.Printf("  [%s] %s  %s  %d/%d 🍅  %dm focus  (%s)\n",
			status, id, task.Title, task.CompletedPomodoros, task.TargetPomodoros, task.FocusMinutes(), task.Date)
		if task.DueDate != "" {
			ctx.Printf("      Due: %s\n", task.DueDate)
		}
		if len(task.Tags) > 0 {
			ctx.Printf("      Tags: %s\n", strings.Join(task.Tags, ", "))
		}
	}
	if shown == 0 {
		ctx.Println("No tasks found")
	}
	return nil
}
