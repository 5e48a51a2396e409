package sessions

import (
	"time"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/models"
)

type SessionListCmd struct {
	Date string `short:"d" help:"Day to list (YYYY-MM-DD, today, yesterday)." default:"today"`
	Task string `help:"List every session of this task instead of a day."`
}

func (c *SessionListCmd) Run(ctx *cli.Context) error {
	var list []models.Session
	if c.Task != "" {
		taskID, _, err := resolveTask(ctx, c.Task)
		if err != nil {
			return err
		}
		if list, err = ctx.Sessions().ListByTask(ctx.Context(), taskID); err != nil {
			return err
		}
	} else {
		date, err := ctx.ResolveDate(c.Date)
		if err != nil {
			return err
		}
		if list, err = ctx.Sessions().ListByDate(ctx.Context(), date); err != nil {
			return err
		}
	}

	if len(list) == 0 {
		ctx.Println("No sessions found")
		return nil
	}

	titles := map[string]string{}
	loc := ctx.Location()
	ctx.Println("Sessions:")
	for _, s := range list {
		mark := "✓"
		if !s.Completed {
			mark = "↷"
		}
		ctx.Printf("  %s %s %s  %-11s %s\n", mark, s.Date, s.StartTime.In(loc).Format(constants.TimeFormat),
			typeLabel(s.Type), time.Duration(s.DurationSeconds)*time.Second)
		if s.TaskID == "" {
			continue
		}
		title, ok := titles[s.TaskID]
		if !ok {
			if task, err := ctx.Tasks().Get(ctx.Context(), s.TaskID); err == nil {
				title = task.Title
			}
			titles[s.TaskID] = title
		}
		if title != "" {
			ctx.Printf("      Task: %s\n", title)
		}
	}
	return nil
}
