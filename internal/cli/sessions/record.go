package sessions

import (
	"fmt"
	"time"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/timer"
)

type SessionRecordCmd struct {
	Type     string        `short:"T" help:"Interval type: work, short-break or long-break." default:"work"`
	Start    string        `short:"s" help:"Start time (YYYY-MM-DDTHH:MM or HH:MM). Defaults to now minus the duration."`
	Duration time.Duration `short:"D" help:"Length of the interval, e.g. 25m. Defaults to the configured length."`
	Task     string        `help:"Task ID or unique prefix the work session belongs to."`
	Skipped  bool          `help:"Record the interval as skipped rather than completed."`
}

func (c *SessionRecordCmd) Run(ctx *cli.Context) error {
	sessionType, err := models.ParseSessionType(c.Type)
	if err != nil {
		return err
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	taskID, taskTitle, err := resolveTask(ctx, c.Task)
	if err != nil {
		return err
	}
	if taskID != "" && sessionType != models.SessionWork {
		return fmt.Errorf("only work sessions can belong to a task")
	}

	plan := timer.PlanFromConfig(ctx.Config.Timer)
	duration := c.Duration
	if duration == 0 {
		duration = plan.Length(sessionType)
	}

	var start time.Time
	if c.Start == "" {
		start = ctx.Now().Add(-duration)
	} else if start, err = parseStart(ctx, c.Start); err != nil {
		return err
	}

	in := plan.NewInterval(sessionType, taskID, start)
	if c.Skipped {
		in.Elapsed = duration
	} else {
		in.Length = duration
	}

	res, err := completer(ctx).Finish(ctx.Context(), in, !c.Skipped)
	if err != nil {
		return err
	}
	s := res.Session
	status := "completed"
	if !s.Completed {
		status = "skipped"
	}
	ctx.Printf("✓ Recorded %s session (%s, %s) on %s at %02d:00\n",
		typeLabel(s.Type), status, time.Duration(s.DurationSeconds)*time.Second, s.Date, s.Hour)
	if taskTitle != "" {
		ctx.Printf("  Task: %s\n", taskTitle)
	}
	ctx.PrintAwards(res.Awards)
	return nil
}
