// Package sessions holds the commands that record, list and time
// pomodoro intervals.
package sessions

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/cli/tasks"
	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/timer"
)

var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseStart reads an absolute start time, or HH:MM on the current day, in loc.
func parseStart(ctx *cli.Context, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	loc := ctx.Location()
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if clock, err := time.ParseInLocation(constants.TimeFormat, s, loc); err == nil {
		now := ctx.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("invalid start time %q: use YYYY-MM-DDTHH:MM or HH:MM", s)
}

// resolveTask returns the id and title for an optional task reference.
func resolveTask(ctx *cli.Context, ref string) (string, string, error) {
	if ref == "" {
		return "", "", nil
	}
	task, err := tasks.Find(ctx, ref)
	if err != nil {
		return "", "", err
	}
	return task.ID, task.Title, nil
}

func completer(ctx *cli.Context) *timer.Completer {
	c := timer.NewCompleter(ctx.Sessions(), ctx.Tasks(), ctx.Evaluator())
	if n := ctx.Notifier(); n != nil {
		c.WithNotifier(n)
	}
	return c
}

func typeLabel(t models.SessionType) string {
	switch t {
	case models.SessionShortBreak:
		return "short break"
	case models.SessionLongBreak:
		return "long break"
	}
	return "work"
}
