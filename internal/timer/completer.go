package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/pomolit/internal/badges"
	"github.com/julianstephens/pomolit/internal/logger"
	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/repository"
)

type SessionRecorder interface {
	Record(ctx context.Context, in repository.NewSession) (models.Session, error)
}

type TaskProgress interface {
	IncrementPomodoros(ctx context.Context, id string) error
	AddFocusTime(ctx context.Context, id string, seconds int) error
}

type BadgeEvaluator interface {
	Evaluate(ctx context.Context) ([]badges.Award, error)
}

// Announcer tells the user an interval ended. *notifier.Notifier implements it.
type Announcer interface {
	Notify(ctx context.Context, text string) error
}

// Result is what finishing an interval produced.
type Result struct {
	Session models.Session
	Awards  []badges.Award
}

// Completer records finished intervals and the side effects that follow.
type Completer struct {
	sessions SessionRecorder
	tasks    TaskProgress
	badges   BadgeEvaluator
	notifier Announcer
	now      func() time.Time
}

func NewCompleter(sessions SessionRecorder, tasks TaskProgress, evaluator BadgeEvaluator) *Completer {
	return &Completer{sessions: sessions, tasks: tasks, badges: evaluator, now: time.Now}
}

// WithNotifier announces every finished interval through n.
func (c *Completer) WithNotifier(n Announcer) *Completer {
	c.notifier = n
	return c
}

// Finish records in as a session. A completed interval counts its full
// length; a skipped one counts in.Elapsed, capped at the length.
//
// Work sessions add their duration to the owning task's focus time, and a
// completed one also counts a pomodoro. Badge evaluation failures are
// logged and do not fail the call.
func (c *Completer) Finish(ctx context.Context, in Interval, completed bool) (Result, error) {
	if in.Start.IsZero() {
		return Result{}, fmt.Errorf("interval has no start time")
	}
	duration := in.Length
	if !completed {
		duration = in.Elapsed
		if duration < 0 {
			duration = 0
		}
		if duration > in.Length {
			duration = in.Length
		}
	}
	seconds := int(duration / time.Second)

	sess, err := c.sessions.Record(ctx, repository.NewSession{
		StartTime:       in.Start,
		EndTime:         in.Start.Add(duration),
		DurationSeconds: seconds,
		TaskID:          in.TaskID,
		Type:            in.Type,
		Completed:       completed,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to record session: %w", err)
	}
	res := Result{Session: sess}

	if sess.IsWork() && sess.TaskID != "" {
		if completed {
			if err := c.tasks.IncrementPomodoros(ctx, sess.TaskID); err != nil {
				return res, fmt.Errorf("failed to count pomodoro: %w", err)
			}
		}
		if seconds > 0 {
			if err := c.tasks.AddFocusTime(ctx, sess.TaskID, seconds); err != nil {
				return res, fmt.Errorf("failed to add focus time: %w", err)
			}
		}
	}

	if c.notifier != nil {
		if err := c.notifier.Notify(ctx, announcement(sess)); err != nil {
			logger.Warn("Notification failed", "session", sess.ID, "error", err)
		}
	}

	if c.badges != nil {
		awards, err := c.badges.Evaluate(ctx)
		if err != nil {
			logger.Warn("Badge evaluation failed", "session", sess.ID, "error", err)
		}
		res.Awards = awards
	}
	logger.Debug("Finished interval", "type", sess.Type, "completed", completed, "seconds", seconds)
	return res, nil
}

func announcement(s models.Session) string {
	var what string
	switch s.Type {
	case models.SessionShortBreak:
		what = "Short break"
	case models.SessionLongBreak:
		what = "Long break"
	default:
		what = "Pomodoro"
	}
	d := time.Duration(s.DurationSeconds) * time.Second
	if !s.Completed {
		return fmt.Sprintf("%s skipped after %s", what, d)
	}
	if s.IsWork() {
		return fmt.Sprintf("%s complete (%s). Time for a break.", what, d)
	}
	return fmt.Sprintf("%s over (%s). Back to work.", what, d)
}
