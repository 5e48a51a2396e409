package sessions

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/logger"
	"github.com/julianstephens/pomolit/internal/timer"
)

type TimerCmd struct {
	Task string `arg:"" optional:"" help:"Task ID or unique prefix to work on."`
}

func (c *TimerCmd) Run(ctx *cli.Context) error {
	taskID, taskTitle, err := resolveTask(ctx, c.Task)
	if err != nil {
		return err
	}

	plan := timer.PlanFromConfig(ctx.Config.Timer)
	m := timer.New(plan, completer(ctx), taskID, taskTitle).WithContext(ctx.Context())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx.Context()))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("timer: %w", err)
	}
	if fm, ok := final.(timer.Model); ok {
		logger.Info("Timer closed", "completed_work", fm.CompletedWork())
		ctx.Printf("Completed %d pomodoro(s) this run.\n", fm.CompletedWork())
	}
	return nil
}
