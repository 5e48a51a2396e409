package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/cli/badges"
	"github.com/julianstephens/pomolit/internal/cli/cloud"
	"github.com/julianstephens/pomolit/internal/cli/notes"
	"github.com/julianstephens/pomolit/internal/cli/sessions"
	"github.com/julianstephens/pomolit/internal/cli/stats"
	"github.com/julianstephens/pomolit/internal/cli/system"
	"github.com/julianstephens/pomolit/internal/cli/tasks"
	"github.com/julianstephens/pomolit/internal/config"
	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/errors"
	"github.com/julianstephens/pomolit/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path. Defaults to $POMOLIT_CONFIG or ~/.config/pomolit/config.toml." type:"path"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize pomolit storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Apply pending database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Check the database, keyring and cloud setup."`

	Task struct {
		Add    tasks.TaskAddCmd    `cmd:"" help:"Add a new task."`
		List   tasks.TaskListCmd   `cmd:"" help:"List tasks."`
		Edit   tasks.TaskEditCmd   `cmd:"" help:"Edit an existing task."`
		Done   tasks.TaskDoneCmd   `cmd:"" help:"Mark a task completed (or --undo)."`
		Delete tasks.TaskDeleteCmd `cmd:"" help:"Delete a task."`
	} `cmd:"" help:"Manage tasks."`

	Session struct {
		Record sessions.SessionRecordCmd `cmd:"" help:"Record a finished interval."`
		List   sessions.SessionListCmd   `cmd:"" help:"List recorded intervals."`
	} `cmd:"" help:"Manage pomodoro sessions."`

	Timer sessions.TimerCmd `cmd:"" help:"Run the pomodoro countdown."`

	Stats struct {
		Day    stats.StatsDayCmd    `cmd:"" help:"Show daily statistics."`
		Week   stats.StatsWeekCmd   `cmd:"" help:"Show weekly statistics."`
		Month  stats.StatsMonthCmd  `cmd:"" help:"Show monthly statistics."`
		Range  stats.StatsRangeCmd  `cmd:"" help:"Show hour-of-day productivity over a date range."`
		Streak stats.StatsStreakCmd `cmd:"" help:"Show the current day streak."`
	} `cmd:"" help:"Show productivity statistics."`

	Report struct {
		Export stats.ReportExportCmd `cmd:"" help:"Export a report to a file."`
	} `cmd:"" help:"Export reports."`

	Badges struct {
		List     badges.BadgesListCmd     `cmd:"" help:"List badges and progress."`
		Evaluate badges.BadgesEvaluateCmd `cmd:"" help:"Re-check badge progress."`
		Ack      badges.BadgesAckCmd      `cmd:"" help:"Acknowledge newly earned badges."`
	} `cmd:"" help:"Show achievement badges."`

	Profile struct {
		Show badges.ProfileShowCmd `cmd:"" help:"Show the profile summary."`
		Name badges.ProfileNameCmd `cmd:"" help:"Set the display name."`
	} `cmd:"" help:"Manage the user profile."`

	Note struct {
		FolderAdd notes.FolderAddCmd  `cmd:"" name:"folder-add" help:"Create a note folder."`
		Folders   notes.FoldersCmd    `cmd:"" help:"List note folders."`
		Add       notes.NoteAddCmd    `cmd:"" help:"Add a note."`
		List      notes.NoteListCmd   `cmd:"" help:"List notes."`
		Show      notes.NoteShowCmd   `cmd:"" help:"Show a note."`
		Edit      notes.NoteEditCmd   `cmd:"" help:"Edit a note."`
		Delete    notes.NoteDeleteCmd `cmd:"" help:"Delete a note or folder."`
	} `cmd:"" help:"Manage markdown notes."`

	Analysis struct {
		Save   notes.AnalysisSaveCmd   `cmd:"" help:"Save an analysis of a date range."`
		Latest notes.AnalysisLatestCmd `cmd:"" help:"Show the most recent analysis."`
	} `cmd:"" help:"Manage saved analyses."`

	Cloud struct {
		Backup  cloud.CloudBackupCmd  `cmd:"" help:"Upload a snapshot of local data."`
		Restore cloud.CloudRestoreCmd `cmd:"" help:"Replace local data with the cloud snapshot."`
		Login   cloud.CloudLoginCmd   `cmd:"" help:"Store cloud credentials in the OS keyring."`
		Logout  cloud.CloudLogoutCmd  `cmd:"" help:"Remove cloud credentials from the OS keyring."`
		Status  cloud.CloudStatusCmd  `cmd:"" help:"Show the cloud mirror configuration."`
	} `cmd:"" help:"Back up and restore through the cloud mirror."`
}

// Commands that manage the database file themselves and must run before it exists.
var storageCommands = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Pomodoro timer, task tracker and productivity stats"),
		kong.UsageOnError(),
		kong.Vars{"version": constants.Version},
	)

	configPath := CLI.Config
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			errors.Fatal(err)
		}
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug || cfg.Debug,
		ConfigDir: config.ConfigDir(configPath),
	}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := cli.NewContext(cfg, configPath).WithContext(sigCtx)
	defer appCtx.Store.Close()

	command := strings.Fields(kctx.Command())[0]
	if !storageCommands[command] {
		if err := appCtx.Store.Load(sigCtx); err != nil {
			errors.Fatal(err)
		}
	}

	logger.Debug("Running command", "command", kctx.Command())
	if err := kctx.Run(appCtx); err != nil {
		appCtx.Store.Close()
		errors.Fatal(err)
	}
}
