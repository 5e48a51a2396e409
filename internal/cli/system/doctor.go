package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/cloud"
	"github.com/julianstephens/pomolit/internal/config"
	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/keyring"
	"github.com/julianstephens/pomolit/internal/logger"
	"github.com/julianstephens/pomolit/internal/utils"
)

type DoctorCmd struct{}

type check struct {
	name string
	// warnOnly checks print a warning instead of failing the run.
	warnOnly bool
	needsDB  bool
	run      func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Task rows", needsDB: true, run: checkTasks},
	{name: "Session rows", needsDB: true, run: checkSessions},
	{name: "Badge catalog", needsDB: true, run: checkBadgeCatalog},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "OS keyring", warnOnly: true, run: checkKeyring},
	{name: "Cloud snapshots", warnOnly: true, run: checkSnapshots},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	ctx.Printf("Log file: %s\n", logger.LogFile(config.ConfigDir(ctx.ConfigPath)))
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Context()); err != nil {
		return err
	}
	return ctx.Store.Ping(ctx.Context())
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, err := ctx.Store.SchemaVersion(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	latest, err := ctx.Store.LatestSchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind %d: run 'pomolit migrate'", current, latest)
	}
	return nil
}

// checkTasks reads every task; the scanner rejects rows that break invariants.
func checkTasks(ctx *cli.Context) error {
	_, err := ctx.Tasks().List(ctx.Context())
	return err
}

func checkSessions(ctx *cli.Context) error {
	_, err := ctx.Sessions().ListAll(ctx.Context())
	return err
}

func checkBadgeCatalog(ctx *cli.Context) error {
	catalog, err := ctx.Badges().Catalog(ctx.Context())
	if err != nil {
		return err
	}
	if len(catalog) == 0 {
		return fmt.Errorf("badge catalog is empty: run 'pomolit init'")
	}
	for _, b := range catalog {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock appears to be wrong: %s", now.Format(time.RFC3339))
	}
	if _, err := utils.LoadLocation(ctx.Config.User.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", ctx.Config.User.Timezone, err)
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkSnapshots(ctx *cli.Context) error {
	if ctx.Config.Cloud.Driver != constants.CloudDriverFile {
		return nil
	}
	snapshots, err := cloud.NewFileMirror(ctx.Config.Cloud.Dir).List(ctx.Config.User.ID)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return fmt.Errorf("no snapshots in %s: run 'pomolit cloud backup'", ctx.Config.Cloud.Dir)
	}
	return nil
}
