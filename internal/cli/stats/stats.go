// Package stats holds the statistics and report export commands.
package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/report"
	"github.com/julianstephens/pomolit/internal/utils"
)

// output writes sheet to stdout, or to path when one is given.
func output(ctx *cli.Context, sheet report.Sheet, format, path string) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	if path == "" {
		if f == report.FormatPDF {
			return fmt.Errorf("pdf output needs --output")
		}
		return report.Write(ctx.Out, sheet, f)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := report.Write(file, sheet, f); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	ctx.Printf("✓ Wrote %s\n", path)
	return nil
}

// parseMonth accepts YYYY-MM; empty means the current month.
func parseMonth(ctx *cli.Context, s string) (int, time.Month, error) {
	if s == "" {
		now := ctx.Now().In(ctx.Location())
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: use YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

type StatsDayCmd struct {
	Date   string `arg:"" optional:"" help:"Day to report (YYYY-MM-DD, today, yesterday)."`
	Format string `short:"f" help:"Output format: table, json or yaml." default:"table"`
}

func (c *StatsDayCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	d, err := ctx.Aggregator().Daily(ctx.Context(), date)
	if err != nil {
		return err
	}
	return output(ctx, report.FromDaily(d), c.Format, "")
}

type StatsWeekCmd struct {
	Date   string `arg:"" optional:"" help:"Any day in the week (YYYY-MM-DD, today, yesterday)."`
	Format string `short:"f" help:"Output format: table, json or yaml." default:"table"`
}

func (c *StatsWeekCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	w, err := ctx.Aggregator().Weekly(ctx.Context(), date)
	if err != nil {
		return err
	}
	return output(ctx, report.FromWeekly(w), c.Format, "")
}

type StatsMonthCmd struct {
	Month  string `arg:"" optional:"" help:"Month to report (YYYY-MM). Defaults to the current month."`
	Format string `short:"f" help:"Output format: table, json or yaml." default:"table"`
}

func (c *StatsMonthCmd) Run(ctx *cli.Context) error {
	year, month, err := parseMonth(ctx, c.Month)
	if err != nil {
		return err
	}
	m, err := ctx.Aggregator().Monthly(ctx.Context(), year, month)
	if err != nil {
		return err
	}
	return output(ctx, report.FromMonthly(m), c.Format, "")
}

type StatsRangeCmd struct {
	Start  string `arg:"" help:"First day (YYYY-MM-DD)."`
	End    string `arg:"" optional:"" help:"Last day (YYYY-MM-DD). Defaults to today."`
	Format string `short:"f" help:"Output format: table, json or yaml." default:"table"`
}

func (c *StatsRangeCmd) Run(ctx *cli.Context) error {
	start, err := ctx.ResolveDate(c.Start)
	if err != nil {
		return err
	}
	end, err := ctx.ResolveDate(c.End)
	if err != nil {
		return err
	}
	r, err := ctx.Aggregator().Range(ctx.Context(), start, end)
	if err != nil {
		return err
	}
	return output(ctx, report.FromRange(r), c.Format, "")
}

type StatsStreakCmd struct{}

func (c *StatsStreakCmd) Run(ctx *cli.Context) error {
	streak, err := ctx.Aggregator().Streak(ctx.Context(), ctx.Today())
	if err != nil {
		return err
	}
	switch streak {
	case 0:
		ctx.Println("No active streak. Finish a pomodoro today to start one.")
	case 1:
		ctx.Println("🔥 1 day streak")
	default:
		ctx.Printf("🔥 %d day streak\n", streak)
	}
	return nil
}

// ReportExportCmd writes a daily, weekly or monthly report to a file. The
// format comes from --format or, failing that, the file extension.
type ReportExportCmd struct {
	Period string `arg:"" enum:"day,week,month" help:"Report period: day, week or month."`
	Output string `short:"o" required:"" help:"File to write." type:"path"`
	Date   string `short:"d" help:"Day in the period (YYYY-MM-DD, today, yesterday)."`
	Format string `short:"f" help:"Output format: table, json, yaml or pdf."`
}

func (c *ReportExportCmd) Run(ctx *cli.Context) error {
	format := c.Format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(c.Output), ".")
		if format == "txt" {
			format = string(report.FormatTable)
		}
	}
	if _, err := report.ParseFormat(format); err != nil {
		return err
	}

	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	agg := ctx.Aggregator()

	var sheet report.Sheet
	switch c.Period {
	case "day":
		d, err := agg.Daily(ctx.Context(), date)
		if err != nil {
			return err
		}
		sheet = report.FromDaily(d)
	case "week":
		w, err := agg.Weekly(ctx.Context(), date)
		if err != nil {
			return err
		}
		sheet = report.FromWeekly(w)
	case "month":
		t, err := utils.ParseDate(date)
		if err != nil {
			return err
		}
		m, err := agg.Monthly(ctx.Context(), t.Year(), t.Month())
		if err != nil {
			return err
		}
		sheet = report.FromMonthly(m)
	default:
		return fmt.Errorf("unknown report period %q", c.Period)
	}
	return output(ctx, sheet, format, c.Output)
}
