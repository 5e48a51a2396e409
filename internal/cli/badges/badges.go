// Package badges holds the badge and profile commands.
package badges

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/report"
)

// nextThreshold is the value needed for the tier above t, or 0 at gold.
func nextThreshold(b models.Badge, t models.Tier) int {
	if t >= models.TierGold {
		return 0
	}
	return b.Thresholds[int(t)]
}

type BadgesListCmd struct{}

func (c *BadgesListCmd) Run(ctx *cli.Context) error {
	catalog, err := ctx.Badges().Catalog(ctx.Context())
	if err != nil {
		return err
	}
	earned, err := ctx.Badges().UserBadges(ctx.Context())
	if err != nil {
		return err
	}

	sheet := report.Sheet{
		Title:   "Badges",
		Headers: []string{"Badge", "Tier", "Progress", "Next", "Earned"},
	}
	for _, b := range catalog {
		ub := earned[b.ID]
		name := b.Name
		if ub.Pending {
			name += " ★"
		}
		next := "max"
		if n := nextThreshold(b, ub.Tier); n > 0 {
			next = strconv.Itoa(n)
		}
		earnedAt := "-"
		if ub.EarnedAt != nil {
			earnedAt = ub.EarnedAt.In(ctx.Location()).Format("2006-01-02")
		}
		sheet.Rows = append(sheet.Rows, []string{name, ub.Tier.String(), strconv.Itoa(ub.Progress), next, earnedAt})
	}
	ctx.Printf("%s", report.Table(sheet))
	return nil
}

type BadgesEvaluateCmd struct{}

func (c *BadgesEvaluateCmd) Run(ctx *cli.Context) error {
	awards, err := ctx.Evaluator().Evaluate(ctx.Context())
	if err != nil {
		return err
	}
	if len(awards) == 0 {
		ctx.Println("No new badges.")
		return nil
	}
	ctx.PrintAwards(awards)
	return nil
}

// BadgesAckCmd clears the "new" marker. With no ids every pending badge is acknowledged.
type BadgesAckCmd struct {
	IDs []string `arg:"" optional:"" name:"id" help:"Badge IDs to acknowledge."`
}

func (c *BadgesAckCmd) Run(ctx *cli.Context) error {
	eval := ctx.Evaluator()
	pending, err := eval.Pending(ctx.Context())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		ctx.Println("No pending badges.")
		return nil
	}
	n, err := eval.Acknowledge(ctx.Context(), c.IDs...)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Acknowledged %d badge(s)\n", n)
	return nil
}

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(ctx *cli.Context) error {
	p, err := ctx.Profile().Get(ctx.Context())
	if err != nil {
		return err
	}
	lastActive := p.LastActiveDate
	if lastActive == "" {
		lastActive = "never"
	}
	sheet := report.Sheet{
		Title: p.DisplayName,
		Summary: []report.Field{
			{Label: "Focus", Value: fmt.Sprintf("%d min", p.FocusMinutes)},
			{Label: "Sessions", Value: strconv.Itoa(p.CompletedSessions)},
			{Label: "Perfect", Value: strconv.Itoa(p.PerfectSessions)},
			{Label: "Tasks", Value: strconv.Itoa(p.CompletedTasks)},
			{Label: "Streak", Value: fmt.Sprintf("%d day(s)", p.DayStreak)},
			{Label: "Last active", Value: lastActive},
		},
	}
	ctx.Printf("%s", report.Table(sheet))
	return nil
}

type ProfileNameCmd struct {
	Name string `arg:"" help:"New display name."`
}

func (c *ProfileNameCmd) Run(ctx *cli.Context) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("display name cannot be empty")
	}
	if err := ctx.Profile().SetDisplayName(ctx.Context(), name); err != nil {
		return err
	}
	ctx.Printf("✓ Display name set to %s\n", name)
	return nil
}
