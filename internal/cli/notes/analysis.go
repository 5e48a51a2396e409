package notes

import (
	"errors"
	"strings"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/storage"
)

type AnalysisSaveCmd struct {
	Summary     string   `arg:"" help:"Summary of the analysed period (markdown)."`
	Start       string   `help:"First day covered (YYYY-MM-DD, today, yesterday)." required:""`
	End         string   `help:"Last day covered. Defaults to today."`
	Suggestions []string `short:"s" name:"suggestion" help:"A suggestion; repeat for more."`
}

func (c *AnalysisSaveCmd) Run(ctx *cli.Context) error {
	start, err := ctx.ResolveDate(c.Start)
	if err != nil {
		return err
	}
	end, err := ctx.ResolveDate(c.End)
	if err != nil {
		return err
	}
	a, err := ctx.Analyses().SaveAnalysis(ctx.Context(), start, end, strings.TrimSpace(c.Summary), c.Suggestions)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Saved analysis %s for %s to %s\n", shortID(a.ID), a.StartDate, a.EndDate)
	return nil
}

type AnalysisLatestCmd struct {
	Raw bool `help:"Print the markdown source instead of rendering it."`
}

func (c *AnalysisLatestCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Analyses().LatestAnalysis(ctx.Context())
	if errors.Is(err, storage.ErrNotFound) {
		ctx.Println("No analysis saved yet.")
		return nil
	}
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("## Analysis " + a.StartDate + " to " + a.EndDate + "\n\n")
	b.WriteString(a.Summary + "\n")
	if len(a.Suggestions) > 0 {
		b.WriteString("\n### Suggestions\n\n")
		for _, s := range a.Suggestions {
			b.WriteString("- " + s + "\n")
		}
	}
	if c.Raw {
		ctx.Printf("%s", b.String())
		return nil
	}
	ctx.Printf("%s", render(b.String()))
	return nil
}
