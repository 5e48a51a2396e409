package cli

import "github.com/julianstephens/pomolit/internal/badges"

// PrintAwards announces newly earned badge tiers.
func (c *Context) PrintAwards(awards []badges.Award) {
	for _, a := range awards {
		c.Printf("🏅 Badge earned: %s (%s)\n", a.Badge.Name, a.To)
	}
}
