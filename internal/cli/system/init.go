// Package system holds the storage lifecycle and health commands.
package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/constants"
)

type InitCmd struct {
	Force bool `help:"Delete the existing database before initializing."`
	Yes   bool `short:"y" help:"Skip the confirmation prompt for --force."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	dbPath := ctx.Store.Path()
	if c.Force {
		if _, err := os.Stat(dbPath); err == nil {
			if !c.Yes {
				ok, err := ctx.Confirm("Delete the existing database?", dbPath+" and all of its data will be removed.")
				if err != nil {
					return err
				}
				if !ok {
					ctx.Println("Init cancelled.")
					return nil
				}
			}
			// Close first so the file is not locked.
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(ctx.Context()); err != nil {
		return err
	}
	// A name set with 'pomolit profile name' wins over the config default.
	profile, err := ctx.Profile().Get(ctx.Context())
	if err != nil {
		return err
	}
	if name := ctx.Config.User.DisplayName; name != "" && profile.DisplayName == constants.DefaultDisplayName {
		if err := ctx.Profile().SetDisplayName(ctx.Context(), name); err != nil {
			return err
		}
	}
	ctx.Printf("Initialized pomolit storage at: %s\n", dbPath)
	return nil
}
