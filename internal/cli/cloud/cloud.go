// Package cloud holds the snapshot backup and restore commands.
package cloud

import (
	"errors"
	"fmt"

	"github.com/julianstephens/pomolit/internal/cli"
	"github.com/julianstephens/pomolit/internal/cloud"
	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/keyring"
	"github.com/julianstephens/pomolit/internal/logger"
)

// service wires the configured mirror to the local store. The caller closes the mirror.
func service(ctx *cli.Context) (*cloud.Service, cloud.Mirror, error) {
	mirror, err := ctx.Mirror()
	if err != nil {
		return nil, nil, err
	}
	passphrase, err := ctx.Passphrase()
	if err != nil {
		mirror.Close()
		return nil, nil, err
	}
	return cloud.NewService(ctx.Store, mirror, passphrase), mirror, nil
}

func closeMirror(m cloud.Mirror) {
	if err := m.Close(); err != nil {
		logger.Warn("Failed to close cloud mirror", "error", err)
	}
}

func printCounts(ctx *cli.Context, snap cloud.Snapshot) {
	ctx.Printf("  Tasks: %d  Sessions: %d  Notes: %d  Badges: %d  Analyses: %d\n",
		len(snap.Tasks), len(snap.Sessions), len(snap.Notes), len(snap.UserBadges), len(snap.Analyses))
}

type CloudBackupCmd struct{}

func (c *CloudBackupCmd) Run(ctx *cli.Context) error {
	svc, mirror, err := service(ctx)
	if err != nil {
		return err
	}
	defer closeMirror(mirror)

	snap, err := svc.Backup(ctx.Context(), ctx.Config.User.ID)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("✓ Backed up snapshot for %s (%s)\n", snap.UserID, snap.CreatedAt.In(ctx.Location()).Format("2006-01-02 15:04:05"))
	printCounts(ctx, snap)
	return nil
}

type CloudRestoreCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *CloudRestoreCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		ok, err := ctx.Confirm("Restore from the cloud snapshot?",
			"Every local task, session, note and badge is replaced by the snapshot.")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	svc, mirror, err := service(ctx)
	if err != nil {
		return err
	}
	defer closeMirror(mirror)

	snap, err := svc.Restore(ctx.Context(), ctx.Config.User.ID)
	if errors.Is(err, cloud.ErrNoSnapshot) {
		return fmt.Errorf("no snapshot to restore for %s: run 'pomolit cloud backup' first", ctx.Config.User.ID)
	}
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	ctx.Printf("✓ Restored snapshot from %s\n", snap.CreatedAt.In(ctx.Location()).Format("2006-01-02 15:04:05"))
	printCounts(ctx, snap)
	return nil
}

// CloudLoginCmd stores the PostgreSQL connection string, and optionally a
// snapshot passphrase, in the OS keyring.
type CloudLoginCmd struct {
	ConnString string `arg:"" optional:"" name:"connection-string" help:"PostgreSQL URI or DSN without a password. Defaults to cloud.url."`
	Passphrase bool   `help:"Also prompt for a passphrase to encrypt snapshots."`
	Check      bool   `help:"Connect once to verify the connection string."`
}

func (c *CloudLoginCmd) Run(ctx *cli.Context) error {
	connStr := c.ConnString
	if connStr == "" {
		connStr = ctx.Config.Cloud.URL
	}
	if connStr != "" {
		if _, err := cloud.ValidateConnString(connStr); err != nil {
			if errors.Is(err, cloud.ErrEmbeddedCredentials) {
				return fmt.Errorf("%w: put the password in ~/.pgpass or PGPASSWORD instead", err)
			}
			return err
		}
		if c.Check {
			m := cloud.NewPostgresMirror(connStr)
			err := m.Open(ctx.Context())
			closeMirror(m)
			if err != nil {
				return err
			}
			ctx.Println("✓ Connected")
		}
		if err := keyring.SetConnectionString(connStr); err != nil {
			return err
		}
		ctx.Printf("✓ Stored connection string %s\n", cloud.MaskPassword(connStr))
		if ctx.Config.Cloud.Driver != constants.CloudDriverPostgres {
			ctx.Printf("  Set cloud.driver = %q in %s to use it.\n", constants.CloudDriverPostgres, ctx.ConfigPath)
		}
	} else if !c.Passphrase {
		return fmt.Errorf("nothing to store: pass a connection string or --passphrase")
	}

	if c.Passphrase {
		p, err := ctx.Secret("Snapshot passphrase")
		if err != nil {
			return err
		}
		if p == "" {
			return fmt.Errorf("passphrase cannot be empty")
		}
		if err := keyring.SetPassphrase(p); err != nil {
			return err
		}
		ctx.Println("✓ Stored snapshot passphrase")
	}
	return nil
}

type CloudLogoutCmd struct{}

func (c *CloudLogoutCmd) Run(ctx *cli.Context) error {
	removed := 0
	for _, del := range []func() error{keyring.DeleteConnectionString, keyring.DeletePassphrase} {
		err := del()
		if errors.Is(err, keyring.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		removed++
	}
	if removed == 0 {
		ctx.Println("No cloud credentials stored.")
		return nil
	}
	ctx.Println("✓ Removed cloud credentials from the keyring")
	return nil
}

type CloudStatusCmd struct{}

func (c *CloudStatusCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config.Cloud
	ctx.Printf("Driver: %s\n", cfg.Driver)
	ctx.Printf("User: %s\n", ctx.Config.User.ID)

	passphrase, err := ctx.Passphrase()
	if err != nil {
		return err
	}
	encrypted := "no"
	if passphrase != "" {
		encrypted = "yes"
	}

	switch cfg.Driver {
	case constants.CloudDriverPostgres:
		target := "not configured"
		if connStr, err := keyring.GetConnectionString(); err == nil {
			target = cloud.MaskPassword(connStr) + " (keyring)"
		} else if cfg.URL != "" {
			target = cloud.MaskPassword(cfg.URL) + " (config)"
		}
		ctx.Printf("Target: %s\n", target)
		ctx.Printf("Encrypted: %s\n", encrypted)
	default:
		m := cloud.NewFileMirror(cfg.Dir)
		ctx.Printf("Target: %s\n", m.Dir())
		ctx.Printf("Encrypted: %s\n", encrypted)
		snaps, err := m.List(ctx.Config.User.ID)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			ctx.Println("Snapshots: none")
			return nil
		}
		ctx.Printf("Snapshots: %d (latest %s)\n", len(snaps),
			snaps[0].Timestamp.In(ctx.Location()).Format("2006-01-02 15:04:05"))
	}
	return nil
}
