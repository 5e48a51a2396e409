package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/pomolit/internal/badges"
	"github.com/julianstephens/pomolit/internal/cloud"
	"github.com/julianstephens/pomolit/internal/config"
	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/keyring"
	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/notifier"
	"github.com/julianstephens/pomolit/internal/repository"
	"github.com/julianstephens/pomolit/internal/stats"
	"github.com/julianstephens/pomolit/internal/storage"
	"github.com/julianstephens/pomolit/internal/utils"
)

// Context is passed to every command's Run method.
type Context struct {
	Config     *config.Config
	ConfigPath string
	Store      *storage.Store
	Out        io.Writer
	// Confirm asks a yes/no question before destructive operations.
	Confirm func(title, description string) (bool, error)
	// Secret reads a value without echoing it.
	Secret func(title string) (string, error)
	// Now is the wall clock; tests pin it.
	Now func() time.Time

	ctx context.Context
}

func NewContext(cfg *config.Config, configPath string) *Context {
	return &Context{
		Config:     cfg,
		ConfigPath: configPath,
		Store:      storage.NewStore(cfg.Database.Path),
		Out:        os.Stdout,
		Confirm:    ConfirmPrompt,
		Secret:     SecretPrompt,
		Now:        time.Now,
		ctx:        context.Background(),
	}
}

// WithContext sets the context blocking calls run under.
func (c *Context) WithContext(ctx context.Context) *Context {
	c.ctx = ctx
	return c
}

// Context returns the context commands pass to storage and network calls.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// ConfirmPrompt shows a huh yes/no form on the terminal.
func ConfirmPrompt(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeBase())
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("interactive form error: %w", err)
	}
	return ok, nil
}

// SecretPrompt shows a huh password input on the terminal.
func SecretPrompt(title string) (string, error) {
	var value string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				EchoMode(huh.EchoModePassword).
				Value(&value),
		),
	).WithTheme(huh.ThemeBase())
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("interactive form error: %w", err)
	}
	return value, nil
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// Location is the user's configured timezone. Config validation has
// already checked it loads.
func (c *Context) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Config.User.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Context) Today() string {
	return utils.FormatDate(c.Now().In(c.Location()))
}

// ResolveDate accepts YYYY-MM-DD, "today" or "yesterday". Empty means today.
func (c *Context) ResolveDate(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return c.Today(), nil
	case "yesterday":
		return utils.AddDays(c.Today(), -1)
	}
	if err := models.ValidateDate(s); err != nil {
		return "", err
	}
	return s, nil
}

func (c *Context) Tasks() *repository.Tasks {
	return repository.NewTasks(c.Store)
}

func (c *Context) Sessions() *repository.Sessions {
	return repository.NewSessions(c.Store, c.Location())
}

func (c *Context) Notes() *repository.Notes {
	return repository.NewNotes(c.Store)
}

func (c *Context) Analyses() *repository.Analyses {
	return repository.NewAnalyses(c.Store)
}

func (c *Context) Badges() *repository.Badges {
	return repository.NewBadges(c.Store)
}

func (c *Context) Profile() *repository.Profile {
	return repository.NewProfile(c.Store)
}

func (c *Context) Evaluator() *badges.Evaluator {
	return badges.NewEvaluator(c.Sessions(), c.Tasks(), c.Badges(), c.Profile(),
		c.Config.Timer.WorkSeconds, c.Today)
}

func (c *Context) Aggregator() *stats.Aggregator {
	return stats.NewAggregator(c.Sessions(), c.Tasks(), c.Config.Timer.DailyGoal)
}

// Mirror builds the configured snapshot mirror. For postgres, a connection
// string in the keyring takes precedence over the config URL.
func (c *Context) Mirror() (cloud.Mirror, error) {
	switch c.Config.Cloud.Driver {
	case constants.CloudDriverPostgres:
		connStr, err := keyring.GetConnectionString()
		if errors.Is(err, keyring.ErrNotFound) || errors.Is(err, keyring.ErrKeyringUnavailable) {
			connStr = c.Config.Cloud.URL
		} else if err != nil {
			return nil, err
		}
		if connStr == "" {
			return nil, fmt.Errorf("%w: set cloud.url or run 'pomolit cloud login'", keyring.ErrNotFound)
		}
		return cloud.NewPostgresMirror(connStr), nil
	default:
		return cloud.NewFileMirror(c.Config.Cloud.Dir), nil
	}
}

// Notifier returns the interval-end webhook, or nil when none is configured.
func (c *Context) Notifier() *notifier.Notifier {
	return notifier.FromConfig(c.Config.Notify, os.Getenv(constants.EnvNotifySecret))
}

// Passphrase returns the snapshot passphrase from the environment or the
// keyring. Empty means snapshots are stored unsealed.
func (c *Context) Passphrase() (string, error) {
	if p := os.Getenv(constants.EnvCloudPassphrase); p != "" {
		return p, nil
	}
	p, err := keyring.GetPassphrase()
	if errors.Is(err, keyring.ErrNotFound) || errors.Is(err, keyring.ErrKeyringUnavailable) {
		return "", nil
	}
	return p, err
}
