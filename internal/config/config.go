// Package config handles loading the pomolit.toml style configuration file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/utils"
)

// Config represents the config.toml configuration file.
type Config struct {
	Debug    bool     `toml:"debug"`
	Database Database `toml:"database"`
	Timer    Timer    `toml:"timer"`
	User     User     `toml:"user"`
	Cloud    Cloud    `toml:"cloud"`
	Notify   Notify   `toml:"notify"`
}

// Database contains local store configuration.
type Database struct {
	// Path is the SQLite file. Defaults to pomolit.db next to the config file.
	Path string `toml:"path"`
}

// Timer contains interval lengths, all in seconds.
type Timer struct {
	WorkSeconds       int `toml:"work-seconds"`
	ShortBreakSeconds int `toml:"short-break-seconds"`
	LongBreakSeconds  int `toml:"long-break-seconds"`
	// LongBreakInterval is the number of work sessions between long breaks.
	LongBreakInterval int `toml:"long-break-interval"`
	// DailyGoal is the number of completed pomodoros that scores a full day.
	DailyGoal int `toml:"daily-goal"`
}

// User identifies the local user for cloud snapshots and the profile.
type User struct {
	ID          string `toml:"id"`
	DisplayName string `toml:"display-name"`
	Timezone    string `toml:"timezone"`
}

// Cloud configures the snapshot mirror.
type Cloud struct {
	// Driver is "file" or "postgres".
	Driver string `toml:"driver"`
	// URL is a PostgreSQL connection string without a password.
	URL string `toml:"url"`
	// Dir holds snapshot files for the file driver.
	Dir string `toml:"dir"`
}

// Notify configures the interval-end webhook. An empty URL disables it.
type Notify struct {
	WebhookURL string `toml:"webhook-url"`
	// DurationMs is how long the receiver should show the notification.
	DurationMs int `toml:"duration-ms"`
}

// Default returns the configuration used when no file exists.
func Default(configDir string) *Config {
	return &Config{
		Database: Database{Path: filepath.Join(configDir, constants.DefaultDBName)},
		Timer: Timer{
			WorkSeconds:       constants.DefaultWorkSeconds,
			ShortBreakSeconds: constants.DefaultShortBreakSeconds,
			LongBreakSeconds:  constants.DefaultLongBreakSeconds,
			LongBreakInterval: constants.DefaultLongBreakInterval,
			DailyGoal:         constants.DefaultDailyGoal,
		},
		User: User{
			ID:          constants.DefaultUserID,
			DisplayName: constants.DefaultDisplayName,
			Timezone:    constants.DefaultTimezone,
		},
		Cloud: Cloud{
			Driver: constants.DefaultCloudDriver,
			Dir:    filepath.Join(configDir, constants.SnapshotDirName),
		},
		Notify: Notify{DurationMs: constants.NotificationDurationMs},
	}
}

// DefaultPath returns ~/.config/pomolit/config.toml, or $POMOLIT_CONFIG when set.
func DefaultPath() (string, error) {
	if p := os.Getenv(constants.EnvConfigPath); p != "" {
		return ExpandPath(p)
	}
	return ExpandPath(filepath.Join(constants.DefaultConfigDir, constants.ConfigFileName))
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
	}
	return p, nil
}

// Load reads the config file at path over the defaults, then applies
// POMOLIT_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default(filepath.Dir(path))

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	default:
		var fileCfg Config
		meta, err := toml.Decode(string(data), &fileCfg)
		if err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse config file %s: unknown key %q", path, undecoded[0].String())
		}
		merge(cfg, &fileCfg, meta)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path, err = ExpandPath(cfg.Database.Path); err != nil {
		return nil, err
	}
	if cfg.Cloud.Dir, err = ExpandPath(cfg.Cloud.Dir); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// merge copies every key the file actually defines, so explicit zero values win over defaults.
func merge(dst, src *Config, meta toml.MetaData) {
	if meta.IsDefined("debug") {
		dst.Debug = src.Debug
	}
	mergeString(meta.IsDefined("database", "path"), &dst.Database.Path, src.Database.Path)

	mergeInt(meta.IsDefined("timer", "work-seconds"), &dst.Timer.WorkSeconds, src.Timer.WorkSeconds)
	mergeInt(meta.IsDefined("timer", "short-break-seconds"), &dst.Timer.ShortBreakSeconds, src.Timer.ShortBreakSeconds)
	mergeInt(meta.IsDefined("timer", "long-break-seconds"), &dst.Timer.LongBreakSeconds, src.Timer.LongBreakSeconds)
	mergeInt(meta.IsDefined("timer", "long-break-interval"), &dst.Timer.LongBreakInterval, src.Timer.LongBreakInterval)
	mergeInt(meta.IsDefined("timer", "daily-goal"), &dst.Timer.DailyGoal, src.Timer.DailyGoal)

	mergeString(meta.IsDefined("user", "id"), &dst.User.ID, src.User.ID)
	mergeString(meta.IsDefined("user", "display-name"), &dst.User.DisplayName, src.User.DisplayName)
	mergeString(meta.IsDefined("user", "timezone"), &dst.User.Timezone, src.User.Timezone)

	mergeString(meta.IsDefined("cloud", "driver"), &dst.Cloud.Driver, src.Cloud.Driver)
	mergeString(meta.IsDefined("cloud", "url"), &dst.Cloud.URL, src.Cloud.URL)
	mergeString(meta.IsDefined("cloud", "dir"), &dst.Cloud.Dir, src.Cloud.Dir)

	mergeString(meta.IsDefined("notify", "webhook-url"), &dst.Notify.WebhookURL, src.Notify.WebhookURL)
	mergeInt(meta.IsDefined("notify", "duration-ms"), &dst.Notify.DurationMs, src.Notify.DurationMs)
}

func mergeString(defined bool, dst *string, value string) {
	if defined {
		*dst = strings.TrimSpace(value)
	}
}

func mergeInt(defined bool, dst *int, value int) {
	if defined {
		*dst = value
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(constants.EnvDatabasePath); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv(constants.EnvTimezone); v != "" {
		cfg.User.Timezone = v
	}
	if v := os.Getenv(constants.EnvUserID); v != "" {
		cfg.User.ID = v
	}
	if v := os.Getenv(constants.EnvCloudURL); v != "" {
		cfg.Cloud.URL = v
		cfg.Cloud.Driver = constants.CloudDriverPostgres
	}
	if v := os.Getenv(constants.EnvNotifyURL); v != "" {
		cfg.Notify.WebhookURL = v
	}
	if v := os.Getenv(constants.EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", constants.EnvDebug, v, err)
		}
		cfg.Debug = debug
	}
	return nil
}

// Validate checks that the merged configuration is usable.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Timer.WorkSeconds <= 0 || c.Timer.ShortBreakSeconds <= 0 || c.Timer.LongBreakSeconds <= 0 {
		return fmt.Errorf("timer lengths must be positive")
	}
	if c.Timer.LongBreakInterval < 1 {
		return fmt.Errorf("long-break-interval must be at least 1")
	}
	if c.Timer.DailyGoal < 1 {
		return fmt.Errorf("daily-goal must be at least 1")
	}
	if strings.TrimSpace(c.User.ID) == "" {
		return fmt.Errorf("user id cannot be empty")
	}
	if !utils.ValidateTimezone(c.User.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.User.Timezone)
	}
	switch c.Cloud.Driver {
	case constants.CloudDriverFile:
		if c.Cloud.Dir == "" {
			return fmt.Errorf("cloud dir cannot be empty for the file driver")
		}
	case constants.CloudDriverPostgres:
	default:
		return fmt.Errorf("unknown cloud driver %q", c.Cloud.Driver)
	}
	if c.Notify.WebhookURL != "" {
		u, err := url.Parse(c.Notify.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("notify webhook-url must be an http(s) URL")
		}
	}
	if c.Notify.DurationMs < 0 {
		return fmt.Errorf("notify duration-ms cannot be negative")
	}
	return nil
}

// ConfigDir returns the directory holding the config file, logs and the default database.
func ConfigDir(configPath string) string {
	return filepath.Dir(configPath)
}
