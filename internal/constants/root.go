package constants

const (
	AppName            = "pomolit"
	DefaultKeyringUser = "cloud-connection"
	DefaultConfigDir   = "~/.config/pomolit"
	DefaultDBName      = "pomolit.db"
	ConfigFileName     = "config.toml"
	Version            = "v0.1.0"

	// Snapshot constants
	MaxSnapshots       = 14
	SnapshotDirName    = "snapshots"
	SnapshotFilePrefix = "pomolit-"
	SnapshotFileSuffix = ".json"
	SnapshotVersion    = 1

	// Session type constants
	SessionWork       = "work"
	SessionShortBreak = "short_break"
	SessionLongBreak  = "long_break"

	// Cloud drivers
	CloudDriverPostgres = "postgres"
	CloudDriverFile     = "file"

	// ProfileID is the primary key of the singleton user_profile row.
	ProfileID = 1
)
