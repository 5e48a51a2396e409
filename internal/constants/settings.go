package constants

const (
	// Environment overrides
	EnvConfigPath       = "POMOLIT_CONFIG"
	EnvDatabasePath     = "POMOLIT_DB"
	EnvCloudURL         = "POMOLIT_CLOUD_URL"
	EnvCloudPassphrase  = "POMOLIT_CLOUD_PASSPHRASE"
	EnvDebug            = "POMOLIT_DEBUG"
	EnvTimezone         = "POMOLIT_TIMEZONE"
	EnvUserID           = "POMOLIT_USER_ID"
	EnvNotifyURL        = "POMOLIT_NOTIFY_URL"
	EnvNotifySecret     = "POMOLIT_NOTIFY_SECRET"

	// Default timer lengths, in seconds
	DefaultWorkSeconds       = 25 * 60
	DefaultShortBreakSeconds = 5 * 60
	DefaultLongBreakSeconds  = 15 * 60
	DefaultLongBreakInterval = 4
	DefaultDailyGoal         = 8
	DefaultTargetPomodoros   = 1

	DefaultTimezone    = "Local" // Use system local timezone by default
	DefaultUserID      = "local"
	DefaultDisplayName = "Focuser"
	DefaultCloudDriver = CloudDriverFile

	// Notification defaults
	NotificationDurationMs = 5000
	NotificationTimeoutMs  = 3000

	// Productivity score weights. They must sum to 1.0.
	ScorePomodoroWeight   = 0.6
	ScoreCompletionWeight = 0.4
)

func init() {
	if ScorePomodoroWeight+ScoreCompletionWeight != 1.0 {
		panic("ScorePomodoroWeight and ScoreCompletionWeight must sum to 1.0")
	}
}
