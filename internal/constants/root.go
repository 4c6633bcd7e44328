package constants

const (
	AppName            = "medcare"
	DefaultKeyringUser = "database-connection"
	KeyringTokenUser   = "api-token"
	KeyringTwilioUser  = "twilio-auth-token"
	DefaultConfigPath  = "~/.config/medcare/medcare.db"
	Version            = "v0.3.0"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "medcare-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "medcare-notifier.lock"
	NotificationDurationMs = 8000
	TrayAppIdentifier      = "com.darkzangetsu.medcare"
	TrayExecutablePrefix   = "medcare-tray"

	// Queue constants
	QueueName            = "reminders"
	TaskTypeReminderSend = "reminder:send"

	// Notification channels
	ChannelTray = "tray"
	ChannelPush = "push"
	ChannelSMS  = "sms"

	// Notification backends
	BackendLocal = "local"
	BackendQueue = "queue"

	// UpcomingLimit is the maximum number of reminders shown as upcoming.
	UpcomingLimit = 5

	// DispatchSchedule is the cron spec used by the daemon to fire due notifications.
	DispatchSchedule = "@every 1m"
)
