package constants

const (
	// General Settings
	SettingNotificationsEnabled = "notifications_enabled"
	SettingTimezone             = "timezone"
	SettingUpcomingLimit        = "upcoming_limit"
	SettingGracePeriodMin       = "notification_grace_period_min"

	// Default Settings Values
	DefaultNotificationsEnabled = true
	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultUpcomingLimit        = UpcomingLimit
	DefaultGracePeriodMin       = 30
)
