package models

// Settings represents application-wide settings
type Settings struct {
	NotificationsEnabled       bool   `json:"notifications_enabled"`         // whether notifications may be scheduled at all
	Timezone                   string `json:"timezone"`                      // IANA timezone name, or "Local" for system timezone
	UpcomingLimit              int    `json:"upcoming_limit"`                // number of reminders on the dashboard
	NotificationGracePeriodMin int    `json:"notification_grace_period_min"` // how late a queued notification may still be delivered
}
