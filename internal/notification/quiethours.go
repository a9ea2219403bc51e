package notification

import "github.com/sharath018/church-notification-backend/internal/settings"

// InQuietHours reports whether hour (0-23) falls inside the tenant's quiet
// window. The window is [start, end) and wraps past midnight when start >= end.
func InQuietHours(s settings.Settings, hour int) bool {
	if s.QuietHoursStart == nil || s.QuietHoursEnd == nil {
		return false
	}
	start, end := *s.QuietHoursStart, *s.QuietHoursEnd
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}
