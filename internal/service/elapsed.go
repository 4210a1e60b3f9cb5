package service

import (
	"fmt"
	"time"
)

// Elapsed renders how long ago orderTime was, relative to now.
// Granularity stops at hours; anything under a minute (or in the future) is "Just now".
func Elapsed(orderTime, now time.Time) string {
	mins := int(now.Sub(orderTime) / time.Minute)
	switch {
	case mins <= 0:
		return "Just now"
	case mins == 1:
		return "1 min ago"
	case mins < 60:
		return fmt.Sprintf("%d mins ago", mins)
	}

	hours := mins / 60
	if hours == 1 {
		return "1 hour ago"
	}
	return fmt.Sprintf("%d hours ago", hours)
}
