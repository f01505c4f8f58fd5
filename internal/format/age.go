package format

import (
	"fmt"
	"time"
)

// Age formats a duration as a compact human-readable age string:
// "now", "5m", "2h", "3d", "2w", "3mo", "1y".
func Age(d time.Duration) string {
	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	days := int(d.Hours() / 24)
	if days < 7 {
		return fmt.Sprintf("%dd", days)
	}
	if days < 30 {
		return fmt.Sprintf("%dw", days/7)
	}
	months := days / 30
	if months < 12 {
		return fmt.Sprintf("%dmo", months)
	}
	return fmt.Sprintf("%dy", months/12)
}

// AgeSince formats the age of a timestamp relative to now. The zero time
// has no meaningful age and renders as an empty string.
func AgeSince(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return Age(time.Since(t))
}
