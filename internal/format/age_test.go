package format

import (
	"testing"
	"time"
)

func TestAge(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		// Now (sub-minute)
		{"zero", 0, "now"},
		{"30 seconds", 30 * time.Second, "now"},
		{"59 seconds", 59 * time.Second, "now"},

		// Minutes
		{"1 minute", time.Minute, "1m"},
		{"59 minutes", 59 * time.Minute, "59m"},

		// Hours
		{"1 hour", time.Hour, "1h"},
		{"23 hours", 23 * time.Hour, "23h"},

		// Days
		{"1 day", 24 * time.Hour, "1d"},
		{"6 days", 6 * 24 * time.Hour, "6d"},

		// Weeks
		{"7 days (1 week)", 7 * 24 * time.Hour, "1w"},
		{"21 days (3 weeks)", 21 * 24 * time.Hour, "3w"},
		{"29 days", 29 * 24 * time.Hour, "4w"},

		// Months
		{"30 days (1 month)", 30 * 24 * time.Hour, "1mo"},
		{"90 days (3 months)", 90 * 24 * time.Hour, "3mo"},
		{"330 days (11 months)", 330 * 24 * time.Hour, "11mo"},

		// Years
		{"365 days", 365 * 24 * time.Hour, "1y"},
		{"800 days", 800 * 24 * time.Hour, "2y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Age(tt.duration)
			if got != tt.expected {
				t.Errorf("Age(%v) = %q, want %q", tt.duration, got, tt.expected)
			}
		})
	}
}

func TestAgeSince(t *testing.T) {
	if got := AgeSince(time.Time{}); got != "" {
		t.Errorf("AgeSince(zero) = %q, want empty string", got)
	}

	got := AgeSince(time.Now().Add(-2 * time.Hour))
	if got != "2h" {
		t.Errorf("AgeSince(2h ago) = %q, want %q", got, "2h")
	}
}
