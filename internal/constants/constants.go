// Package constants provides a centralized location for tunable values
// and magic numbers used throughout the branchwatch application.
package constants

import "time"

// Progress display constants
const (
	// TUIUpdateInterval is the minimum time between TUI progress updates
	// to provide smooth progress display without excessive overhead.
	TUIUpdateInterval = 50 * time.Millisecond

	// LogThrottlePercent is the interval (in percent) at which progress
	// logs are emitted when not using the TUI.
	LogThrottlePercent = 5
)

// API constants
const (
	// PerPage is the page size used for paginated branch listings.
	PerPage = 100

	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// Scan defaults
const (
	// DefaultWorkers is the number of repositories scanned concurrently
	// when no worker count is configured. One keeps the scan sequential.
	DefaultWorkers = 1

	// MaxWorkers caps the configured worker pool size.
	MaxWorkers = 16
)
