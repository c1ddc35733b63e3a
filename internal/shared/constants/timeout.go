package constants

import "time"

const (
	DefaultProbeTimeout  = 10 * time.Second
	DefaultCheckInterval = 300 * time.Second
	DefaultMaxRetries    = 3
	DefaultHistoryDays   = 30

	DNSTimeout      = 5 * time.Second
	NotifierTimeout = 10 * time.Second
	ShutdownGrace   = 10 * time.Second

	// trailing window of the per-channel rate limit
	RateLimitWindow = time.Hour

	Day                  = 24 * time.Hour
	JournalPruneInterval = time.Hour

	MaxBodyPreview = 64 * 1024
	MaxRedirects   = 10
	UserAgent      = "ApiMonitor/1.0"
)
