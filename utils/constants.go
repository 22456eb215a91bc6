package utils

import (
	"time"
)

// Token time constants
const (
	// AccessTokenTTL is the time-to-live for dashboard access tokens (1 hour)
	AccessTokenTTL = time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Scan pipeline constants
const (
	// DefaultScanCadence is the cadence applied to monitors created without one
	DefaultScanCadence = 6 * time.Hour

	// MinScanCadence is the smallest cadence a monitor may be configured with
	MinScanCadence = 15 * time.Minute

	// ScanLockTTL bounds how long a monitor scan lock may be held before it expires
	ScanLockTTL = 30 * time.Minute

	// MaxPushBatch is the largest number of leads forwarded to the outreach API per call
	MaxPushBatch = 100
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
