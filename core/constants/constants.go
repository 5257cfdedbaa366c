package constants

import "time"

// Database defaults
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 30 // minutes
)

// Timeouts
const (
	DefaultTimeout        = 10 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	// GatewayTimeout bounds all outbound calls to the payment, SMS, push and
	// calendar collaborators. A timed-out attempt is a retryable failure.
	GatewayTimeout = 8 * time.Second
)

// Token scopes
const (
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"
)

// Echo context keys
const (
	ContextTokenData = "token_data"
)

// Redis keys
const (
	RedisKeyTokenBlacklist = "token:blacklist:"
)

// User roles, resolved once at authentication time.
const (
	RoleProvider  = "provider"
	RoleRequester = "requester"
)

// OAuth
const (
	OAuthStateTTL = 30 * time.Minute
)

// Reminder scheduling
const (
	DefaultReminderWindow = time.Hour
	ReminderSweepInterval = 5 * time.Minute
	RefreshSweepInterval  = 10 * time.Minute
	// RefreshHorizon: credentials expiring within this window are refreshed
	// proactively so GetValid rarely refreshes on the hot path.
	RefreshHorizon = 15 * time.Minute
	// TokenExpirySkew: a token this close to expiry is treated as expired.
	TokenExpirySkew = 5 * time.Minute
)

// Booking housekeeping
const (
	PendingBookingTTL  = 30 * time.Minute
	BookingExpireEvery = 10 * time.Minute
	LedgerRepairEvery  = time.Hour
)

// SMS retry policy bounds
const (
	SMSMaxRetries   = 3
	SMSInitialDelay = 2 * time.Second
	SMSMaxDelay     = 30 * time.Second
)
