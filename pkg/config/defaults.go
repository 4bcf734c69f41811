package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "carebook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Clinic business hours are 10:00-21:00 with 30-minute slots offered
	// over a rolling 7-day window.
	DefaultClinicOpenHour    = 10
	DefaultClinicCloseHour   = 21
	DefaultSlotIntervalMin   = 30
	DefaultBookingWindowDays = 7

	DefaultSlotLockTTL = 10 * time.Second

	DefaultPaginationLimit = 100
)
