package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvClinicOpenHour    = "CLINIC_OPEN_HOUR"
	EnvClinicCloseHour   = "CLINIC_CLOSE_HOUR"
	EnvSlotIntervalMin   = "SLOT_INTERVAL_MIN"
	EnvBookingWindowDays = "BOOKING_WINDOW_DAYS"
	EnvSlotLockTTL       = "SLOT_LOCK_TTL"

	EnvKafkaEnabled = "KAFKA_ENABLED"
)
