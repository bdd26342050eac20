package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvStoreDriver = "STORE_DRIVER"
	EnvPostgresURL = "POSTGRES_URL"
	EnvRedisURL    = "REDIS_URL"

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

	EnvMinBookingDuration = "BOOKING_MIN_DURATION"
	EnvMaxBookingDuration = "BOOKING_MAX_DURATION"
	EnvDefaultOpenAt      = "DEFAULT_OPEN_AT"
	EnvDefaultCloseAt     = "DEFAULT_CLOSE_AT"
	EnvDefaultTimeZone    = "DEFAULT_TIME_ZONE"
	EnvSlotStep           = "SLOT_STEP"
	EnvSlotLookaheadDays  = "SLOT_LOOKAHEAD_DAYS"

	EnvBookingLockTTL   = "BOOKING_LOCK_TTL"
	EnvConflictCacheTTL = "CONFLICT_CACHE_TTL"
	EnvNearCacheTTL     = "CONFLICT_CACHE_NEAR_TTL"

	EnvEventsEnabled = "EVENTS_ENABLED"
)
