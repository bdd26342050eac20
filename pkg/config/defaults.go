package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roomly"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultStoreDriver = StoreMongo
	DefaultPostgresURL = ""
	DefaultRedisURL    = ""

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMinBookingDuration = 15 * time.Minute
	DefaultMaxBookingDuration = 8 * time.Hour
	DefaultOpenAt             = "08:00"
	DefaultCloseAt            = "18:00"
	DefaultTimeZone           = "UTC"
	DefaultSlotStep           = 30 * time.Minute
	DefaultSlotLookaheadDays  = 7

	DefaultBookingLockTTL   = 10 * time.Second
	DefaultConflictCacheTTL = 30 * time.Second
	DefaultNearCacheTTL     = 5 * time.Second

	DefaultEventsEnabled = false

	DefaultPaginationLimit = 100
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)
