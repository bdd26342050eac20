package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"roomly/pkg/client"
	"roomly/pkg/logger"
)

var (
	hhmmRegex      = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	mongoURIRegex  = regexp.MustCompile(`^mongodb(\+srv)?://`)
	credentialsURI = regexp.MustCompile(`(://)[^:/@]+:[^@]+@`)
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	StoreDriver string
	PostgresURL string
	RedisURL    string

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	MinBookingDuration time.Duration
	MaxBookingDuration time.Duration
	DefaultOpenAt      string
	DefaultCloseAt     string
	DefaultTimeZone    string
	SlotStep           time.Duration
	SlotLookaheadDays  int

	BookingLockTTL   time.Duration
	ConflictCacheTTL time.Duration

	// NearCacheTTL bounds the per-instance tier, used only with events on.
	NearCacheTTL time.Duration

	// EventsEnabled turns on booking events. Topics live in pkg/kafka/config.
	EventsEnabled bool

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		StoreDriver: getEnvStr(EnvStoreDriver, DefaultStoreDriver),
		PostgresURL: getEnvStr(EnvPostgresURL, DefaultPostgresURL),
		RedisURL:    getEnvStr(EnvRedisURL, DefaultRedisURL),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		MinBookingDuration: getEnvDuration(EnvMinBookingDuration, DefaultMinBookingDuration),
		MaxBookingDuration: getEnvDuration(EnvMaxBookingDuration, DefaultMaxBookingDuration),
		DefaultOpenAt:      getEnvStr(EnvDefaultOpenAt, DefaultOpenAt),
		DefaultCloseAt:     getEnvStr(EnvDefaultCloseAt, DefaultCloseAt),
		DefaultTimeZone:    getEnvStr(EnvDefaultTimeZone, DefaultTimeZone),
		SlotStep:           getEnvDuration(EnvSlotStep, DefaultSlotStep),
		SlotLookaheadDays:  getEnvNum(EnvSlotLookaheadDays, DefaultSlotLookaheadDays),

		BookingLockTTL:   getEnvDuration(EnvBookingLockTTL, DefaultBookingLockTTL),
		ConflictCacheTTL: getEnvDuration(EnvConflictCacheTTL, DefaultConflictCacheTTL),
		NearCacheTTL:     getEnvDuration(EnvNearCacheTTL, DefaultNearCacheTTL),

		EventsEnabled: getEnvBool(EnvEventsEnabled, DefaultEventsEnabled),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetPostgres() {
	cfg.Client.SetPostgres(cfg.Log, cfg.PostgresURL, cfg.MongoConnTimeout)
}

// SetRedis connects only when REDIS_URL is set; callers fall back to
// in-process implementations otherwise.
func (cfg *Config) SetRedis() {
	if cfg.RedisURL == "" {
		cfg.Log.Info("REDIS_URL not set, conflict cache and shared rate limiting disabled")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisURL, cfg.MongoConnTimeout)
}

// SetStore connects the persistence backend selected by STORE_DRIVER.
func (cfg *Config) SetStore() {
	switch cfg.StoreDriver {
	case StorePostgres:
		cfg.SetPostgres()
	default:
		cfg.SetMongo()
	}
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreDriver {
	case StoreMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if len(cfg.MongoURI) < 10 || !mongoURIRegex.MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
	case StorePostgres:
		if cfg.PostgresURL == "" {
			errors = append(errors, "PostgresURL is required when STORE_DRIVER=postgres")
		}
	default:
		errors = append(errors, fmt.Sprintf("StoreDriver must be one of [mongo, postgres], got: %s", cfg.StoreDriver))
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.MinBookingDuration <= 0 {
		errors = append(errors, fmt.Sprintf("MinBookingDuration must be positive, got: %s", cfg.MinBookingDuration))
	}
	if cfg.MaxBookingDuration < cfg.MinBookingDuration {
		errors = append(errors, fmt.Sprintf("MaxBookingDuration (%s) must be >= MinBookingDuration (%s)", cfg.MaxBookingDuration, cfg.MinBookingDuration))
	}
	if !hhmmRegex.MatchString(cfg.DefaultOpenAt) {
		errors = append(errors, fmt.Sprintf("DefaultOpenAt must be in HH:MM format (00:00-23:59), got: %s", cfg.DefaultOpenAt))
	}
	if !hhmmRegex.MatchString(cfg.DefaultCloseAt) {
		errors = append(errors, fmt.Sprintf("DefaultCloseAt must be in HH:MM format (00:00-23:59), got: %s", cfg.DefaultCloseAt))
	}
	if cfg.DefaultCloseAt <= cfg.DefaultOpenAt {
		errors = append(errors, fmt.Sprintf("DefaultCloseAt (%s) must be after DefaultOpenAt (%s)", cfg.DefaultCloseAt, cfg.DefaultOpenAt))
	}
	if _, err := time.LoadLocation(cfg.DefaultTimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("DefaultTimeZone must be a valid IANA time zone, got: %s", cfg.DefaultTimeZone))
	}
	if cfg.SlotStep <= 0 {
		errors = append(errors, fmt.Sprintf("SlotStep must be positive, got: %s", cfg.SlotStep))
	}
	if cfg.SlotLookaheadDays < 1 {
		errors = append(errors, fmt.Sprintf("SlotLookaheadDays must be at least 1, got: %d", cfg.SlotLookaheadDays))
	}
	if cfg.BookingLockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("BookingLockTTL must be positive, got: %s", cfg.BookingLockTTL))
	}
	if cfg.ConflictCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("ConflictCacheTTL cannot be negative, got: %s", cfg.ConflictCacheTTL))
	}
	if cfg.NearCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("NearCacheTTL cannot be negative, got: %s", cfg.NearCacheTTL))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_driver", cfg.StoreDriver,
		"mongo_uri", redactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"postgres_url", redactURI(cfg.PostgresURL),
		"redis_enabled", cfg.RedisURL != "",
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"min_booking_duration", cfg.MinBookingDuration,
		"max_booking_duration", cfg.MaxBookingDuration,
		"default_open_at", cfg.DefaultOpenAt,
		"default_close_at", cfg.DefaultCloseAt,
		"default_time_zone", cfg.DefaultTimeZone,
		"slot_step", cfg.SlotStep,
		"slot_lookahead_days", cfg.SlotLookaheadDays,
		"booking_lock_ttl", cfg.BookingLockTTL,
		"conflict_cache_ttl", cfg.ConflictCacheTTL,
		"near_cache_ttl", cfg.NearCacheTTL,
		"events_enabled", cfg.EventsEnabled,
	)
}

func redactURI(uri string) string {
	return credentialsURI.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
