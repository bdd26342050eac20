package main

import (
	"roomly/internal/bookings/cache"
	"roomly/internal/bookings/events"
	"roomly/internal/bookings/handler"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/service"
	"roomly/internal/bookings/validator"
	"roomly/internal/conflicts"
	roomsrepository "roomly/internal/rooms/repository"
	"roomly/pkg/app"
	"roomly/pkg/config"
	"roomly/pkg/contracts"
	"roomly/pkg/kafka"
	kafka_config "roomly/pkg/kafka/config"
	kafkamiddleware "roomly/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetStore()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service", "store", cfg.StoreDriver)

	deps, workers := initDependencies(cfg)
	defer func() {
		if err := deps.Publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close booking event publisher", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(cfg.Client,
		handler.NewBookingHandler(service.NewBookingService(deps, cfg), cfg.Log),
		handler.NewConflictHandler(service.NewConflictService(deps, cfg), cfg.Log),
	)
	for _, w := range workers {
		serverApp.AddWorker(w)
	}
	serverApp.Run()
}

func initDependencies(cfg *config.Config) (service.Dependencies, []contracts.Worker) {
	opts, err := service.NewCheckerOptions(cfg)
	if err != nil {
		cfg.Log.Fatal("Invalid conflict checker configuration", "error", err)
	}

	bookingRepo, lockRepo := repository.New(cfg)
	conflictCache := cache.NewRedis(cfg.Client.Redis, cfg.ConflictCacheTTL, cfg.Log)

	deps := service.Dependencies{
		Repo:      bookingRepo,
		LockRepo:  lockRepo,
		Rooms:     roomsrepository.New(cfg),
		Checker:   conflicts.NewChecker(repository.NewConflictSource(bookingRepo), opts),
		Validator: validator.NewBookingValidator(cfg.Log, opts.Bounds),
		Cache:     conflictCache,
		Publisher: events.NewNoopPublisher(),
	}

	if !cfg.EventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return deps, nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	conflictCache = cache.NewNear(conflictCache, cfg.NearCacheTTL, cache.DefaultNearEntriesPerRoom)
	deps.Cache = conflictCache

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingEventsTopic, kafkaCfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking event producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	deps.Publisher = events.NewKafkaPublisher(producer, cfg.Log)

	consumer, err := kafka.NewConsumer(kafkaCfg, kafkaCfg.BookingEventsTopic, kafkaCfg.InvalidationGroupID(),
		kafkaCfg.BookingEventsDLQTopic, events.InvalidationHandler(conflictCache, cfg.Log), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create conflict cache invalidator", "error", err)
	}
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))

	cfg.Log.Info("Booking events enabled",
		"topic", kafkaCfg.BookingEventsTopic,
		"group_id", kafkaCfg.InvalidationGroupID(),
	)
	return deps, []contracts.Worker{events.NewInvalidator(consumer)}
}
