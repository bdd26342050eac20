package main

import (
	"roomly/internal/rooms/handler"
	"roomly/internal/rooms/repository"
	"roomly/internal/rooms/service"
	"roomly/internal/rooms/validator"
	"roomly/pkg/app"
	"roomly/pkg/config"
)

const ServiceName = "rooms"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetStore()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Rooms service", "store", cfg.StoreDriver)
	roomService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(cfg.Client, handler.NewRoomHandler(roomService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.RoomService {
	roomValidator := validator.NewRoomValidator(cfg.Log)
	roomRepo := repository.New(cfg)
	roomService := service.NewRoomService(
		roomRepo,
		roomValidator,
		cfg,
	)

	cfg.Log.Info("Room service initialized", "store", cfg.StoreDriver)
	return roomService
}
