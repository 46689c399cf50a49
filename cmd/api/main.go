package main

import (
	bookinghandler "busline/internal/bookings/handler"
	bookingrepository "busline/internal/bookings/repository"
	bookingservice "busline/internal/bookings/service"
	bookingvalidator "busline/internal/bookings/validator"
	bushandler "busline/internal/buses/handler"
	busrepository "busline/internal/buses/repository"
	busservice "busline/internal/buses/service"
	busvalidator "busline/internal/buses/validator"
	userhandler "busline/internal/users/handler"
	userrepository "busline/internal/users/repository"
	userservice "busline/internal/users/service"
	uservalidator "busline/internal/users/validator"
	"busline/pkg/app"
	"busline/pkg/config"
	"busline/pkg/contracts"
	"busline/pkg/kafka"
	"busline/pkg/middleware"
	"busline/pkg/password"
	"busline/pkg/token"
)

const ServiceName = "busline-api"

func main() {
	cfg := config.Load(ServiceName)

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	producer := initProducer(cfg)
	if producer != nil {
		defer producer.Close()
	}

	handlers := initHandlers(cfg, producer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, producer *kafka.Producer) []contracts.Handler {
	tokens := token.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	hasher := password.NewHasher(cfg.BcryptCost)
	authn := middleware.Authenticate(tokens, cfg.Log)

	userRepo := userrepository.NewMongoUserRepository(cfg)
	userService := userservice.NewUserService(
		userRepo,
		uservalidator.NewUserValidator(cfg.Log, cfg.MinPasswordLength),
		hasher,
		tokens,
		cfg,
	)

	busRepo := busrepository.NewMongoBusRepository(cfg)
	busService := busservice.NewBusService(
		busRepo,
		busvalidator.NewBusValidator(cfg.Log),
		cfg,
	)

	// The producer stays a nil EventPublisher when Kafka is not configured;
	// the booking service treats that as events disabled.
	var events bookingservice.EventPublisher
	if producer != nil {
		events = producer
	}

	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		busRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		events,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		userhandler.NewUserHandler(userService, authn, cfg.Log),
		bushandler.NewBusHandler(busService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, authn, cfg.Log),
	}
}

func initProducer(cfg *config.Config) *kafka.Producer {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaBookingTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.KafkaBookingTopic)
	return producer
}
