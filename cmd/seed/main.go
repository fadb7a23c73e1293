// Seeds a handful of demo users, events, and services for local development.
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sportmate/server/config"
	"github.com/sportmate/server/entity"
	"github.com/sportmate/server/repository"
	"github.com/sportmate/server/service"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := mongo.NewClient(options.Client().ApplyURI(cfg.MongoDBURI))
	if err != nil {
		log.Fatal().Err(err).Msg("mongo client")
	}
	if err := mongoClient.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongo connect")
	}
	defer mongoClient.Disconnect(ctx)

	userRepository := repository.NewUserRepository(mongoClient, cfg.MongoDBName)
	eventRepository := repository.NewEventRepository(mongoClient, cfg.MongoDBName)
	serviceRepository := repository.NewServiceRepository(mongoClient, cfg.MongoDBName)

	userService := service.NewUserService(userRepository)
	eventService := service.NewEventService(eventRepository, service.NopEmitter{})
	catalogService := service.NewCatalogService(serviceRepository)

	organizer, err := userService.Register(ctx, "Demo Organizer", "organizer@sportmate.dev", "password123")
	if err != nil {
		log.Fatal().Err(err).Msg("seed organizer")
	}
	coach, err := userService.Register(ctx, "Demo Coach", "coach@sportmate.dev", "password123")
	if err != nil {
		log.Fatal().Err(err).Msg("seed coach")
	}

	events := []service.CreateEventInput{
		{
			Title:       "Sunday Morning Football",
			Sport:       "football",
			Location:    "Riverside Pitch 2",
			StartsAt:    time.Now().AddDate(0, 0, 7),
			Status:      entity.EventStatusPublished,
			MaxCapacity: 10,
		},
		{
			Title:            "Padel Doubles Night",
			Sport:            "padel",
			Location:         "Center Court",
			StartsAt:         time.Now().AddDate(0, 0, 3),
			Status:           entity.EventStatusPublished,
			RequiresApproval: true,
			Pricing:          entity.Pricing{Type: entity.PricingPaid, Amount: 12, Currency: "EUR"},
			MaxCapacity:      4,
		},
	}
	for _, input := range events {
		if _, err := eventService.CreateEvent(ctx, organizer.ID, input); err != nil {
			log.Fatal().Err(err).Str("title", input.Title).Msg("seed event")
		}
	}

	_, err = catalogService.CreateService(ctx, coach.ID, service.CreateServiceInput{
		Title:      "1:1 Tennis Coaching",
		Sport:      "tennis",
		PricePerHr: 30,
		Currency:   "EUR",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed service")
	}

	log.Info().Msg("seed complete")
}
