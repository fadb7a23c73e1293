package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sportmate/server/config"
	"github.com/sportmate/server/controller"
	"github.com/sportmate/server/middleware"
	"github.com/sportmate/server/migrations"
	"github.com/sportmate/server/push"
	"github.com/sportmate/server/realtime"
	"github.com/sportmate/server/repository"
	"github.com/sportmate/server/service"
	"github.com/sportmate/server/util"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	setupLogger(cfg)

	mongoClient, err := mongo.NewClient(options.Client().ApplyURI(cfg.MongoDBURI))
	if err != nil {
		log.Fatal().Err(err).Msg("mongo client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = mongoClient.Connect(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect")
	}
	defer mongoClient.Disconnect(ctx)
	err = mongoClient.Ping(ctx, readpref.Primary())
	if err != nil {
		log.Fatal().Err(err).Msg("mongo ping")
	}

	if err := migrations.BackfillCapacityCounts(mongoClient, cfg.MongoDBName); err != nil {
		log.Error().Err(err).Msg("capacity backfill")
	}

	eventRepository := repository.NewEventRepository(mongoClient, cfg.MongoDBName)
	userRepository := repository.NewUserRepository(mongoClient, cfg.MongoDBName)
	serviceRepository := repository.NewServiceRepository(mongoClient, cfg.MongoDBName)
	bookingRepository := repository.NewBookingRepository(mongoClient, cfg.MongoDBName)
	notificationRepository := repository.NewNotificationRepository(mongoClient, cfg.MongoDBName)

	hub := realtime.NewHub()
	expoClient := push.NewExpoClient(cfg.ExpoPushURL)

	notificationService := service.NewNotificationService(notificationRepository, userRepository, hub, expoClient)
	eventService := service.NewEventService(eventRepository, notificationService)
	userService := service.NewUserService(userRepository)
	catalogService := service.NewCatalogService(serviceRepository)
	bookingService := service.NewBookingService(bookingRepository, serviceRepository, notificationService)
	dashboardService := service.NewDashboardService(eventService, bookingService, notificationService)

	eventController := &controller.EventController{EventService: eventService}
	userController := &controller.UserController{
		UserService: userService,
		TokenSecret: []byte(cfg.AccessTokenSecret),
		TokenTTL:    cfg.AccessTokenTTL,
	}
	bookingController := &controller.BookingController{
		CatalogService: catalogService,
		BookingService: bookingService,
	}
	notificationController := &controller.NotificationController{
		NotificationService: notificationService,
		Hub:                 hub,
	}
	dashboardController := &controller.DashboardController{DashboardService: dashboardService}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.POST("/auth/register", userController.Register)
	r.POST("/auth/login", userController.Login)

	auth := r.Group("/", middleware.Auth([]byte(cfg.AccessTokenSecret)))
	{
		auth.GET("/me", userController.Me)
		auth.PATCH("/me", userController.UpdateMe)

		auth.GET("/events", eventController.List)
		auth.POST("/events", eventController.Create)
		auth.GET("/events/my-join-requests", eventController.MyJoinRequests)
		auth.GET("/events/my-events-requests", eventController.MyEventsRequests)
		auth.GET("/events/:id", eventController.Get)
		auth.PATCH("/events/:id", eventController.Update)
		auth.DELETE("/events/:id", eventController.Delete)
		auth.POST("/events/:id/join", eventController.Join)
		auth.POST("/events/:id/leave", eventController.Leave)
		auth.POST("/events/:id/waitlist", eventController.JoinWaitlist)
		auth.DELETE("/events/:id/waitlist", eventController.LeaveWaitlist)
		auth.POST("/events/:id/approve-request/:requestId", eventController.ApproveRequest)
		auth.POST("/events/:id/reject-request/:requestId", eventController.RejectRequest)

		auth.GET("/services", bookingController.ListServices)
		auth.POST("/services", bookingController.CreateService)
		auth.GET("/services/:id", bookingController.GetService)
		auth.POST("/services/:id/book", bookingController.Book)
		auth.GET("/bookings", bookingController.ListBookings)
		auth.POST("/bookings/:id/confirm", bookingController.Confirm)
		auth.POST("/bookings/:id/decline", bookingController.Decline)
		auth.POST("/bookings/:id/cancel", bookingController.Cancel)

		auth.GET("/notifications", notificationController.List)
		auth.GET("/notifications/stream", notificationController.Stream)
		auth.POST("/notifications/:id/read", notificationController.MarkRead)
		auth.POST("/notifications/read-all", notificationController.MarkAllRead)

		auth.GET("/dashboard", dashboardController.Get)
	}

	log.Info().Str("port", cfg.Port).Msg("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}

func setupLogger(cfg *config.Config) {
	var writers []io.Writer

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		writers = append(writers, os.Stderr)
	}

	if cfg.TelegramBotToken != "" && cfg.TelegramLogChatID != 0 {
		bot, err := gotgbot.NewBot(cfg.TelegramBotToken, nil)
		if err != nil {
			log.Error().Err(err).Msg("alerts bot")
		} else {
			writers = append(writers, util.AlertsWriter{Bot: bot, ChatID: cfg.TelegramLogChatID})
		}
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}
