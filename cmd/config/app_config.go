package config

import (
	"context"
	"foodia-handoff/internal/api/handlers"
	"foodia-handoff/internal/api/routes"
	"foodia-handoff/internal/middleware"
	"foodia-handoff/internal/utils"
	"foodia-handoff/internal/utils/mailing"
	"foodia-handoff/internal/utils/storage"
	"foodia-handoff/pkg/channel"
	"foodia-handoff/pkg/directions"
	"foodia-handoff/pkg/food"
	"foodia-handoff/pkg/handoff"
	"foodia-handoff/pkg/jwt"
	"foodia-handoff/pkg/notification"
	"foodia-handoff/pkg/route"
	"foodia-handoff/pkg/share"
	"foodia-handoff/pkg/tracking"
	"foodia-handoff/pkg/transaction"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

// App is the HTTP server plus the background machinery it owns.
type App struct {
	Fiber              *fiber.App
	Channel            channel.LocationChannel
	Sessions           *tracking.SessionManager
	TransactionService transaction.TransactionService
}

// Shutdown stops every tracking session, then the location channel.
func (a *App) Shutdown() {
	a.Sessions.Shutdown()
	if err := a.Channel.Close(); err != nil {
		log.Warnf("error closing location channel: %v", err)
	}
}

// NewApp wires the application. Tracking sessions live until ctx ends or
// Shutdown is called.
func NewApp(ctx context.Context, db *gorm.DB) (*App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        utils.RateLimitMax(),
		Expiration: 1 * time.Second,
	}))

	trackingConfig, err := utils.LoadTrackingConfig()
	if err != nil {
		return nil, err
	}

	// utils
	s3 := storage.NewAwsS3()
	locationChannel, err := NewLocationChannel()
	if err != nil {
		return nil, err
	}
	sessions := tracking.NewSessionManager(ctx)
	monitor := tracking.NewMonitor(trackingConfig, locationChannel)

	var directionsClient directions.Client
	if cfg := utils.DirectionsConfig(); utils.ValidateStruct(cfg) == nil {
		directionsClient = directions.NewClient(cfg)
	} else {
		log.Warn("directions provider not configured, using straight-line distances")
	}

	var notifier notification.Notifier = notification.NewLogNotifier()
	if mailConfig := mailing.LoadMailConfig(); mailConfig.Enabled() {
		notifier = notification.NewMultiNotifier(notifier, notification.NewMailNotifier(mailing.NewMailer(mailConfig)))
	}

	// Repository
	transactionRepository := transaction.NewTransactionRepository(db)
	routeRepository := route.NewRouteRepository(db)
	foodRepository := food.NewFoodRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	routeService := route.NewRouteService(
		routeRepository,
		transactionRepository,
		route.NewRecorder(routeRepository, locationChannel),
		route.NewArchiver(s3, "routes"),
		route.DefaultReplayConfig(),
	)
	transactionService := transaction.NewTransactionService(
		transactionRepository,
		locationChannel,
		sessions,
		routeService,
		notifier,
		trackingConfig,
	)
	trackingService := transaction.NewTrackingService(
		transactionRepository,
		monitor,
		sessions,
		directionsClient,
		trackingConfig,
	)
	handoffService := handoff.NewHandoffService(transactionRepository, locationChannel, notifier)
	shareConfig := share.DefaultConfig(utils.GetConfig("APP_URL"))
	shareConfig.TTL = utils.ShareTTL()
	shareService := share.NewShareService(shareConfig, transactionRepository, foodRepository, monitor)

	// Handler
	transactionHandler := handlers.NewTransactionHandler(transactionService, validator)
	trackingHandler := handlers.NewTrackingHandler(trackingService)
	handoffHandler := handlers.NewHandoffHandler(handoffService, validator)
	shareHandler := handlers.NewShareHandler(shareService)
	routeHandler := handlers.NewRouteHandler(routeService)

	// routes
	routesConfig := routes.Config{
		App:                app,
		TransactionHandler: transactionHandler,
		TrackingHandler:    trackingHandler,
		HandoffHandler:     handoffHandler,
		ShareHandler:       shareHandler,
		RouteHandler:       routeHandler,
		Middleware:         middlewares,
		JWTService:         jwtService,
	}
	routesConfig.Setup()

	return &App{
		Fiber:              app,
		Channel:            locationChannel,
		Sessions:           sessions,
		TransactionService: transactionService,
	}, nil
}
