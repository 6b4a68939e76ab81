package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	customerapp "github.com/restaurant/backend/internal/application/customer"
	dashboardapp "github.com/restaurant/backend/internal/application/dashboard"
	menuapp "github.com/restaurant/backend/internal/application/menu"
	"github.com/restaurant/backend/internal/application/notification"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
	printingapp "github.com/restaurant/backend/internal/application/printing"
	realtimeapp "github.com/restaurant/backend/internal/application/realtime"
	restaurantapp "github.com/restaurant/backend/internal/application/restaurant"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/auth"
	"github.com/restaurant/backend/internal/infrastructure/cache"
	"github.com/restaurant/backend/internal/infrastructure/config"
	"github.com/restaurant/backend/internal/infrastructure/event"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/infrastructure/messaging"
	"github.com/restaurant/backend/internal/infrastructure/persistence"
	"github.com/restaurant/backend/internal/infrastructure/printing"
	"github.com/restaurant/backend/internal/infrastructure/realtime"
	"github.com/restaurant/backend/internal/infrastructure/storage"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"github.com/restaurant/backend/internal/infrastructure/whatsapp"
	"github.com/restaurant/backend/internal/interfaces/http/handler"
	"github.com/restaurant/backend/internal/interfaces/http/middleware"
	"github.com/restaurant/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/restaurant/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Restaurant Backend API
//	@version		1.0
//	@description	Restaurant ordering and management backend: public menu and checkout, order board, customers, dashboard and WhatsApp notifications
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/restaurant/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const (
	version                = "1.0.0"
	localFilesPath         = "/files"
	metricsCollectInterval = 30 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// Telemetry: traces, metrics and logs to the collector, profiles to Pyroscope
	providers, err := telemetry.Setup(rootCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		SpanProfiles:      cfg.Telemetry.ProfilingEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = providers.BridgeLogger(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.StartProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeURL,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Warn("Failed to start profiler", zap.Error(err))
	} else {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()
	}

	log.Info("Starting Restaurant Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", cfg.App.Location().String()),
	)
	loc := cfg.App.Location()

	gormLog := logger.NewGormLogger(log, cfg.Log.Level, cfg.Telemetry.DBSlowQueryThresh)

	// Initialize database connection with custom logger
	db, err := persistence.Open(rootCtx, &cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.InstrumentDatabase(db.DB, providers.Meter("restaurant.db"), telemetry.DatabaseConfig{
		Tracing:       cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:    cfg.Telemetry.DBLogFullSQL,
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Warn("Failed to instrument database", zap.Error(err))
	}

	// Redis backs the token blacklist, dashboard cache, checkout idempotency
	// and the cross-instance change feed. Without it every store is in-memory.
	var (
		redisClient    *redis.Client
		tokenBlacklist auth.TokenBlacklist     = auth.NewInMemoryTokenBlacklist()
		idempotency    shared.IdempotencyStore = cache.NewInMemoryIdempotencyStore()
		statsCache     dashboardapp.StatsCache = cache.NewInMemoryStatsCache()
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		tokenBlacklist = auth.NewRedisTokenBlacklist(redisClient)
		idempotency = cache.NewIdempotencyStore(redisClient, log)
		statsCache = cache.NewStatsCache(redisClient)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Object storage for menu images and kitchen tickets
	var objectStorage interface {
		menuapp.ObjectStorage
		printingapp.ObjectStorage
	}
	switch {
	case cfg.Storage.Enabled:
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("S3 object storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	case cfg.Storage.LocalPath != "":
		localStorage, err := storage.NewLocalObjectStorage(cfg.Storage.LocalPath, localFilesPath, log)
		if err != nil {
			log.Fatal("Failed to initialize local storage", zap.Error(err))
		}
		objectStorage = localStorage
		log.Info("Local file storage enabled", zap.String("path", cfg.Storage.LocalPath))
	default:
		log.Warn("Object storage disabled, image upload and ticket printing are unavailable")
	}

	// Initialize repositories
	restaurantRepo := persistence.NewGormRestaurantRepository(db.DB)
	staffRepo := persistence.NewGormStaffUserRepository(db.DB)
	whatsappRepo := persistence.NewGormWhatsAppSettingsRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	onboardingStore := persistence.NewGormOnboardingStore(db.DB)

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	staffService := restaurantapp.NewStaffService(staffRepo, jwtService, tokenBlacklist, log)
	onboardingService := restaurantapp.NewOnboardingService(onboardingStore, staffRepo, jwtService, log)
	restaurantService := restaurantapp.NewRestaurantService(restaurantRepo, whatsappRepo, loc, log)
	customerService := customerapp.NewCustomerService(customerRepo, loc, log)
	dashboardService := dashboardapp.NewDashboardService(orderRepo, statsCache, loc, log)

	var menuStorage menuapp.ObjectStorage
	var ticketStorage printingapp.ObjectStorage
	if objectStorage != nil {
		menuStorage = objectStorage
		ticketStorage = objectStorage
	}
	menuService := menuapp.NewMenuService(categoryRepo, itemRepo, restaurantRepo, menuStorage, log)

	orderService := orderingapp.NewOrderService(orderRepo, itemRepo, customerService, orderingapp.Options{
		DefaultDeliveryFee: cfg.Ordering.DefaultDeliveryFee,
		TaxRate:            cfg.Ordering.TaxRate,
		Location:           loc,
		IdempotencyTTL:     cfg.Ordering.IdempotencyTTL,
	}, log)
	orderService.SetIdempotencyStore(idempotency)
	orderService.SetContactProvider(restaurantService)

	// Kitchen tickets render through Chrome when printing is enabled
	var renderer printingapp.PDFRenderer
	if cfg.Printing.Enabled {
		chrome := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.RenderTimeout,
			RemoteURL:      cfg.Printing.ChromeURL,
			NoSandbox:      true,
			Logger:         log,
		})
		defer func() {
			if err := chrome.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		renderer = chrome
		log.Info("Kitchen ticket printing enabled", zap.String("chrome_url", cfg.Printing.ChromeURL))
	}
	ticketService := printingapp.NewTicketService(orderRepo, restaurantRepo, renderer, ticketStorage, printingapp.TicketConfig{
		PaperWidthMM:  cfg.Printing.PaperWidthMM,
		StoragePrefix: cfg.Printing.StoragePrefix,
		Location:      loc,
	}, log)

	// Realtime hub, fanned out across instances through Redis when available
	hub := realtime.NewHub(
		realtime.WithMaxClients(cfg.Realtime.MaxClients),
		realtime.WithHubLogger(log),
	)
	var broadcaster realtimeapp.Broadcaster = hub
	if redisClient != nil {
		relay := realtime.NewRedisRelay(redisClient, hub, cfg.Realtime.RedisChannel, log)
		go func() {
			if err := relay.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Realtime relay stopped", zap.Error(err))
			}
		}()
		defer func() {
			if err := relay.Close(); err != nil {
				log.Error("Error closing realtime relay", zap.Error(err))
			}
		}()
		broadcaster = relay
	}

	// Customer notifications go to RabbitMQ for the notifier worker, or are
	// delivered inline when the broker is disabled
	var (
		notificationPublisher notification.Publisher
		rabbitClient          *messaging.Client
	)
	if cfg.RabbitMQ.Enabled {
		rabbitClient, err = messaging.Dial(cfg.RabbitMQ.URL, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer func() {
			if err := rabbitClient.Close(); err != nil {
				log.Error("Error closing RabbitMQ", zap.Error(err))
			}
		}()
		if err := rabbitClient.DeclareTopology(messaging.TopologyFromConfig(&cfg.RabbitMQ)); err != nil {
			log.Fatal("Failed to declare RabbitMQ topology", zap.Error(err))
		}
		notificationPublisher = messaging.NewPublisher(rabbitClient, cfg.RabbitMQ.Exchange, log)
		log.Info("Notification queue enabled", zap.String("exchange", cfg.RabbitMQ.Exchange))
	} else {
		dispatcher := notification.NewDispatcher(restaurantService, whatsapp.NewWebhookSender(nil, log), log)
		notificationPublisher = notification.NewInlinePublisher(dispatcher)
	}

	// Business metrics
	var metricsHandler *orderingapp.MetricsHandler
	if providers.Enabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:                providers.Meter("restaurant.business"),
			Logger:               log,
			ActiveOrdersProvider: telemetry.NewGormActiveOrdersProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(rootCtx, telemetry.NewGormRestaurantProvider(db.DB), metricsCollectInterval)
			defer businessMetrics.Stop()
			metricsHandler = orderingapp.NewMetricsHandler(businessMetrics)
		}
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	changeFeedHandler := realtimeapp.NewChangeFeedHandler(broadcaster, log)
	eventBus.Subscribe(changeFeedHandler)

	cacheInvalidationHandler := dashboardapp.NewCacheInvalidationHandler(dashboardService, log)
	eventBus.Subscribe(cacheInvalidationHandler)

	orderNotificationHandler := notification.NewOrderNotificationHandler(notificationPublisher, loc, log)
	eventBus.SubscribeAsync(orderNotificationHandler)

	if metricsHandler != nil {
		eventBus.Subscribe(metricsHandler)
	}

	log.Info("Event handlers registered",
		zap.Strings("change_feed_events", changeFeedHandler.EventTypes()),
		zap.Strings("cache_invalidation_events", cacheInvalidationHandler.EventTypes()),
		zap.Strings("order_notification_events", orderNotificationHandler.EventTypes()),
		zap.Bool("business_metrics", metricsHandler != nil),
	)

	// Start event bus
	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	orderService.SetEventPublisher(eventBus)
	menuService.SetEventPublisher(eventBus)
	onboardingService.SetEventPublisher(eventBus)

	// Health checks
	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if rabbitClient != nil {
		checks["rabbitmq"] = func(context.Context) error { return rabbitClient.Ping() }
	}

	// Initialize HTTP handlers
	handlers := router.Handlers{
		System:     handler.NewSystemHandler(version, checks, hub),
		Auth:       handler.NewAuthHandler(staffService),
		Onboarding: handler.NewOnboardingHandler(onboardingService),
		Public:     handler.NewPublicHandler(menuService, orderService),
		Realtime: handler.NewRealtimeHandler(hub, orderService,
			handler.WithRealtimeLogger(log),
			handler.WithHeartbeat(cfg.Realtime.HeartbeatInterval),
		),
		Order:      handler.NewOrderHandler(orderService),
		Ticket:     handler.NewTicketHandler(ticketService),
		Menu:       handler.NewMenuHandler(menuService),
		Customer:   handler.NewCustomerHandler(customerService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		Restaurant: handler.NewRestaurantHandler(restaurantService),
		Staff:      handler.NewStaffHandler(staffService),
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Tracing, HTTP metrics - when telemetry is enabled
	// 4. RequestLogger - Request-scoped logger and access log
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName)...)
		httpMetrics, err := middleware.HTTPMetrics(providers.Meter("http.server"))
		if err != nil {
			log.Warn("Failed to create HTTP metrics", zap.Error(err))
		} else {
			engine.Use(httpMetrics)
		}
	}
	engine.Use(logger.RequestLogger(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go rateLimiter.Run(rootCtx)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	guardCfg := middleware.PermissionConfig{Logger: log}
	guards := router.Guards{
		Manager: middleware.RequireRoleWithConfig(guardCfg, middleware.ManagerRoles...),
		Permission: func(permission string) gin.HandlerFunc {
			return middleware.RequireAnyPermissionWithConfig(guardCfg, permission)
		},
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		go authLimiter.Run(rootCtx)
		guards.AuthLimit = middleware.AuthRateLimit(authLimiter)
	}

	// Health check endpoints (outside API versioning)
	engine.GET("/health", handlers.System.Health)
	engine.GET("/health/ready", handlers.System.Ready)

	if cfg.Storage.LocalPath != "" && !cfg.Storage.Enabled {
		engine.Static(localFilesPath, cfg.Storage.LocalPath)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = tokenBlacklist
	jwtConfig.Logger = log
	jwtConfig.SkipPaths = append(jwtConfig.SkipPaths, prefixed(r.BasePath(), router.PublicPaths())...)
	jwtConfig.SkipPathPrefixes = append(jwtConfig.SkipPathPrefixes, prefixed(r.BasePath(), router.PublicPathPrefixes())...)
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		docsGuard, err := middleware.DocsGuard(middleware.DocsAccess{
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtMiddleware)
		if err != nil {
			log.Fatal("Invalid swagger access configuration", zap.Error(err))
		}
		engine.GET("/swagger/*any", docsGuard, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.Use(jwtMiddleware, middleware.StaffContext())
	router.RegisterAPI(r, handlers, guards)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}
	// Event streams never go idle; close them so Shutdown can drain
	srv.RegisterOnShutdown(hub.Close)

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func prefixed(base string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = base + p
	}
	return out
}
