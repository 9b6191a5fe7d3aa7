package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ehotel/hotel-backend/internal/config"
	"github.com/ehotel/hotel-backend/internal/database"
	"github.com/ehotel/hotel-backend/internal/handlers"
	"github.com/ehotel/hotel-backend/internal/middleware"
	"github.com/ehotel/hotel-backend/internal/services"
	"github.com/ehotel/hotel-backend/pkg/jwt"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting eHotel booking backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Database
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(migrateCtx, db)
		cancel()
		if err != nil {
			logger.Fatalf("Failed to apply schema: %v", err)
		}
		logger.Info("Database schema applied")
	}

	roomRepository := database.NewRoomRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	complaintRepository := database.NewComplaintRepository(db)
	userRepository := database.NewUserRepository(db)
	auditRepository := database.NewAuditRepository(db)
	loginAttemptRepository := database.NewLoginAttemptRepository(db)

	// Room list cache
	roomCache, redisClient := newRoomCache(cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Services
	logger.Info("Initializing services...")
	hotelLocation, err := time.LoadLocation(cfg.Booking.TimeZone)
	if err != nil {
		logger.Fatalf("Invalid HOTEL_TIME_ZONE: %v", err)
	}

	roomService := services.NewRoomService(roomRepository, roomCache, logger)
	bookingService := services.NewBookingService(bookingRepository, roomService, services.BookingConfig{
		RequireAvailableRoom: cfg.Booking.RequireAvailableRoom,
		CountNights:          services.NewNightCounter(cfg.Booking.NightCounting, hotelLocation),
	}, logger)
	paymentService := services.NewPaymentService(bookingService, bookingRepository, logger)
	complaintService := services.NewComplaintService(complaintRepository, bookingService, logger)
	auditService := services.NewAuditService(auditRepository, cfg.Security.EnableAuditLog, logger)
	rateLimitService := services.NewRateLimitService(loginAttemptRepository, services.RateLimitConfig{
		MaxEmailAttempts: cfg.Security.LoginMaxAttempts,
		EmailWindow:      cfg.Security.LoginAttemptWindow,
		MaxIPAttempts:    cfg.Security.LoginMaxIPAttempts,
		IPWindow:         cfg.Security.LoginIPWindow,
	}, logger)
	reconciliationService := services.NewReconciliationService(roomRepository, bookingRepository, roomCache, cfg.Reconciliation.Apply, logger)

	// Identity provider
	var (
		verifier middleware.TokenVerifier
		issuer   services.TokenIssuer
	)
	switch cfg.Auth.Provider {
	case "firebase":
		client, err := middleware.NewFirebaseAuthClient(context.Background(), cfg.Firebase)
		if err != nil {
			logger.Fatalf("Failed to initialize Firebase: %v", err)
		}
		verifier = middleware.NewFirebaseVerifier(client)
		logger.Info("Identity provider: Firebase ID tokens")
	default:
		jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpiry)
		verifier = middleware.NewJWTVerifier(jwtService)
		issuer = jwtService
		logger.Info("Identity provider: local JWT")
	}

	authService := services.NewAuthService(userRepository, issuer, services.AuthConfig{
		BcryptCost:    cfg.Security.BcryptCost,
		AutoProvision: cfg.Auth.Provider == "firebase",
	}, logger)

	// Reconciliation sweep
	var cronService *services.CronService
	if cfg.Reconciliation.Enabled {
		cronService = services.NewCronService(reconciliationService, cfg.Reconciliation.Schedule, logger)
		if issuer != nil {
			cronService.WithLoginAttemptCleanup(rateLimitService)
		}
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
		logger.WithField("schedule", cfg.Reconciliation.Schedule).Info("Reconciliation sweep scheduled")
	}

	// Router
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(db, redisClient))

	handlers.Routes{
		Auth:          middleware.AuthMiddleware(verifier, authService, logger),
		Accounts:      handlers.NewAuthHandler(authService, auditService, logger).WithLoginThrottle(rateLimitService),
		LocalAccounts: issuer != nil,
		Rooms:         handlers.NewRoomHandler(roomService, auditService, logger),
		Bookings:      handlers.NewBookingHandler(bookingService, paymentService, complaintService, auditService, hotelLocation, logger),
		Complaints:    handlers.NewComplaintHandler(complaintService, auditService, logger),
		Audit:         handlers.NewAuditHandler(auditService, logger),
	}.Register(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if cronService != nil {
		cronService.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// newRoomCache connects to Redis when configured. A failed connection
// disables caching rather than the server.
func newRoomCache(cfg config.RedisConfig, logger *logrus.Logger) (services.RoomCache, *redis.Client) {
	if cfg.URL == "" {
		logger.Info("REDIS_URL not set, room cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logger.WithError(err).Warn("Invalid REDIS_URL, room cache disabled")
		return nil, nil
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable, room cache disabled")
		client.Close()
		return nil, nil
	}

	logger.WithField("ttl", cfg.RoomTTL).Info("Room cache enabled")
	return services.NewRedisRoomCache(client, cfg.RoomTTL), client
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB, cache *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		cacheStatus := "disabled"
		if cache != nil {
			cacheStatus = "healthy"
			if err := cache.Ping(c.Request.Context()).Err(); err != nil {
				cacheStatus = "unhealthy"
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"cache":     cacheStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
