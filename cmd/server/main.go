package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic_manager/internal/config"
	"clinic_manager/internal/handler"
	"clinic_manager/internal/middleware"
	"clinic_manager/internal/ratelimit"
	"clinic_manager/internal/repository"
	"clinic_manager/internal/sequence"
	"clinic_manager/internal/service"
	"clinic_manager/internal/sms"
	"clinic_manager/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := config.NewLogger(cfg.LogLevel)

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(&cfg.DB, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(dbPool); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Rate Limit Store ---
	var limitStore ratelimit.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		limitStore = ratelimit.NewRedisStore(redisClient)
		log.Info("Rate limiting backed by redis")
	} else {
		limitStore = ratelimit.NewMemoryStore()
		log.Info("Rate limiting backed by in-process store")
	}
	limiter := ratelimit.NewLimiter(limitStore, cfg.RateWindow, map[ratelimit.Scope]int{
		ratelimit.ScopeLogin:    cfg.LoginLimit,
		ratelimit.ScopeRegister: cfg.RegisterLimit,
		ratelimit.ScopeSMS:      cfg.SMSLimit,
	})

	// --- SMS Dispatch ---
	var smsSender sms.Sender
	if cfg.TwilioAccountSID != "" {
		smsSender = sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		log.Info("SMS dispatch via Twilio")
	} else {
		smsSender = sms.NewLogSender(log)
		log.Info("SMS dispatch disabled, codes go to the log")
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	clinicRepo := repository.NewClinicRepository(dbPool)
	serviceRepo := repository.NewServiceRepository(dbPool)
	patientRepo := repository.NewPatientRepository(dbPool)
	visitRepo := repository.NewVisitRepository(dbPool)
	billingRepo := repository.NewBillingRepository(dbPool)
	sequenceRepo := repository.NewSequenceRepository(dbPool)

	idGen := sequence.NewGenerator(sequenceRepo)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, clinicRepo, jwtUtil, smsSender, cfg, log)
	staffService := service.NewStaffService(userRepo, smsSender, log)
	clinicService := service.NewClinicService(clinicRepo, serviceRepo)
	patientService := service.NewPatientService(patientRepo, idGen)
	visitService := service.NewVisitService(visitRepo, patientRepo, idGen)
	billingService := service.NewBillingService(billingRepo, patientRepo, visitRepo, serviceRepo, idGen)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService, limiter, jwtUtil.RefreshTTL(), log)
	staffHandler := handler.NewStaffHandler(staffService, log)
	clinicHandler := handler.NewClinicHandler(clinicService, log)
	patientHandler := handler.NewPatientHandler(patientService, log)
	visitHandler := handler.NewVisitHandler(visitService, log)
	billingHandler := handler.NewBillingHandler(billingService, log)

	// --- Setup Gin Router ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default()
	router.HandleMethodNotAllowed = true
	handler.RegisterFallbackRoutes(router)

	// Simple CORS middleware (allow all for development)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Token authentication runs on every request; routes decide
	// whether an identity is required.
	router.Use(middleware.Authenticate(jwtUtil, userRepo))

	// --- Register Routes ---
	apiGroup := router.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup)
	staffHandler.RegisterStaffRoutes(apiGroup)
	clinicHandler.RegisterClinicRoutes(apiGroup)
	patientHandler.RegisterPatientRoutes(apiGroup)
	visitHandler.RegisterVisitRoutes(apiGroup)
	billingHandler.RegisterBillingRoutes(apiGroup)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Infof("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exiting")
}
