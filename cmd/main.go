package main

import (
	"rental-service/internal/handler"
	"rental-service/internal/mailer"
	"rental-service/internal/middleware"
	"rental-service/internal/otp"
	"rental-service/internal/sms"
	"rental-service/pkg/config"
	"rental-service/pkg/database"
	"rental-service/pkg/jwtutil"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting rental service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Wire external collaborators and the OTP engine
	smsClient := sms.NewClient(&cfg.SMS)
	notifier := mailer.New(&cfg.SMTP)
	otpService := otp.NewService(otp.NewMemoryStore(), smsClient, cfg)
	handler.Configure(cfg, otpService, smsClient, notifier)
	log.Info("OTP engine and collaborators initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover()) // Add recovery middleware
	e.Use(echomiddleware.CORS())    // Add CORS middleware
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Mobile verification (pre-registration) and registration
	e.POST("/send-otp2", handler.SendVerificationOTP)
	e.POST("/verify-otp", handler.VerifyOTP)
	e.POST("/register", handler.Register)
	e.POST("/login", handler.Login)
	e.GET("/all-users", handler.AllUsers)

	// Password reset
	e.POST("/send-otp", handler.SendResetOTP)
	e.POST("/forgot-password", handler.ResetPassword)

	// Public property browsing
	e.GET("/properties", handler.AllProperties)

	// Authenticated routes
	e.POST("/logout", handler.Logout, middleware.AuthMiddleware)
	e.GET("/profile", handler.GetProfile, middleware.AuthMiddleware)
	e.GET("/my-properties", handler.MyProperties, middleware.AuthMiddleware)
	e.POST("/add-property", handler.AddProperty, middleware.AuthMiddleware)
	e.PUT("/update-property/:propertyId", handler.UpdateProperty, middleware.AuthMiddleware)
	e.DELETE("/delete-property/:propertyId", handler.DeleteProperty, middleware.AuthMiddleware)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
