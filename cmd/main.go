package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"salon-api/internal/handler"
	"salon-api/internal/middleware"
	"salon-api/internal/service"
	"salon-api/pkg/cache"
	"salon-api/pkg/config"
	"salon-api/pkg/database"
	"salon-api/pkg/logger"
	"salon-api/prometheus"
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
	log.Info("Starting salon service...", cfg.LogConfig()...)

	// Initialize database
	if err := database.Initialize(database.DBConfig{
		DSN:             cfg.DB.GetDSN(),
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		LogLevel:        cfg.DB.LogLevel,
	}); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize optional Redis cache
	if err := cache.Initialize(cfg, log); err != nil {
		// The store stays authoritative; run without the cache
		log.Warn("Redis cache unavailable, continuing without it", zap.Error(err))
	}

	// Wire services into the handlers
	resolver := service.NewFallbackResolver(cfg, log)
	notifier := service.NewNotifier(service.NewExpoSender(cfg), cfg, log)
	handler.Init(cfg, resolver, notifier)
	log.Info("Fallback resolver initialized", zap.Strings("siblings", resolver.Siblings()))

	// Publish service identity for the metrics endpoint
	prometheus.SetServiceInfo("1.0.0", cfg.Salon.Current)

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

	// Authentication routes - these don't belong under /api since they're for getting access to the API
	auth := e.Group("/auth")
	auth.POST("/token", handler.IssueToken)
	auth.POST("/signup", handler.Signup)
	auth.POST("/login", handler.Login)
	auth.POST("/logout", handler.Logout)
	auth.GET("/check", handler.CheckLogin)

	// API routes
	api := e.Group("/api")

	// App metadata and device registration - reachable without a session
	api.GET("/app/version", handler.GetAppVersion)
	devices := api.Group("/devices")
	devices.POST("", handler.RegisterDevice)
	devices.DELETE("/:user_id", handler.UnregisterDevice)

	// Salon registry
	salons := api.Group("/salons")
	salons.GET("", handler.GetAllSalons)
	salons.GET("/active", handler.GetActiveSalon)
	salons.PUT("/:id/activate", middleware.AdminMiddleware(handler.SetActiveSalon))

	// Exhibitor categories - signup needs at least one to exist
	categories := api.Group("/categories")
	categories.GET("", handler.GetCategories)
	categories.POST("", middleware.AdminMiddleware(handler.CreateCategory))

	// Own-profile maintenance
	profile := api.Group("/profile")
	profile.PATCH("", middleware.AuthMiddleware(handler.UpdateProfile))
	profile.PATCH("/password", middleware.AuthMiddleware(handler.UpdatePassword))
	profile.DELETE("", middleware.AuthMiddleware(handler.DeleteAccount))

	// Content owned by this salon's exhibitors
	videos := api.Group("/videos")
	videos.GET("", handler.GetVideos)
	videos.GET("/:id", handler.GetVideo)
	videos.POST("", middleware.AuthMiddleware(handler.CreateVideo))
	videos.DELETE("/:id", middleware.AuthMiddleware(handler.DeleteVideo))

	deals := api.Group("/deals")
	deals.GET("", handler.GetDeals)
	deals.GET("/exhibitor/:exhibitor_id", handler.GetDealsByExhibitor)
	deals.POST("", middleware.AuthMiddleware(handler.CreateDeal))
	deals.DELETE("/:id", middleware.AuthMiddleware(handler.DeleteDeal))

	// Local likes - reads are public so sibling salons can fall back here
	likes := api.Group("/likes")
	likes.GET("/video/:video_id", handler.GetLikesByVideo)
	likes.GET("/exhibitor/:exhibitor_id", handler.GetLikesByExhibitor)
	likes.GET("", middleware.AdminMiddleware(handler.GetAllLikes))
	likes.POST("", middleware.AuthMiddleware(handler.CreateLike))
	likes.POST("/video/:video_id/toggle", middleware.AuthMiddleware(handler.ToggleLike))
	likes.DELETE("/video/:video_id", middleware.AuthMiddleware(handler.DeleteLike))

	// Local comments - same visibility rules as likes
	comments := api.Group("/comments")
	comments.GET("/video/:video_id", handler.GetCommentsByVideo)
	comments.GET("/exhibitor/:exhibitor_id", handler.GetCommentsByExhibitor)
	comments.POST("", middleware.AuthMiddleware(handler.CreateComment))
	comments.PATCH("/:id", middleware.AuthMiddleware(handler.UpdateComment))
	comments.DELETE("/:id", middleware.AuthMiddleware(handler.DeleteComment))

	// Unified records - central aggregation surface
	unified := api.Group("/unified")
	unified.POST("/likes/toggle", handler.ToggleUnifiedLike)
	unified.GET("/likes/video/:video_id", handler.GetUnifiedLikesByVideo)
	unified.GET("/likes/exhibitor/:exhibitor_id", handler.GetUnifiedLikesByExhibitor)
	unified.GET("/likes/salon/:salon", handler.GetUnifiedLikesBySalon)
	unified.GET("/likes/stats", handler.GetUnifiedLikeStats)
	unified.DELETE("/likes/:id", middleware.AdminMiddleware(handler.DeleteUnifiedLike))
	unified.POST("/comments", handler.CreateUnifiedComment)
	unified.GET("/comments/video/:video_id", handler.GetUnifiedCommentsByVideo)
	unified.GET("/comments/exhibitor/:exhibitor_id", handler.GetUnifiedCommentsByExhibitor)
	unified.GET("/comments/salon/:salon", handler.GetUnifiedCommentsBySalon)
	unified.GET("/comments/stats", handler.GetUnifiedCommentStats)
	unified.DELETE("/comments/:id", middleware.AdminMiddleware(handler.DeleteUnifiedComment))

	// Admin broadcast
	api.POST("/notifications/broadcast", middleware.AdminMiddleware(handler.Broadcast))

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port), zap.String("salon", cfg.Salon.Current))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
