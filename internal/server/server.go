// Package server
//
// @title KaziLink API
// @version 1.0
// @description Job marketplace API connecting employers and freelancers
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kazilink-dev/kazilink/internal/auth"
	"github.com/kazilink-dev/kazilink/internal/config"
	"github.com/kazilink-dev/kazilink/internal/guard"
	"github.com/kazilink-dev/kazilink/internal/models"
	"github.com/kazilink-dev/kazilink/internal/seed"
)

// Server represents the HTTP server
type Server struct {
	router      *gin.Engine
	db          *gorm.DB
	config      *config.Config
	logger      zerolog.Logger
	validator   *validator.Validate
	asynqClient *asynq.Client
	revoker     *auth.Revoker
	version     string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	// Initialize database with production settings
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// Initialize JWT authentication. The secret comes from the environment
	// when set, otherwise from the persisted singleton (auto-generated on
	// first signup).
	if cfg.Auth.JWTSecret != "" {
		auth.InitializeJWT(cfg.Auth.JWTSecret)
		zlog.Debug().Msg("Loaded JWT secret from environment")
	} else {
		var appConfig models.AppConfig
		if err := db.First(&appConfig).Error; err == nil {
			auth.InitializeJWT(appConfig.JWTSecret)
			zlog.Debug().Msg("Loaded JWT secret from database")
		} else {
			// No config yet - JWT will be initialized during the first signup
			zlog.Info().Msg("No config found - JWT will be initialized on first signup")
		}
	}

	// Initialize validator
	validate := validator.New()

	// Register custom validators
	validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})

	// Initialize Asynq client for enqueueing tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	// Token revocation denylist (logout support). Revocation checks fail
	// closed, so a down Redis blocks authenticated requests.
	revoker := auth.NewRevoker(redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	}))
	if err := revoker.Ping(context.Background()); err != nil {
		zlog.Warn().Err(err).Str("addr", cfg.Redis.Address).Msg("Redis unreachable")
	}

	// Seed demo marketplace data on first run
	if cfg.Marketplace.SeedDemoData {
		if err := seed.Run(db, zlog); err != nil {
			zlog.Warn().Err(err).Msg("Failed to seed demo data")
		}
	}

	// Create server
	server := &Server{
		db:          db,
		config:      cfg,
		logger:      zlog,
		validator:   validate,
		asynqClient: asynqClient,
		revoker:     revoker,
		version:     version,
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8    // Reduced for SQLite efficiency
		maxIdleConns    = 4    // Reduced proportionally
		connMaxLifetime = 300  // 5 minutes
		busyTimeout     = 5000 // 5 seconds
	)

	// Open database connection
	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool settings
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Apply SQLite pragmas directly (connection string pragmas may not work with all drivers)
	pragmas := []string{
		"PRAGMA journal_mode=WAL", // Enable WAL mode for better concurrency
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		"PRAGMA foreign_keys=1",
		"PRAGMA temp_store=2",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.config.Server.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public auth endpoints (no auth required)
	s.router.POST("/api/auth/signup", s.signup)
	s.router.POST("/api/auth/login", s.login)

	// Home resolution: login view when signed out, the role's own home otherwise
	s.router.GET("/home", s.resolveHome)

	// Authenticated API routes (JWT required)
	api := s.router.Group("/api")
	api.Use(JWTAuthMiddleware(s.db, s.revoker, s.logger))
	{
		// Auth endpoints
		api.GET("/auth/me", s.getCurrentUser)
		api.POST("/auth/logout", s.logout)

		// Messaging (both roles)
		api.GET("/conversations", s.listConversations)
		api.POST("/conversations", s.startConversation)
		api.GET("/conversations/:id/messages", s.listMessages)
		api.POST("/conversations/:id/messages", s.sendMessage)

		// Notifications (both roles)
		api.GET("/notifications", s.listNotifications)
		api.POST("/notifications/:id/read", s.markNotificationRead)

		// Employer-only routes
		employer := api.Group("/employer")
		employer.Use(RequireRole(models.RoleEmployer, s.logger))
		{
			employer.GET("/home", s.employerDashboard)
			employer.GET("/profile", s.getProfile)
			employer.PATCH("/profile", s.updateProfile)
			employer.POST("/jobs", s.createJob)
			employer.GET("/jobs", s.listEmployerJobs)
			employer.GET("/jobs/:id", s.getEmployerJob)
			employer.POST("/jobs/:id/close", s.closeJob)
			employer.PATCH("/applications/:id", s.updateApplicationStatus)
			employer.GET("/invoices", s.listInvoices)
			employer.GET("/invoices/:id", s.getInvoice)
		}

		// Freelancer-only routes
		freelancer := api.Group("/freelancer")
		freelancer.Use(RequireRole(models.RoleFreelancer, s.logger))
		{
			freelancer.GET("/home", s.freelancerDashboard)
			freelancer.GET("/profile", s.getProfile)
			freelancer.PATCH("/profile", s.updateProfile)
			freelancer.GET("/jobs", s.browseJobs)
			freelancer.GET("/jobs/:id", s.getJob)
			freelancer.POST("/jobs/:id/apply", s.applyToJob)
			freelancer.GET("/applications", s.listMyApplications)
			freelancer.POST("/jobs/:id/save", s.saveJob)
			freelancer.DELETE("/jobs/:id/save", s.unsaveJob)
			freelancer.GET("/saved-jobs", s.listSavedJobs)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "kazilink-api",
	})
}

// resolveHome implements the generic /home entry point. The session is
// whatever the bearer token says; an absent or invalid token means
// unauthenticated, never an error.
func (s *Server) resolveHome(c *gin.Context) {
	sess := guard.Session{State: guard.StateUnauthenticated}

	if token, err := extractBearerToken(c.GetHeader("Authorization")); err == nil {
		if claims, err := auth.ValidateToken(token); err == nil {
			revoked, _ := s.revoker.IsRevoked(c.Request.Context(), claims.ID)
			if !revoked {
				sess = guard.Session{State: guard.StateAuthenticated, Role: claims.Role}
			}
		}
	}

	decision := guard.ResolveHome(sess)
	c.Header("Location", decision.To)
	c.JSON(http.StatusSeeOther, gin.H{"redirect": decision.To})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Create HTTP server with production timeouts
	srv := &http.Server{
		Addr:              s.config.Server.Addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second, // 5 minutes
	}

	// Start server in goroutine
	go func() {
		s.logger.Info().Str("addr", s.config.Server.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Close Asynq client
	if err := s.asynqClient.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing Asynq client")
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	return nil
}
