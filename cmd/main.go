package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/healthportal/backend/docs"
	"github.com/healthportal/backend/internal/handlers"
	"github.com/healthportal/backend/internal/models"
	"github.com/healthportal/backend/internal/repositories"
	"github.com/healthportal/backend/internal/services"
	"github.com/healthportal/backend/libs/auth/middleware"
	"github.com/healthportal/backend/libs/auth/service"
	"github.com/healthportal/backend/libs/config"
	"github.com/healthportal/backend/libs/database"
	"github.com/healthportal/backend/libs/logger"
	loggerMiddleware "github.com/healthportal/backend/libs/logger/middleware"
	sharedMiddleware "github.com/healthportal/backend/libs/middlewares"
	"github.com/healthportal/backend/migrations"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Health Portal Auth API
// @version 1.0
// @description Registration, login and session API for the health portal

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Health Portal Auth Service", zap.String("environment", cfg.Environment))

	// Open database handle; a single connection is shared by all requests by default
	db, err := database.Open(cfg.DSN(), database.Options{MaxOpenConns: cfg.Database.MaxOpenConns})
	if err != nil {
		logger.Logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	// Outside production an unreachable database is survivable through the fallback store
	if err := database.Ping(context.Background(), db, cfg.Database.ConnectTimeout); err != nil {
		if cfg.IsProduction() {
			logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		logger.Logger.Warn("Database unreachable, registrations will use the development fallback store",
			zap.String("dev_users_file", cfg.DevUsersFile),
			zap.Error(err),
		)
	} else if err := database.RunMigrations(db, migrations.FS, migrations.Table); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize session issuer
	sessionIssuer := service.NewSessionIssuer(cfg.Session.Secret, cfg.Session.Expiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	devUserRepo := repositories.NewDevUserRepository(cfg.DevUsersFile, logger.Logger)

	// Initialize services
	backends := services.NewBackendChain(userRepo, services.FallbackPolicy{Production: cfg.IsProduction()}, devUserRepo)
	hasher := services.NewPasswordHasher(cfg.Password.BcryptCost)
	authService := services.NewAuthService(backends, hasher, logger.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sessionIssuer, handlers.AuthHandlerOptions{
		CookieName: cfg.Session.CookieName,
		Production: cfg.IsProduction(),
		APIKey:     cfg.APIKey,
	}, logger.Logger)
	pageHandler := handlers.NewPageHandler(cfg.WebRoot, logger.Logger)

	// Initialize route guard
	routeGuard := middleware.NewRouteGuard(sessionIssuer, middleware.GuardOptions{
		ExcludedPrefixes: []string{"/api", "/static", "/swagger", "/favicon.ico"},
		PublicPaths:      cfg.Guard.PublicPaths,
		RoleRules:        roleRules(cfg.Guard),
		SignInPath:       cfg.Guard.SignInPath,
		DeniedPath:       cfg.Guard.DeniedPath,
		CookieName:       cfg.Session.CookieName,
	}, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(1 * 1024 * 1024)) // 1MB
	r.Use(routeGuard.Middleware)

	// Swagger documentation
	if !cfg.IsProduction() {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
		))
	}

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
	})

	// Pages
	pageHandler.RegisterRoutes(r)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// roleRules builds the guard role rules from configured path prefixes
func roleRules(cfg config.GuardConfig) []middleware.RoleRule {
	rules := make([]middleware.RoleRule, 0, len(cfg.PrescriberPaths)+len(cfg.AdminPaths))
	for _, prefix := range cfg.PrescriberPaths {
		rules = append(rules, middleware.RoleRule{
			Prefix: prefix,
			Roles:  []string{string(models.RolePrescriber), string(models.RoleAdmin)},
		})
	}
	for _, prefix := range cfg.AdminPaths {
		rules = append(rules, middleware.RoleRule{
			Prefix: prefix,
			Roles:  []string{string(models.RoleAdmin)},
		})
	}
	return rules
}
