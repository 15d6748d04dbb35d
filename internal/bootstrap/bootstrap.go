package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/arda/classplanner/docs" // Import generated swagger docs
	appControllers "github.com/arda/classplanner/internal/app/controllers"
	appMigrations "github.com/arda/classplanner/internal/app/migrations"
	appRepos "github.com/arda/classplanner/internal/app/repositories"
	appRoutes "github.com/arda/classplanner/internal/app/routes"
	appServices "github.com/arda/classplanner/internal/app/services"
	"github.com/arda/classplanner/internal/config"
	"github.com/arda/classplanner/internal/db"
	appMiddleware "github.com/arda/classplanner/internal/middleware"
	pkgAuth "github.com/arda/classplanner/internal/pkg/auth"
	"github.com/arda/classplanner/internal/pkg/helpers"
	"github.com/arda/classplanner/internal/pkg/logger"
	"github.com/arda/classplanner/internal/pkg/notification"
	"github.com/arda/classplanner/internal/pkg/validation"
	"github.com/arda/classplanner/internal/pkg/websocket"
	"github.com/arda/classplanner/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService        *appServices.AuthService
	SessionService     *appServices.SessionService
	TemplateService    *appServices.TemplateService
	ExamService        *appServices.ExamService
	ConflictService    *appServices.ConflictService
	AuthController     *appControllers.AuthController
	SessionController  *appControllers.SessionController
	TemplateController *appControllers.TemplateController
	ExamController     *appControllers.ExamController
	AuthMiddleware     *appMiddleware.AuthMiddleware
	Repos              *appRepos.Repositories
	JWTService         *pkgAuth.JWTService
	Hub                *websocket.Hub
	WSHandler          *websocket.Handler
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	logger.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	logger.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	logger.Info().Msg("Database connection successfully established.")

	logger.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		logger.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		logger.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	logger.Info().Msg("Database migrations successfully applied.")

	// Create default data (after migrations)
	if err := seed.CreateDefaultData(context.Background(), dbPool); err != nil {
		// Log the error but don't fail the startup
		logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	// The websocket hub doubles as a notifier so session events reach
	// connected clients as well as the log.
	deps.Hub = websocket.NewHub()
	go deps.Hub.Run()
	notifier := notification.NewMultiNotifier(notification.NewLogNotifier(), deps.Hub)

	deps.ConflictService = appServices.NewConflictService(
		deps.Repos.SessionRepository,
		deps.Repos.ExamRepository,
	)
	deps.SessionService = appServices.NewSessionService(
		deps.Repos.SessionRepository,
		deps.ConflictService,
		notifier,
	)
	deps.TemplateService = appServices.NewTemplateService(
		deps.Repos.TemplateRepository,
		deps.Repos.SessionRepository,
		deps.ConflictService,
		notifier,
	)
	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService)
	deps.ExamService = appServices.NewExamService(deps.Repos.ExamRepository)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.SessionController = appControllers.NewSessionController(deps.SessionService)
	deps.TemplateController = appControllers.NewTemplateController(deps.TemplateService)
	deps.ExamController = appControllers.NewExamController(deps.ExamService)
	deps.WSHandler = websocket.NewHandler(deps.Hub)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		logger.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.RegisterCustomValidators(); err != nil {
		logger.Error().Err(err).Msg("Failed to register custom validators")
	}

	router := gin.Default()

	// Setup Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))

	// Setup API routes using the dependencies
	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.SessionController,
		deps.TemplateController,
		deps.ExamController,
		deps.WSHandler,
		deps.AuthMiddleware,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
