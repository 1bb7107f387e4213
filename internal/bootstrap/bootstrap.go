package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/studentrecords/internal/app/controllers"
	appMigrations "github.com/yigit/studentrecords/internal/app/migrations"
	appRepos "github.com/yigit/studentrecords/internal/app/repositories"
	appRoutes "github.com/yigit/studentrecords/internal/app/routes"
	appServices "github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/config"
	"github.com/yigit/studentrecords/internal/db"
	appMiddleware "github.com/yigit/studentrecords/internal/middleware"
	"github.com/yigit/studentrecords/internal/pkg/filestorage"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
	"github.com/yigit/studentrecords/internal/pkg/logger"
	"github.com/yigit/studentrecords/internal/pkg/validation"
	"github.com/yigit/studentrecords/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	StudentService    appServices.StudentService
	StudentController *appControllers.StudentController
	HealthController  *appControllers.HealthController
	Repos             *appRepos.Repositories
	ImageStorage      *filestorage.LocalStorage
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to the configured store and prepares its schema:
// indexes for MongoDB, migrations for PostgreSQL.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")

	timeout := helpers.ParseDuration(cfg.Database.ConnectTimeout, 10*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		database, err := db.NewPostgresDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}

		migrationsDir := cfg.Database.MigrationsDir
		if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
			database.Close()
			return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
		}

		lgr.Info().Str("dir", migrationsDir).Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(database).MigrateFromDirectory(ctx, migrationsDir); err != nil {
			database.Close()
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")

		return appRepos.NewPostgresRepositories(database), nil

	case config.DriverMongo:
		database, err := db.NewMongoDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}

		repos, err := appRepos.NewMongoRepositories(ctx, database, cfg)
		if err != nil {
			database.Close()
			return nil, err
		}
		return repos, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}

// BuildDependencies initializes storage, services and controllers.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Repos: repos}

	var err error
	deps.ImageStorage, err = filestorage.NewLocalStorage(cfg.Storage.ImagePath, cfg.Storage.PublicPrefix, cfg.MaxImageSizeBytes())
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize image storage")
		return nil, fmt.Errorf("failed to initialize image storage: %w", err)
	}

	if _, err := seed.EnsureDefaultPicture(cfg.Storage.ImagePath, cfg.Storage.DefaultPicture, lgr); err != nil {
		// The placeholder is cosmetic; startup goes on without it
		lgr.Error().Err(err).Msg("Failed to create default picture, proceeding anyway...")
	}

	deps.StudentService = appServices.NewStudentService(
		repos.StudentRepository,
		deps.ImageStorage,
		validation.NewStudentValidator(cfg.Validation.StrictFormats),
		lgr,
	)

	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.HealthController = appControllers.NewHealthController(repos)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		lgr.Error().Err(err).Msg("Invalid trusted proxies, forwarded headers will be ignored")
		_ = router.SetTrustedProxies(nil)
	}
	router.MaxMultipartMemory = cfg.MaxImageSizeBytes()
	router.Use(appMiddleware.RequestLogger(lgr), gin.Recovery(), cors.New(corsConfig(cfg.CORS.AllowedOrigins)))

	appRoutes.SetupRouter(router, deps.StudentController, deps.HealthController, appRoutes.Options{
		ImageDir:     cfg.Storage.ImagePath,
		ImagePrefix:  cfg.Storage.PublicPrefix,
		UpdateLimit:  cfg.RateLimit.UpdateLimit,
		UpdatePeriod: helpers.ParseDuration(cfg.RateLimit.UpdatePeriod, 15*time.Minute),
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range origins {
		if o == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}

	corsCfg.AllowOrigins = origins
	return corsCfg
}
