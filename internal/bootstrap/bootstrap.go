package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/facilityhub/internal/app/auth"
	appControllers "github.com/yigit/facilityhub/internal/app/controllers"
	appMigrations "github.com/yigit/facilityhub/internal/app/migrations"
	appRepos "github.com/yigit/facilityhub/internal/app/repositories"
	appRoutes "github.com/yigit/facilityhub/internal/app/routes"
	appServices "github.com/yigit/facilityhub/internal/app/services"
	"github.com/yigit/facilityhub/internal/app/settings"
	"github.com/yigit/facilityhub/internal/config"
	"github.com/yigit/facilityhub/internal/db"
	"github.com/yigit/facilityhub/internal/jobs"
	appMiddleware "github.com/yigit/facilityhub/internal/middleware"
	pkgAuth "github.com/yigit/facilityhub/internal/pkg/auth"
	"github.com/yigit/facilityhub/internal/pkg/cache"
	"github.com/yigit/facilityhub/internal/pkg/filestorage"
	"github.com/yigit/facilityhub/internal/pkg/logger"
	"github.com/yigit/facilityhub/internal/pkg/metrics"
	"github.com/yigit/facilityhub/internal/pkg/validation"
	"github.com/yigit/facilityhub/internal/seed"
)

// DefaultConfigPath is read relative to the working directory.
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	DB       *db.PostgresDB
	Repos    *appRepos.Repositories
	Cache    cache.Cache
	Images   *filestorage.LocalStorage
	Metrics  *metrics.Metrics
	Resolver *settings.Resolver

	AuthzService *appAuth.AuthorizationService
	JWTService   *pkgAuth.JWTService

	AuthService         *appServices.AuthService
	OrganizationService *appServices.OrganizationService
	FacilityService     *appServices.FacilityService
	DepartmentService   *appServices.DepartmentService
	QuartersTypeService *appServices.QuartersTypeService
	QuartersService     *appServices.QuartersService
	FacultyService      *appServices.FacultyService
	SettingsService     *appServices.SettingsService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	PurgeJob       *jobs.PurgeJob

	Logger zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the connection pool.
func ConnectDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies the embedded migrations that have not run yet.
func RunMigrations(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(database.Pool).Up(ctx)
	if err != nil {
		lgr.Error().Err(err).Int("applied", applied).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return nil
}

// SeedDefaultData creates the configured default records.
func SeedDefaultData(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	return seed.CreateDefaultData(ctx, seed.FromRepositories(repos), seed.Options{
		OrganizationName: cfg.Seed.OrganizationName,
		FacilityName:     cfg.Seed.FacilityName,
		AdminUsername:    cfg.Seed.AdminUsername,
		AdminEmail:       cfg.Seed.AdminEmail,
		AdminPassword:    cfg.Seed.AdminPassword,
	}, lgr)
}

// SetupDatabase establishes the database connection, runs migrations and seeds
// default data when enabled.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := ConnectDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := RunMigrations(ctx, database, lgr); err != nil {
		database.Close()
		return nil, err
	}

	if cfg.Seed.Enabled {
		if err := SeedDefaultData(ctx, cfg, appRepos.NewRepositories(database), lgr); err != nil {
			// Startup continues with whatever was created.
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return database, nil
}

// SetupCache returns a Redis cache when enabled and reachable, otherwise a no-op cache.
func SetupCache(cfg *config.Config, lgr zerolog.Logger) cache.Cache {
	if !cfg.Redis.Enabled {
		return cache.Noop{}
	}
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, settings will be resolved without cache")
		return cache.Noop{}
	}
	lgr.Info().Msg("Redis settings cache enabled")
	return redisCache
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{DB: database, Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)
	deps.Cache = SetupCache(cfg, lgr)
	deps.Metrics = metrics.New()

	var err error
	deps.Images, err = filestorage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.BaseURL,
		int64(cfg.Storage.MaxImageSizeMB)<<20)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Resolver = settings.NewResolver(
		deps.Repos.SettingsRepository,
		deps.Repos.RelationLoader,
		settings.WithCache(deps.Cache, config.Duration(cfg.Redis.SettingsTTL, 10*time.Minute)),
		settings.WithCacheCounters(deps.Metrics.SettingsCacheHits, deps.Metrics.SettingsCacheMisses),
	)

	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.OrganizationRepository)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: config.Duration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	repos := deps.Repos
	deps.AuthService = appServices.NewAuthService(
		repos.UserRepository,
		repos.OrganizationRepository,
		repos.FacilityRepository,
		repos.FacultyRepository,
		deps.AuthzService,
		deps.JWTService,
	)
	deps.OrganizationService = appServices.NewOrganizationService(repos.OrganizationRepository)
	deps.FacilityService = appServices.NewFacilityService(
		repos.FacilityRepository,
		repos.OrganizationRepository,
		repos.DepartmentRepository,
		repos.QuartersRepository,
		repos.FacultyRepository,
		deps.AuthzService,
		deps.Resolver,
	)
	deps.DepartmentService = appServices.NewDepartmentService(
		repos.DepartmentRepository,
		repos.FacilityRepository,
		repos.OrganizationRepository,
		deps.AuthzService,
		deps.Resolver,
	)
	deps.QuartersTypeService = appServices.NewQuartersTypeService(
		repos.QuartersTypeRepository,
		repos.OrganizationRepository,
		deps.AuthzService,
		deps.Resolver,
	)
	deps.QuartersService = appServices.NewQuartersService(
		repos.QuartersRepository,
		repos.FacilityRepository,
		repos.QuartersTypeRepository,
		repos.OrganizationRepository,
		deps.AuthzService,
		deps.Resolver,
	)
	deps.FacultyService = appServices.NewFacultyService(
		repos.FacultyRepository,
		repos.UserRepository,
		repos.FacilityRepository,
		repos.DepartmentRepository,
		repos.QuartersRepository,
		repos.OrganizationRepository,
		deps.AuthzService,
	)
	deps.SettingsService = appServices.NewSettingsService(deps.Resolver, repos.FacultyRepository, deps.AuthzService)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.UserRepository)

	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService),
		Organization: appControllers.NewOrganizationController(deps.OrganizationService),
		Facility:     appControllers.NewFacilityController(deps.FacilityService, deps.DepartmentService, deps.Images),
		Department:   appControllers.NewDepartmentController(deps.DepartmentService),
		QuartersType: appControllers.NewQuartersTypeController(deps.QuartersTypeService),
		Quarters:     appControllers.NewQuartersController(deps.QuartersService),
		Faculty:      appControllers.NewFacultyController(deps.FacultyService),
		Settings:     appControllers.NewSettingsController(deps.SettingsService),
		Image:        appControllers.NewImageController(deps.FacilityService, deps.Images),
	}

	deps.PurgeJob = jobs.NewPurgeJob(
		repos.PurgeRepository,
		config.Duration(cfg.Jobs.PurgeRetention, 30*24*time.Hour),
		deps.Metrics.PurgedRowsTotal,
		deps.Resolver,
	)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.RegisterBindingRules(); err != nil {
		lgr.Warn().Err(err).Msg("Failed to register validation rules")
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(), gin.Recovery(), deps.Metrics.Middleware())

	appRoutes.SetupSwagger(router)
	appRoutes.SetupHealth(router, deps.DB)
	router.Static(cfg.Storage.BaseURL, cfg.Storage.Path)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, metrics.Handler())
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}

// SetupJobs schedules background jobs. It returns nil when jobs are disabled.
func SetupJobs(cfg *config.Config, deps *Dependencies) (*jobs.Manager, error) {
	if !cfg.Jobs.Enabled {
		return nil, nil
	}
	manager := jobs.NewManager(10 * time.Minute)
	if err := manager.Schedule(cfg.Jobs.PurgeSchedule, deps.PurgeJob); err != nil {
		return nil, err
	}
	return manager, nil
}

// Close releases the cache and the database pool.
func (d *Dependencies) Close() {
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close cache")
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
