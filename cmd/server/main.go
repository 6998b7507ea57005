package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/restapi/backend/internal/application/resource"
	"github.com/restapi/backend/internal/application/security"
	"github.com/restapi/backend/internal/infrastructure/auth"
	"github.com/restapi/backend/internal/infrastructure/config"
	"github.com/restapi/backend/internal/infrastructure/logger"
	"github.com/restapi/backend/internal/infrastructure/persistence"
	"github.com/restapi/backend/internal/infrastructure/scheduler"
	"github.com/restapi/backend/internal/infrastructure/telemetry"
	"github.com/restapi/backend/internal/interfaces/form"
	"github.com/restapi/backend/internal/interfaces/http/handler"
	"github.com/restapi/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	_ "github.com/restapi/backend/docs"
)

//	@title			REST API Backend
//	@version		1.0
//	@description	User and user group management API with JWT authentication
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support

//	@license.name	MIT

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.ForEnvironment(cfg.App.Env, cfg.Log.Level, cfg.Log.Output))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = providers.BridgeLogger(log, cfg.Telemetry.ServiceName)

	log.Info("Starting REST API backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:         !cfg.IsProduction(),
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	var metrics *telemetry.HTTPMetrics
	if providers.Meter != nil {
		if metrics, err = telemetry.NewHTTPMetrics(otel.GetMeterProvider()); err != nil {
			log.Fatal("Failed to create HTTP metrics", zap.Error(err))
		}
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatal("Failed to get underlying sql.DB", zap.Error(err))
		}
		if _, err := telemetry.RegisterDBPoolMetrics(otel.GetMeterProvider(), sqlDB); err != nil {
			log.Fatal("Failed to register connection pool metrics", zap.Error(err))
		}
	}

	blacklist := newTokenBlacklist(ctx, cfg.Redis, log)

	userRepo := persistence.NewGormUserRepository(db.DB)
	groupRepo := persistence.NewGormUserGroupRepository(db.DB)
	logRequestRepo := persistence.NewGormLogRequestRepository(db.DB)

	validate := resource.NewValidator()
	groups := resource.NewUserGroupResource(groupRepo, validate, log)
	users := resource.NewUserResource(userRepo, form.NewUserGroupTransformer(groups), validate, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := security.NewAuthService(users, jwtService, blacklist, log)

	engine := router.New(router.Dependencies{
		Config:      cfg,
		Logger:      log,
		DB:          db.DB,
		JWT:         jwtService,
		Blacklist:   blacklist,
		LogRequests: logRequestRepo,
		Metrics:     metrics,
		System:      handler.NewSystemHandler(db, telemetry.Version),
		Auth:        handler.NewAuthHandler(authService, users),
		Users:       handler.NewUserHandler(users),
		UserGroups:  handler.NewUserGroupHandler(groups, users),
	})

	var logCleanup *scheduler.LogCleanup
	if cfg.RequestLog.Enabled && cfg.RequestLog.Retention > 0 {
		cleanupCfg := scheduler.DefaultLogCleanupConfig()
		cleanupCfg.Retention = cfg.RequestLog.Retention
		cleanupCfg.Hour = cfg.RequestLog.CleanupHour
		if logCleanup, err = scheduler.NewLogCleanup(cleanupCfg, logRequestRepo, log); err != nil {
			log.Fatal("Failed to create request log cleanup", zap.Error(err))
		}
		if err := logCleanup.Start(ctx); err != nil {
			log.Fatal("Failed to start request log cleanup", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Failed to start server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = shutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if logCleanup != nil {
		if err := logCleanup.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping request log cleanup", zap.Error(err))
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Server exited gracefully")
}

// newTokenBlacklist connects to Redis when enabled and falls back to process memory otherwise
func newTokenBlacklist(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) auth.TokenBlacklist {
	if !cfg.Enabled {
		log.Info("Redis disabled, revoked tokens are kept in memory")
		return auth.NewInMemoryTokenBlacklist()
	}
	blacklist, err := auth.NewRedisTokenBlacklist(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Addr()))
	}
	log.Info("Redis token blacklist connected", zap.String("addr", cfg.Addr()))
	return blacklist
}
