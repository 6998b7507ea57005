package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/restapi/backend/internal/domain/identity"
	"github.com/restapi/backend/internal/domain/logrequest"
	"github.com/restapi/backend/internal/infrastructure/auth"
	"github.com/restapi/backend/internal/infrastructure/config"
	"github.com/restapi/backend/internal/infrastructure/logger"
	"github.com/restapi/backend/internal/infrastructure/telemetry"
	"github.com/restapi/backend/internal/interfaces/http/handler"
	"github.com/restapi/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies holds everything the API engine is built from
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	JWT         *auth.JWTService
	Blacklist   auth.TokenBlacklist
	LogRequests logrequest.Repository
	Metrics     *telemetry.HTTPMetrics

	System     *handler.SystemHandler
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	UserGroups *handler.UserGroupHandler
}

// New builds the gin engine with the full middleware chain and every API route.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger

	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	cors := middleware.CORSFromConfig(cfg.HTTP)
	cors.MaxAge = 12 * time.Hour

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanAttributes(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.HTTPMetrics(deps.Metrics),
		middleware.ProfilingLabels(cfg.Telemetry.Profiling.Enabled),
		middleware.UnitOfWork(deps.DB, log),
		middleware.RequestLog(cfg.RequestLog, deps.LogRequests, log),
	)

	engine.GET("/", deps.System.Index)
	engine.GET("/health", deps.System.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	jwtConfig := middleware.DefaultJWTConfig(deps.JWT)
	jwtConfig.TokenBlacklist = deps.Blacklist
	jwtConfig.Logger = log

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	admin := middleware.RequireRole(identity.RoleAdmin)
	root := middleware.RequireRole(identity.RoleRoot)

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/get_token", deps.Auth.GetToken)
	authRoutes.POST("/refresh", deps.Auth.RefreshToken)
	authRoutes.POST("/logout", deps.Auth.Logout)

	profileRoutes := NewDomainGroup("profile", "/profile")
	profileRoutes.GET("", deps.Auth.Profile)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", admin, deps.System.GetSystemInfo)

	userRoutes := NewDomainGroup("user", "/user")
	userRoutes.GET("", admin, deps.Users.List)
	userRoutes.GET("/:id", admin, deps.Users.Get)
	userRoutes.POST("", root, deps.Users.Create)
	userRoutes.PUT("/:id", root, deps.Users.Update)
	userRoutes.PATCH("/:id", root, deps.Users.Patch)
	userRoutes.DELETE("/:id", root, deps.Users.Delete)

	groupRoutes := NewDomainGroup("user_group", "/user_group")
	groupRoutes.GET("", admin, deps.UserGroups.List)
	groupRoutes.GET("/:id", admin, deps.UserGroups.Get)
	groupRoutes.POST("", root, deps.UserGroups.Create)
	groupRoutes.PUT("/:id", root, deps.UserGroups.Update)
	groupRoutes.PATCH("/:id", root, deps.UserGroups.Patch)
	groupRoutes.DELETE("/:id", root, deps.UserGroups.Delete)
	groupRoutes.POST("/:id/user/:user", root, deps.UserGroups.AttachUser)
	groupRoutes.DELETE("/:id/user/:user", root, deps.UserGroups.DetachUser)

	r.Register(authRoutes).
		Register(profileRoutes).
		Register(systemRoutes).
		Register(userRoutes).
		Register(groupRoutes).
		Setup()

	return engine
}
