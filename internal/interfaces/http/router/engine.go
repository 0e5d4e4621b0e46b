package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gym/backend/internal/domain/identity"
	"github.com/gym/backend/internal/infrastructure/config"
	"github.com/gym/backend/internal/infrastructure/logger"
	"github.com/gym/backend/internal/interfaces/http/handler"
	"github.com/gym/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Auth   *handler.AuthHandler
	Report *handler.ReportHandler
	System *handler.SystemHandler
}

// EngineConfig configures the middleware stack
type EngineConfig struct {
	HTTP          config.HTTPConfig
	Swagger       config.SwaggerConfig
	Telemetry     config.TelemetryConfig
	Authenticator middleware.Authenticator
	Logger        *zap.Logger
}

// NewEngine builds the gin engine with the full middleware stack and routes.
//
// Middleware order: request ID, panic recovery, access log, security headers,
// CORS, body limit, tracing, then JWT and role checks on /api/v1.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(log),
		logger.Recovery(log),
		logger.GinMiddleware(log, "/health"),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanErrorMarker(),
		middleware.Profiling(cfg.Telemetry.ProfilingEnabled),
	)

	engine.GET("/health", h.System.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	jwtConfig := middleware.DefaultJWTConfig(cfg.Authenticator)
	jwtConfig.Logger = log

	r := NewRouter(engine, WithAPIVersion("v1")).
		Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig), middleware.TracingAttributeInjector())

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", h.Auth.Login)
	authRoutes.POST("/logout", h.Auth.Logout)
	authRoutes.GET("/me", h.Auth.Me)

	reportRoutes := NewDomainGroup("reports", "/reports").Use(middleware.RequireReportAccess())
	reportRoutes.GET("/types", h.Report.ListReportTypes)
	reportRoutes.GET("/periods", h.Report.ListPeriods)
	reportRoutes.GET("/products", h.Report.ListProducts)
	reportRoutes.DELETE("/products/cache", middleware.RequireRole(identity.RoleAdmin), h.Report.InvalidateProducts)
	reportRoutes.POST("", h.Report.Generate)
	reportRoutes.GET("/files/:name", h.Report.Download)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo)

	r.Register(authRoutes).
		Register(reportRoutes).
		Register(systemRoutes)
	r.Setup()

	return engine
}
