package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/HubertYGuan/FEINT/internal/core/port"
	"github.com/HubertYGuan/FEINT/internal/infra/config"
	"github.com/HubertYGuan/FEINT/internal/transport/http/handlers"
	"github.com/HubertYGuan/FEINT/internal/transport/http/middleware"
	"github.com/HubertYGuan/FEINT/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Registration  *usecase.RegistrationService
	Tokens        *usecase.TokenService
	OTP           *usecase.OTPService
	Todos         *usecase.TodoService
	Notifications *usecase.NotificationService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config        *config.AppConfig
	Logger        *zap.Logger
	RateLimiter   *middleware.RateLimiter
	Whitelist     *middleware.IPWhitelist
	WhitelistRepo port.WhitelistRepository
	Metrics       *middleware.HTTPMetrics
	Services      ServiceSet
	Database      DatabaseChecker
	Cache         CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	if deps.Whitelist != nil && deps.Config.Whitelist.Enabled {
		r.Use(deps.Whitelist.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Tokens)

	checks := map[string]handlers.ReadinessChecker{}
	if deps.Database != nil {
		checks["database"] = deps.Database.Ping
	}
	if deps.Cache != nil {
		checks["redis"] = deps.Cache.HealthCheck
	}
	healthHandler := handlers.NewHealthHandler(checks)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		cookieSecure := deps.Config.App.Env == "production"

		authHandler := handlers.NewAuthHandler(deps.Services.Registration, deps.Services.Auth, cookieSecure)
		otpHandler := handlers.NewOTPHandler(deps.Services.OTP)
		todoHandler := handlers.NewTodoHandler(deps.Services.Todos)
		eventsHandler := handlers.NewEventsHandler(deps.Services.Notifications)
		whitelistHandler := handlers.NewWhitelistHandler(deps.WhitelistRepo)

		authGroup := api.Group("/auth")

		registerMiddlewares := buildRateLimitMiddlewares(deps, "auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts)
		registerHandlers := append([]gin.HandlerFunc{}, registerMiddlewares...)
		registerHandlers = append(registerHandlers, authHandler.Register)
		authGroup.POST("/register", registerHandlers...)

		loginMiddlewares := buildRateLimitMiddlewares(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts)
		loginGroup := authGroup.Group("/login")
		if len(loginMiddlewares) > 0 {
			loginGroup.Use(loginMiddlewares...)
		}
		loginGroup.POST("", authHandler.Login)
		loginGroup.POST("/otp", authHandler.LoginOTP)
		loginGroup.GET("/token", authHandler.LoginToken)

		authGroup.GET("/token/verify", authMiddleware, authHandler.VerifyToken)

		otpGroup := authGroup.Group("/otp")
		otpGroup.Use(authMiddleware)
		otpGroup.PUT("/enable", otpHandler.Enable)
		otpGroup.PUT("/disable", otpHandler.Disable)
		otpGroup.GET("/provision", otpHandler.Provision)

		api.GET("/whoami", authMiddleware, authHandler.Whoami)

		todoGroup := api.Group("/todos")
		todoGroup.Use(authMiddleware)
		todoGroup.GET("", todoHandler.List)
		todoGroup.POST("", todoHandler.Create)
		todoGroup.PUT("/:id", todoHandler.Update)
		todoGroup.DELETE("/:id", todoHandler.Delete)
		todoGroup.DELETE("", todoHandler.DeleteByDescription)

		eventGroup := api.Group("/events")
		eventGroup.Use(authMiddleware)
		eventGroup.GET("", eventsHandler.List)
		eventGroup.DELETE("/:id", eventsHandler.Delete)

		api.POST("/notify", authMiddleware, eventsHandler.Notify)

		api.GET("/whitelist", authMiddleware, whitelistHandler.List)
	}

	return r
}

func buildRateLimitMiddlewares(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
