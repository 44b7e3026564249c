package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/HubertYGuan/FEINT/internal/core/port"
	calendarinfra "github.com/HubertYGuan/FEINT/internal/infra/calendar"
	"github.com/HubertYGuan/FEINT/internal/infra/config"
	"github.com/HubertYGuan/FEINT/internal/infra/database"
	kafkainfra "github.com/HubertYGuan/FEINT/internal/infra/kafka"
	"github.com/HubertYGuan/FEINT/internal/infra/logger"
	redisinfra "github.com/HubertYGuan/FEINT/internal/infra/redis"
	"github.com/HubertYGuan/FEINT/internal/infra/security"
	"github.com/HubertYGuan/FEINT/internal/infra/telemetry"
	postgresrepo "github.com/HubertYGuan/FEINT/internal/repository/postgres"
	redisrepo "github.com/HubertYGuan/FEINT/internal/repository/redis"
	"github.com/HubertYGuan/FEINT/internal/transport/http/middleware"
	"github.com/HubertYGuan/FEINT/internal/transport/http/routes"
	"github.com/HubertYGuan/FEINT/internal/usecase"
)

// Application ties the infrastructure together and owns its lifecycle.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracing  *telemetry.TracerProvider
}

// New builds the application graph from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var tracing *telemetry.TracerProvider
	if cfg.Telemetry.Enabled {
		tracing, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	pendingStore := redisrepo.NewPendingLoginStore(redisClient.Client(), cfg.Redis.PendingLoginPrefix, cfg.Login.PendingTTL)

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	var calendarNotifier port.CalendarNotifier
	if cfg.Calendar.WebhookURL != "" {
		calendarNotifier = calendarinfra.NewWebhookNotifier(cfg.Calendar, log)
	} else {
		calendarNotifier = calendarinfra.NewNoopNotifier(log)
	}

	passwordRules := []security.PasswordRule{security.MinLengthRule(cfg.Password.MinLength)}
	if cfg.Password.MinScore > 0 {
		passwordRules = append(passwordRules, security.RequirePasswordStrengthRule(cfg.Password.MinScore))
	}
	passwordValidator := security.NewPasswordValidator(passwordRules...)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "feint:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	whitelist := middleware.NewIPWhitelist(repos.Whitelist, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	tokenService := usecase.NewTokenService(cfg, repos.Users)
	authService := usecase.NewAuthService(cfg, repos.Users, pendingStore, tokenService, log)
	registrationService := usecase.NewRegistrationService(repos.Users, passwordValidator, eventPublisher, log)
	otpService := usecase.NewOTPService(cfg, repos.Users, eventPublisher, log)
	todoService := usecase.NewTodoService(repos.Todos, log)
	notificationService := usecase.NewNotificationService(repos.Todos, repos.Events, calendarNotifier, eventPublisher, log)

	engine := routes.Register(routes.Dependencies{
		Config:        cfg,
		Logger:        log,
		RateLimiter:   rateLimiter,
		Whitelist:     whitelist,
		WhitelistRepo: repos.Whitelist,
		Metrics:       metrics,
		Database:      pool,
		Cache:         redisClient,
		Services: routes.ServiceSet{
			Auth:          authService,
			Registration:  registrationService,
			Tokens:        tokenService,
			OTP:           otpService,
			Todos:         todoService,
			Notifications: notificationService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		tracing:  tracing,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()
	defer func() {
		if a.tracing != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.tracing.Shutdown(shutdownCtx)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting FEINT API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
