package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/exitdebt/exitdebt_backend/internal/adapters/aggregator"
	"github.com/exitdebt/exitdebt_backend/internal/adapters/bureau"
	"github.com/exitdebt/exitdebt_backend/internal/adapters/crm"
	"github.com/exitdebt/exitdebt_backend/internal/adapters/messaging"
	"github.com/exitdebt/exitdebt_backend/internal/adapters/payment"
	"github.com/exitdebt/exitdebt_backend/internal/adapters/rabbitmq"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	"github.com/exitdebt/exitdebt_backend/internal/core/services"
	"github.com/exitdebt/exitdebt_backend/internal/handlers"
	"github.com/exitdebt/exitdebt_backend/internal/middleware"
	"github.com/exitdebt/exitdebt_backend/internal/platform/config"
	"github.com/exitdebt/exitdebt_backend/internal/platform/locker"
	"github.com/exitdebt/exitdebt_backend/internal/platform/scheduler"
	"github.com/exitdebt/exitdebt_backend/internal/ratelimit"
	"github.com/exitdebt/exitdebt_backend/internal/repositories/database/pgsql"
	"github.com/exitdebt/exitdebt_backend/internal/utils"
	"github.com/exitdebt/exitdebt_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title ExitDebt Backend API
// @version 1.0
// @description Debt health checks, settlement cases and subscriptions.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisAddress != "" {
		redisClient, err = database.NewRedisClient(ctx, cfg.RedisAddress, cfg.RedisPassword)
		if err != nil {
			logger.Error("Failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.CloseRedis(redisClient)
	} else {
		logger.Warn("REDIS_ADDRESS not set, limiter and locks are process-local")
	}

	publisher, crmPublisher, closeBroker := newPublishers(cfg, logger)
	defer closeBroker()

	crmClient, err := newCRMClient(ctx, cfg, crmPublisher, logger)
	if err != nil {
		logger.Error("Failed to initialize CRM client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	vault, err := utils.NewVault(cfg.AESEncryptionKey)
	if err != nil {
		logger.Error("Failed to initialize report encryption", slog.String("error", err.Error()))
		os.Exit(1)
	}

	pullLimiter, consentStore, subjectLocker := newSharedState(cfg, redisClient, logger)

	serviceContainer := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(dbPool), services.Providers{
		Bureau:     bureau.NewMockBureau(logger),
		Aggregator: aggregator.NewMockAggregator(consentStore, cfg.FrontendBaseURL, logger),
		Payments:   payment.NewMockPayment(logger),
		CRM:        crmClient,
		Messenger:  messaging.NewWhatsApp(logger),
		Publisher:  publisher,
		Limiter:    pullLimiter,
		Locker:     subjectLocker,
		Vault:      vault,
		Clock:      time.Now,
	})

	jobs := scheduler.NewJobs(serviceContainer.Subscription, pullLimiter, time.Minute, logger)
	cronScheduler := scheduler.NewScheduler(jobs, logger, scheduler.Config{
		TrialSweepSchedule:  cfg.TrialSweepSchedule,
		RateLimitGCSchedule: cfg.RateLimitGCSchedule,
	})
	if err := cronScheduler.Register(); err != nil {
		logger.Error("Failed to register scheduled jobs", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cronScheduler.Start()
	defer func() { <-cronScheduler.Stop().Done() }()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.RegisterValidators(); err != nil {
		logger.Error("Failed to register validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendBaseURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var limiterClient redis.UniversalClient
	if redisClient != nil {
		limiterClient = redisClient
	}
	ipLimiter, err := middleware.NewIPLimiter(cfg.HTTPRateLimit, limiterClient)
	if err != nil {
		logger.Error("Failed to create HTTP rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, handlers.RouteOptions{IPLimiter: ipLimiter})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// runMigrations applies every pending "up" migration from ./migrations.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	// Open a temporary standard sql.DB connection for migrations
	// Using pgx/v5/stdlib driver to be compatible with the main pool
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// newPublishers returns the domain event publisher, the CRM queue publisher
// and a func that closes the broker connection.
func newPublishers(cfg *config.Config, logger *slog.Logger) (providers.EventPublisher, providers.EventPublisher, func()) {
	noop := rabbitmq.NoopPublisher{Logger: logger}
	if cfg.AMQPURL == "" {
		logger.Warn("AMQP_URL not set, events are dropped")
		return noop, noop, func() {}
	}

	producer, err := rabbitmq.NewEventProducer(cfg.AMQPURL, logger)
	if err != nil {
		logger.Error("Failed to connect to broker, events are dropped", slog.String("error", err.Error()))
		return noop, noop, func() {}
	}
	return producer.Exchange(cfg.EventExchange), producer.Exchange(cfg.CRMExchange), producer.Close
}

func newCRMClient(ctx context.Context, cfg *config.Config, queue providers.EventPublisher, logger *slog.Logger) (providers.CRMClient, error) {
	switch cfg.CRMProvider {
	case "zoho":
		return crm.NewZohoCRM(ctx, crm.ZohoConfig{
			ClientID:     cfg.ZohoClientID,
			ClientSecret: cfg.ZohoClientSecret,
			RefreshToken: cfg.ZohoRefreshToken,
			AccountsURL:  cfg.ZohoAccountsURL,
			APIURL:       cfg.ZohoCRMURL,
		}, logger)
	case "queue":
		return crm.NewQueuedCRM(queue), nil
	default:
		return crm.NewLoggingCRM(logger), nil
	}
}

// newSharedState builds the pull limiter, the consent store and the subject
// locker, backed by redis when a client is available.
func newSharedState(cfg *config.Config, client *redis.Client, logger *slog.Logger) (*ratelimit.Limiter, providers.ConsentStore, providers.Locker) {
	limiterOpts := []ratelimit.Option{
		ratelimit.WithLimit(cfg.RateLimitCibilPulls),
		ratelimit.WithWindow(cfg.RateLimitWindow),
	}
	if client == nil {
		return ratelimit.New(ratelimit.NewMemoryStore(), limiterOpts...),
			aggregator.NewMemoryConsentStore(),
			locker.NewKeyedMutex()
	}
	return ratelimit.New(ratelimit.NewRedisStore(client, "exitdebt:ratelimit"), limiterOpts...),
		aggregator.NewRedisConsentStore(client, "exitdebt:aa_consent", 24*time.Hour),
		locker.NewRedisLocker(redislock.New(client), "exitdebt:lock", logger)
}
