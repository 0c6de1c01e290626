package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/wolfman30/pitaya-nails-booking/cmd/mainconfig"
	"github.com/wolfman30/pitaya-nails-booking/internal/api/router"
	"github.com/wolfman30/pitaya-nails-booking/internal/availability"
	"github.com/wolfman30/pitaya-nails-booking/internal/calendar"
	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
	"github.com/wolfman30/pitaya-nails-booking/internal/clock"
	appconfig "github.com/wolfman30/pitaya-nails-booking/internal/config"
	"github.com/wolfman30/pitaya-nails-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/pitaya-nails-booking/internal/http/middleware"
	"github.com/wolfman30/pitaya-nails-booking/internal/notify"
	"github.com/wolfman30/pitaya-nails-booking/internal/observability/metrics"
	"github.com/wolfman30/pitaya-nails-booking/internal/reminders"
	"github.com/wolfman30/pitaya-nails-booking/internal/session"
	"github.com/wolfman30/pitaya-nails-booking/internal/wizard"
	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

const sweepSchedule = "@every 1m"

func main() {
	// A missing .env is fine; the environment wins.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting pitaya-nails-booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"session_store", cfg.SessionStore,
		"email_provider", cfg.EmailProvider,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsHandler, bookingMetrics := setupMetrics()
	loc := cfg.Location()
	cat := catalog.Default()

	var redisClient *redis.Client
	if cfg.SessionStore == "redis" {
		redisClient = mainconfig.NewRedisClient(cfg)
		defer redisClient.Close()
	}
	kv, err := setupSessionKV(ctx, cfg, redisClient)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}

	sender, err := mainconfig.NewEmailSender(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize email sender", "error", err)
		os.Exit(1)
	}
	composer := mainconfig.NewComposer(cfg, cat.Salon())
	gateway := notify.NewGateway(sender, cfg.EmailProvider, composer, bookingMetrics, logger)
	if !gateway.Configured() {
		logger.Warn("booking submission disabled until email delivery is configured")
	}

	reminderStore, shared := mainconfig.NewReminderStore(cfg, redisClient)
	clk := clock.New()
	manager := wizard.NewManager(wizard.Options{
		Catalog:   cat,
		Store:     session.NewStore(kv, logger),
		Gateway:   gateway,
		Loader:    availability.NewLoader(availability.NewCalculator(), clk, cfg.SlotLoadDelay),
		Clock:     clk,
		Location:  loc,
		Reminders: reminders.NewScheduler(reminderStore, cfg.ReminderLeadTime, logger),
		Metrics:   bookingMetrics,
		Logger:    logger,
		Settings: wizard.Settings{
			SkipProfessional:    cfg.SkipProfessionalStep,
			DefaultProfessional: cfg.DefaultProfessionalID,
		},
		MaxQuantity: cfg.MaxCustomQuantity,
	})

	jobs := cron.New()
	if err := setupSweep(jobs, manager, cfg.SessionIdleTimeout, logger); err != nil {
		logger.Error("failed to schedule session sweep", "error", err)
		os.Exit(1)
	}
	if !shared {
		// Nobody else can see an in-memory reminder queue.
		worker := reminders.NewWorker(reminderStore, gateway, mainconfig.NewSMSSender(cfg, logger), composer, bookingMetrics, logger)
		if err := setupInlineReminders(ctx, jobs, worker, cfg.ReminderPollSchedule, logger); err != nil {
			logger.Error("failed to schedule reminder worker", "error", err)
			os.Exit(1)
		}
	}
	jobs.Start()

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx, time.Minute)

	// Setup router
	routerCfg := &router.Config{
		Logger:              logger,
		CatalogHandler:      handlers.NewCatalogHandler(cat),
		AvailabilityHandler: handlers.NewAvailabilityHandler(cat, availability.NewCalculator(), clk, loc),
		SessionsHandler:     handlers.NewSessionsHandler(manager, calendar.NewExporter(cat.Salon(), cfg.SalonLocation), loc, logger),
		MetricsHandler:      metricsHandler,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimiter:         limiter,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	cancel()
	<-jobs.Stop().Done()

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBookingMetrics(reg)
}

func setupSessionKV(ctx context.Context, cfg *appconfig.Config, redisClient *redis.Client) (session.KV, error) {
	switch cfg.SessionStore {
	case "", "memory":
		return session.NewMemoryKV(), nil
	case "redis":
		if redisClient == nil {
			return nil, errors.New("redis session store requires a redis client")
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		return session.NewRedisKV(redisClient, cfg.SessionTTL), nil
	case "dynamodb":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return session.NewDynamoKV(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBSessionTable, cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
}

// setupSweep drops wizards idle longer than idle. Their state stays in the
// session store and is reloaded on the next request.
func setupSweep(jobs *cron.Cron, manager *wizard.Manager, idle time.Duration, logger *logging.Logger) error {
	_, err := jobs.AddFunc(sweepSchedule, func() {
		if n := manager.Sweep(time.Now(), idle); n > 0 {
			logger.Info("evicted idle booking sessions", "count", n, "live", manager.Len())
		}
	})
	return err
}

func setupInlineReminders(ctx context.Context, jobs *cron.Cron, worker *reminders.Worker, schedule string, logger *logging.Logger) error {
	_, err := jobs.AddFunc(schedule, func() {
		if _, err := worker.ProcessDue(ctx); err != nil {
			logger.Error("inline reminder run failed", "error", err)
		}
	})
	return err
}
