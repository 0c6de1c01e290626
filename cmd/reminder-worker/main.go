package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/wolfman30/pitaya-nails-booking/cmd/mainconfig"
	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
	appconfig "github.com/wolfman30/pitaya-nails-booking/internal/config"
	"github.com/wolfman30/pitaya-nails-booking/internal/notify"
	"github.com/wolfman30/pitaya-nails-booking/internal/observability/metrics"
	"github.com/wolfman30/pitaya-nails-booking/internal/reminders"
	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

// reminder-worker delivers appointment reminders queued in redis by the API.
func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.SessionStore != "redis" {
		logger.Error("reminder-worker needs SESSION_STORE=redis; the API processes in-memory reminders itself",
			"session_store", cfg.SessionStore)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := mainconfig.NewRedisClient(cfg)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	sender, err := mainconfig.NewEmailSender(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize email sender", "error", err)
		os.Exit(1)
	}
	composer := mainconfig.NewComposer(cfg, catalog.Default().Salon())
	bookingMetrics := metrics.NewBookingMetrics(nil)
	gateway := notify.NewGateway(sender, cfg.EmailProvider, composer, bookingMetrics, logger)

	worker := reminders.NewWorker(
		reminders.NewRedisStore(redisClient),
		gateway,
		mainconfig.NewSMSSender(cfg, logger),
		composer,
		bookingMetrics,
		logger,
	)

	jobs := cron.New()
	if _, err := jobs.AddFunc(cfg.ReminderPollSchedule, func() {
		sent, err := worker.ProcessDue(ctx)
		if err != nil {
			logger.Error("reminder run failed", "error", err)
			return
		}
		if sent > 0 {
			logger.Info("reminders delivered", "count", sent)
		}
	}); err != nil {
		logger.Error("invalid reminder schedule", "schedule", cfg.ReminderPollSchedule, "error", err)
		os.Exit(1)
	}

	logger.Info("reminder worker started", "schedule", cfg.ReminderPollSchedule, "lead_time", cfg.ReminderLeadTime)
	jobs.Start()
	<-ctx.Done()

	logger.Info("reminder worker shutting down")
	<-jobs.Stop().Done()
}
