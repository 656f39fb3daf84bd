package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lendana/loan-engine/internal/config"
	"github.com/lendana/loan-engine/internal/gateway"
	"github.com/lendana/loan-engine/internal/repository"
	"github.com/lendana/loan-engine/internal/service"
	"github.com/lendana/loan-engine/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	store := repository.NewDB(db)
	loanRepo := repository.NewLoanRepository(store)
	termRepo := repository.NewTermRepository(store)
	loanTypeRepo := repository.NewLoanTypeRepository(store)
	userRepo := repository.NewUserRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	smsGateway := gateway.NewHTTPSMSGateway(
		cfg.Gateway.SMSURL,
		cfg.Gateway.SMSAPIKey,
		cfg.Gateway.SMSSender,
		cfg.Gateway.SMSTimeout,
		zapLogger,
	)
	notifier := gateway.NewNotifier(notificationRepo)

	dispatcher := service.NewDispatcherService(
		loanRepo, termRepo, loanTypeRepo, userRepo, notificationRepo,
		notifier, smsGateway, redisClient,
		cfg.Business.DueSoonWindowDays, cfg.Scheduler.LockTTL, zapLogger,
	)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		zapLogger.Fatal("invalid scheduler timezone", zap.Error(err))
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	_, err = c.AddFunc(cfg.Scheduler.SweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.LockTTL)
		defer cancel()

		if _, err := dispatcher.Sweep(ctx); err != nil {
			zapLogger.Error("sweep run failed", zap.Error(err))
		}
	})
	if err != nil {
		zapLogger.Fatal("failed to schedule sweep", zap.Error(err))
	}

	c.Start()
	zapLogger.Info("scheduler started", zap.String("sweep_spec", cfg.Scheduler.SweepSpec))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down scheduler")
	<-c.Stop().Done()
	zapLogger.Info("scheduler stopped")
}
