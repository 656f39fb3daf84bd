package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lendana/loan-engine/internal/config"
	"github.com/lendana/loan-engine/internal/gateway"
	"github.com/lendana/loan-engine/internal/handler"
	"github.com/lendana/loan-engine/internal/repository"
	"github.com/lendana/loan-engine/internal/service"
	"github.com/lendana/loan-engine/pkg/logger"
	"github.com/lendana/loan-engine/pkg/response"
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

	db, err := initDB(cfg)
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.Migrate(db, cfg.Database.MigrationsPath); err != nil {
		zapLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Repositories
	store := repository.NewDB(db)
	loanTypeRepo := repository.NewLoanTypeRepository(store)
	loanRepo := repository.NewLoanRepository(store)
	termRepo := repository.NewTermRepository(store)
	paymentRepo := repository.NewPaymentRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)
	userRepo := repository.NewUserRepository(store)

	// Collaborators
	smsGateway := gateway.NewHTTPSMSGateway(
		cfg.Gateway.SMSURL,
		cfg.Gateway.SMSAPIKey,
		cfg.Gateway.SMSSender,
		cfg.Gateway.SMSTimeout,
		zapLogger,
	)
	notifier := gateway.NewNotifier(notificationRepo)

	// Services
	ledger := service.NewLedgerService(
		store, loanTypeRepo, loanRepo, termRepo, paymentRepo,
		redisClient, cfg.GetOverpaymentTolerance(), zapLogger,
	)
	dispatcher := service.NewDispatcherService(
		loanRepo, termRepo, loanTypeRepo, userRepo, notificationRepo,
		notifier, smsGateway, redisClient,
		cfg.Business.DueSoonWindowDays, cfg.Scheduler.LockTTL, zapLogger,
	)

	// Handlers
	loanHandler := handler.NewLoanHandler(ledger)
	paymentHandler := handler.NewPaymentHandler(ledger)
	adminHandler := handler.NewAdminHandler(ledger, dispatcher)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(loanHandler, paymentHandler, adminHandler, healthHandler, zapLogger)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	loanHandler *handler.LoanHandler,
	paymentHandler *handler.PaymentHandler,
	adminHandler *handler.AdminHandler,
	healthHandler *handler.HealthHandler,
	zapLogger *zap.Logger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(zapLogger))
	router.Use(response.JSONMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loan-types", loanHandler.CreateLoanType).Methods("POST")
	api.HandleFunc("/loans", loanHandler.CreateLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}", loanHandler.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}/schedule", loanHandler.GetSchedule).Methods("GET")
	api.HandleFunc("/loans/{loanId}/outstanding", loanHandler.GetOutstanding).Methods("GET")
	api.HandleFunc("/loans/{loanId}/payments", paymentHandler.ListPayments).Methods("GET")
	api.HandleFunc("/payments", paymentHandler.SubmitPayment).Methods("POST")
	api.HandleFunc("/payments/{paymentId}/approve", paymentHandler.ApprovePayment).Methods("POST")
	api.HandleFunc("/payments/{paymentId}/reject", paymentHandler.RejectPayment).Methods("POST")
	api.HandleFunc("/admin/terms/{termId}/reset-dispatch-flags", adminHandler.ResetDispatchFlags).Methods("POST")
	api.HandleFunc("/admin/sweep", adminHandler.TriggerSweep).Methods("POST")

	return router
}
